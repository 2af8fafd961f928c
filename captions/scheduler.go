package captions

import (
	"fmt"
	"math"

	"shortsbot/config"
	"shortsbot/scene"
	"shortsbot/timeline"
)

// Node names used for caption elements. Recorder relies on them.
const (
	batchPrefix    = "caption-batch-"
	wordPrefix     = "caption-word-"
	spaceName      = "caption-space"
	highlightName  = "caption-highlight"
	zText          = 2
	zHighlightRect = 1
)

// Scheduler plays timed words as captions, one batch at a time.
type Scheduler struct {
	settings Settings
	words    []Word
	batches  []Batch
	hold     float64
	settled  bool
}

// NewScheduler validates its inputs up front so nothing is scheduled for a
// run that cannot complete.
func NewScheduler(words []Word, settings Settings) (*Scheduler, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	batches, err := Batches(words, settings.NumSimultaneousWords)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		settings: settings,
		words:    words,
		batches:  batches,
		hold:     config.TrailingHold,
	}, nil
}

func (s *Scheduler) Batches() []Batch { return s.batches }

// Duration is the virtual time Play takes when started at zero. Only
// batch mode holds the last batch on screen.
func (s *Scheduler) Duration() float64 {
	var total float64
	for i, w := range BatchWaits(s.batches) {
		total += w
		b := s.batches[i]
		if s.settings.Stream {
			for _, g := range WordGaps(b) {
				total += g
			}
			for _, word := range b.Words {
				total += math.Max(0, word.Duration())
			}
		} else {
			total += math.Max(0, b.Span())
		}
	}
	if s.settings.Stream {
		return total
	}
	return total + s.hold
}

// Play schedules every batch under p. Caption nodes are created inside
// parent and removed again when their batch ends.
func (s *Scheduler) Play(p *timeline.Proc, parent *scene.Node) {
	waits := BatchWaits(s.batches)
	for i, b := range s.batches {
		p.Wait(waits[i])
		if s.settings.Stream {
			s.streamBatch(p, parent, b)
			continue
		}
		var hold float64
		if i == len(s.batches)-1 {
			hold = s.hold
		}
		s.showBatch(p, parent, b, hold)
	}
}

func (s *Scheduler) run(parent *scene.Node, b Batch) *scene.Node {
	width := parent.Width()
	if width == 0 && parent.Scene() != nil {
		width = parent.Scene().Width()
	}
	run := scene.NewFlow(fmt.Sprintf("%s%d", batchPrefix, b.Index), s.settings.boxWidth(width), scene.Align(s.settings.TextAlign))
	return parent.AddChild(run)
}

func (s *Scheduler) word(b Batch, j int, fill string, opacity float64) *scene.Node {
	n := scene.NewText(b.Words[j].Text, s.settings.style()).Named(fmt.Sprintf("%s%d", wordPrefix, b.Offset+j))
	n.SetFill(fill)
	n.SetOpacity(opacity)
	n.SetZIndex(zText)
	return n
}

func (s *Scheduler) space() *scene.Node {
	return scene.NewText(" ", s.settings.style()).Named(spaceName)
}

func (s *Scheduler) initialOpacity() float64 {
	if s.settings.FadeInAnimation {
		return 0.5
	}
	return 1
}

// settle forces one layout synchronization before the first measurement.
// Until then bounding boxes are unavailable and a background would be
// drawn at the origin.
func (s *Scheduler) settle(p *timeline.Proc, parent *scene.Node) {
	if s.settled {
		return
	}
	s.settled = true
	p.Yield()
	if r := parent.Scene(); r != nil {
		r.Settle()
	}
}

// showBatch renders the whole batch at once, fades it in, highlights each
// word on its own timing and removes the batch after its span plus hold.
func (s *Scheduler) showBatch(p *timeline.Proc, parent *scene.Node, b Batch, hold float64) {
	run := s.run(parent, b)
	opacity := s.initialOpacity()
	nodes := make([]*scene.Node, len(b.Words))
	for j := range b.Words {
		nodes[j] = run.AddChild(s.word(b, j, s.settings.TextColor, opacity))
		if j < len(b.Words)-1 {
			run.AddChild(s.space())
		}
		if b.Index == 0 && j == 0 {
			s.settle(p, parent)
		}
	}

	fade := math.Min(config.MaxFadeIn, 0.5*b.First().Duration())
	p.All(
		func(p *timeline.Proc) {
			timeline.Tween(p, fade, timeline.InOutCubic, func(v float64) {
				for _, n := range nodes {
					n.SetOpacity(timeline.Lerp(opacity, 1, v))
				}
			})
		},
		func(p *timeline.Proc) { s.highlight(p, parent, b, nodes) },
		timeline.WaitFor(b.Span()+hold),
	)
	run.Remove()
}

// highlight marks one word at a time. Exactly one word carries the
// highlight color while its interval is active.
func (s *Scheduler) highlight(p *timeline.Proc, parent *scene.Node, b Batch, nodes []*scene.Node) {
	for j, gap := range WordGaps(b) {
		p.Wait(gap)
		n := nodes[j]
		original := n.Fill()
		n.SetFill(s.settings.highlightColor())
		bg := s.background(parent, n)
		p.Wait(b.Words[j].Duration())
		n.SetFill(original)
		if bg != nil {
			bg.Remove()
		}
	}
}

// background draws a rounded rect behind word, positioned in parent's
// coordinates. Nothing is drawn without a background color.
func (s *Scheduler) background(parent, word *scene.Node) *scene.Node {
	color := s.settings.CurrentWordBackgroundColor
	if color == "" {
		return nil
	}
	rect := scene.NewRect(color, 0, 0).Named(highlightName)
	rect.SetRadius(config.HighlightRadius)
	rect.SetZIndex(zHighlightRect)
	if box, ok := word.BBox(); ok {
		origin, _ := parent.BBox()
		rect.SetSize(box.W, box.H)
		rect.SetPosition((box.X-origin.X)/nonZero(parent.Scale()), (box.Y-origin.Y)/nonZero(parent.Scale()))
	}
	return parent.AddChild(rect)
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// streamBatch appends words one by one into a growing run. Each new word
// appears in the highlight color, then reverts to the text color when its
// interval ends. The run is removed as soon as its last word ends.
func (s *Scheduler) streamBatch(p *timeline.Proc, parent *scene.Node, b Batch) {
	run := s.run(parent, b)
	opacity := s.initialOpacity()
	for j, gap := range WordGaps(b) {
		p.Wait(gap)
		n := run.AddChild(s.word(b, j, s.settings.highlightColor(), opacity))
		if j < len(b.Words)-1 {
			run.AddChild(s.space())
		}
		s.settle(p, parent)
		bg := s.background(parent, n)
		d := b.Words[j].Duration()
		p.All(
			timeline.WaitFor(d),
			scene.Opacity(n, 1, math.Min(d*0.5, config.MaxFadeIn), timeline.InOutCubic),
		)
		n.SetFill(s.settings.TextColor)
		if bg != nil {
			bg.Remove()
		}
	}
	run.Remove()
}
