package captions

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"shortsbot/config"
	"shortsbot/scene"
	"shortsbot/timeline"
)

// CueWord is the visible state of one caption word.
type CueWord struct {
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	Color      string  `json:"color"`
	Opacity    float64 `json:"opacity"`
	Active     bool    `json:"active"`
	Background string  `json:"background,omitempty"`
}

// Cue is a time interval over which the caption looks the same.
type Cue struct {
	Start float64   `json:"start"`
	End   float64   `json:"end"`
	Batch int       `json:"batch"`
	Words []CueWord `json:"words"`
}

// Active returns the highlighted word, if any.
func (c Cue) Active() (CueWord, bool) {
	for _, w := range c.Words {
		if w.Active {
			return w, true
		}
	}
	return CueWord{}, false
}

func (c Cue) Text() string {
	parts := make([]string, len(c.Words))
	for i, w := range c.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Plan is the caption timeline flattened into cues.
type Plan struct {
	Cues     []Cue   `json:"cues"`
	Duration float64 `json:"duration"`
	Batches  int     `json:"batches"`
}

// At returns the cue showing at time t.
func (p *Plan) At(t float64) (Cue, bool) {
	i := sort.Search(len(p.Cues), func(i int) bool { return p.Cues[i].End > t })
	if i < len(p.Cues) && p.Cues[i].Start <= t {
		return p.Cues[i], true
	}
	return Cue{}, false
}

// Span is an interval during which a batch or word is on screen.
type Span struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// BatchSpans merges contiguous cues of the same batch.
func (p *Plan) BatchSpans() []Span {
	var out []Span
	for _, c := range p.Cues {
		if n := len(out); n > 0 && out[n-1].Index == c.Batch && sameTime(out[n-1].End, c.Start) {
			out[n-1].End = c.End
			if len(c.Text()) > len(out[n-1].Text) {
				out[n-1].Text = c.Text()
			}
			continue
		}
		out = append(out, Span{Index: c.Batch, Text: c.Text(), Start: c.Start, End: c.End})
	}
	return out
}

// ActiveSpans merges contiguous cues highlighting the same word.
func (p *Plan) ActiveSpans() []Span {
	var out []Span
	for _, c := range p.Cues {
		w, ok := c.Active()
		if !ok {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Index == w.Index && sameTime(out[n-1].End, c.Start) {
			out[n-1].End = c.End
			continue
		}
		out = append(out, Span{Index: w.Index, Text: w.Text, Start: c.Start, End: c.End})
	}
	return out
}

func sameTime(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// Recorder snapshots the caption area whenever the clock advances and
// builds a Plan from the snapshots.
type Recorder struct {
	area     *scene.Node
	settings Settings
	cues     []Cue
	batches  int
}

func NewRecorder(area *scene.Node, settings Settings) *Recorder {
	return &Recorder{area: area, settings: settings}
}

// Capture is a timeline.Scheduler OnAdvance hook. The state observed now
// holds for [from, to).
func (r *Recorder) Capture(from, to float64) {
	if to <= from {
		return
	}
	cue, ok := r.snapshot()
	if !ok {
		return
	}
	cue.Start, cue.End = from, to
	if n := len(r.cues); n > 0 && sameTime(r.cues[n-1].End, from) && sameCue(r.cues[n-1], cue) {
		r.cues[n-1].End = to
		return
	}
	r.cues = append(r.cues, cue)
	if cue.Batch+1 > r.batches {
		r.batches = cue.Batch + 1
	}
}

// Plan returns the recorded cues. end is the virtual time the run stopped.
func (r *Recorder) Plan(end float64) *Plan {
	return &Plan{Cues: append([]Cue(nil), r.cues...), Duration: end, Batches: r.batches}
}

func (r *Recorder) snapshot() (Cue, bool) {
	for _, run := range r.area.Children() {
		idx, ok := suffixIndex(run.Name(), batchPrefix)
		if !ok {
			continue
		}
		var words []CueWord
		for _, n := range run.Children() {
			wi, ok := suffixIndex(n.Name(), wordPrefix)
			if !ok {
				continue
			}
			active := scene.SameColor(n.Fill(), r.settings.highlightColor()) &&
				!scene.SameColor(r.settings.highlightColor(), r.settings.TextColor)
			w := CueWord{Index: wi, Text: n.Text(), Color: n.Fill(), Opacity: n.Opacity(), Active: active}
			if active {
				w.Background = r.settings.CurrentWordBackgroundColor
			}
			words = append(words, w)
		}
		if len(words) == 0 {
			continue
		}
		return Cue{Batch: idx, Words: words}, true
	}
	return Cue{}, false
}

func suffixIndex(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	i, err := strconv.Atoi(name[len(prefix):])
	return i, err == nil
}

func sameCue(a, b Cue) bool {
	if a.Batch != b.Batch || len(a.Words) != len(b.Words) {
		return false
	}
	for i := range a.Words {
		if a.Words[i] != b.Words[i] {
			return false
		}
	}
	return true
}

// Build runs the caption scheduler alone on a fresh canvas and virtual
// clock and returns its cue plan.
func Build(ctx context.Context, words []Word, settings Settings, opts ...timeline.Option) (*Plan, error) {
	sched, err := NewScheduler(words, settings)
	if err != nil {
		return nil, err
	}
	clock := timeline.New(opts...)
	root := scene.New(clock, config.VideoWidth, config.VideoHeight)
	area := root.AddChild(scene.NewGroup("captions"))
	area.SetY(config.VideoHeight * (0.5 - config.FooterRatio/2))

	rec := NewRecorder(area, settings)
	clock.OnAdvance(rec.Capture)
	if err := clock.Run(ctx, func(p *timeline.Proc) { sched.Play(p, area) }); err != nil {
		return nil, err
	}
	return rec.Plan(clock.Now()), nil
}
