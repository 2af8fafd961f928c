package composer

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"shortsbot/captions"
	"shortsbot/config"
	"shortsbot/effects"
	"shortsbot/metadata"
	"shortsbot/scene"
	"shortsbot/timeline"
)

// transitionDuration is the length of a shutter between two slides.
const transitionDuration = 0.5

// Options tunes a composition. The zero value gives the standard short:
// the metadata headline as header, default caption settings and the stock
// background effects.
type Options struct {
	// Header overrides the metadata headline.
	Header       string
	HeaderEffect effects.HeaderConfig
	Captions     captions.Settings
	// Slides overrides the image effect per slide. Missing entries
	// alternate zoomIn and zoomOut.
	Slides []effects.ImageConfig
	// Lines and Particles override the background effects. Background
	// effects are skipped entirely when NoBackground is set.
	Lines        *effects.LineConfig
	Particles    *effects.ParticleConfig
	NoBackground bool
	// RecordEvents keeps every scene mutation in the result.
	RecordEvents bool
	FrameRate    float64
	Rand         *rand.Rand
}

// Slide is the timing and effect of one body image.
type Slide struct {
	Image    string              `json:"image"`
	Start    float64             `json:"start"`
	Duration float64             `json:"duration"`
	Effect   effects.ImageConfig `json:"effect"`
}

// Result is a played composition.
type Result struct {
	Duration      float64        `json:"duration"`
	AudioDuration float64        `json:"audioDuration"`
	Captions      *captions.Plan `json:"captions"`
	Slides        []Slide        `json:"slides"`
	Events        []scene.Event  `json:"-"`
}

// Layout holds the three regions of the canvas.
type Layout struct {
	Root   *scene.Root
	Header *scene.Node
	Body   *scene.Node
	Footer *scene.Node
}

// NewLayout stacks header, body and footer regions on a portrait canvas.
func NewLayout(clock scene.Clock) *Layout {
	root := scene.New(clock, config.VideoWidth, config.VideoHeight)
	top := -float64(config.VideoHeight) / 2
	region := func(name string, offset, ratio float64) *scene.Node {
		n := root.AddChild(scene.NewGroup(name))
		n.SetSize(config.VideoWidth, config.VideoHeight*ratio)
		n.SetY(top + config.VideoHeight*(offset+ratio/2))
		return n
	}
	return &Layout{
		Root:   root,
		Header: region("header", 0, config.HeaderRatio),
		Body:   region("body", config.HeaderRatio, config.BodyRatio),
		Footer: region("footer", config.HeaderRatio+config.BodyRatio, config.FooterRatio),
	}
}

// Slides splits the audio evenly across images.
func Slides(images []string, audioDuration float64, overrides []effects.ImageConfig) []Slide {
	if len(images) == 0 {
		return nil
	}
	each := audioDuration / float64(len(images))
	slides := make([]Slide, len(images))
	for i, img := range images {
		cfg := effects.ImageConfig{Zoom: effects.ZoomIn, ZoomIntensity: config.SlideZoomIntensity}
		if i%2 == 1 {
			cfg.Zoom = effects.ZoomOut
		}
		if i < len(overrides) {
			cfg = overrides[i]
		}
		slides[i] = Slide{Image: img, Start: float64(i) * each, Duration: each, Effect: cfg}
	}
	return slides
}

// Compose plays every component of a short against one virtual clock.
// All components start at time zero and the scene ends with the slowest.
func Compose(ctx context.Context, meta *metadata.Metadata, opts Options) (*Result, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if opts.Header == "" {
		opts.Header = meta.Headline
	}
	settings := opts.Captions
	if settings == (captions.Settings{}) {
		settings = captions.DefaultSettings()
	}
	sched, err := captions.NewScheduler(meta.Words, settings)
	if err != nil {
		return nil, err
	}

	var clockOpts []timeline.Option
	if opts.FrameRate > 0 {
		clockOpts = append(clockOpts, timeline.WithFrameRate(opts.FrameRate))
	}
	clock := timeline.New(clockOpts...)
	layout := NewLayout(clock)

	res := &Result{AudioDuration: meta.Duration()}
	// Header and background stay up while the last caption batch holds.
	length := math.Max(res.AudioDuration, sched.Duration())
	res.Slides = Slides(meta.Images, res.AudioDuration, opts.Slides)
	if opts.RecordEvents {
		layout.Root.Observe(func(e scene.Event) { res.Events = append(res.Events, e) })
	}

	rec := captions.NewRecorder(layout.Footer, settings)
	clock.OnAdvance(rec.Capture)

	branches := []timeline.Func{
		func(p *timeline.Proc) { sched.Play(p, layout.Footer) },
	}
	if len(res.Slides) > 0 {
		branches = append(branches, func(p *timeline.Proc) { playSlides(p, layout, res.Slides) })
	}
	if opts.Header != "" {
		branches = append(branches, func(p *timeline.Proc) { playHeader(p, layout, opts, length) })
	}
	var bgErr error
	if !opts.NoBackground {
		branches = append(branches, func(p *timeline.Proc) { bgErr = playBackground(p, layout, opts, length) })
	}

	if err := clock.Run(ctx, func(p *timeline.Proc) { p.All(branches...) }); err != nil {
		return nil, fmt.Errorf("composition failed: %w", err)
	}
	if bgErr != nil {
		return nil, bgErr
	}
	res.Duration = clock.Now()
	res.Captions = rec.Plan(res.Duration)
	return res, nil
}

func playHeader(p *timeline.Proc, l *Layout, opts Options, d float64) {
	cfg := opts.HeaderEffect
	if cfg.Type == effects.HeaderDefault {
		cfg.Type = effects.HeaderInfiniteTypewriter
	}
	style := scene.TextStyle{FontSize: 110, FontWeight: 900, FontFamily: "Arial", Align: scene.AlignCenter}
	if cfg.FontSize > 0 {
		style.FontSize = cfg.FontSize
	}
	h := scene.NewText(opts.Header, style).Named("header-text")
	fill := cfg.TextColor
	if fill == "" {
		fill = "#FFFFFF"
	}
	h.SetFill(fill)
	h.SetOpacity(0)
	l.Header.AddChild(h)
	h.SetY(config.HeaderY - l.Header.Y())
	if cfg.Rand == nil {
		cfg.Rand = opts.Rand
	}
	effects.ApplyHeader(p, h, cfg, d)
}

// playSlides shows each image for its slot. A shutterTransition slide is
// swapped in behind a closing shutter; others replace the previous image
// at once.
func playSlides(p *timeline.Proc, l *Layout, slides []Slide) {
	var prev *scene.Node
	for i, s := range slides {
		img := scene.NewImage(s.Image, config.VideoWidth, l.Body.Height()).Named(fmt.Sprintf("slide-%d", i))
		effects.SetInitialState(img, s.Effect)
		l.Body.AddChild(img)

		old := prev
		swap := func() {
			if old != nil {
				old.Remove()
			}
		}
		if s.Effect.Shutter == effects.ShutterTransition && old != nil {
			shutter := math.Min(transitionDuration, s.Duration)
			img.SetOpacity(0)
			p.All(
				func(p *timeline.Proc) {
					effects.ShutterClose(p, l.Root.Node, shutter, func() {
						swap()
						img.SetOpacity(1)
					})
				},
				func(p *timeline.Proc) { effects.ExecuteImage(p, img, s.Effect, s.Duration) },
			)
		} else {
			swap()
			effects.ExecuteImage(p, img, s.Effect, s.Duration)
		}
		prev = img
	}
}

func playBackground(p *timeline.Proc, l *Layout, opts Options, d float64) error {
	lineCfg := effects.DefaultLineConfig()
	lineCfg.Count, lineCfg.MaxLength, lineCfg.Color = 60, 1000, "#40E0D0"
	if opts.Lines != nil {
		lineCfg = *opts.Lines
	}
	partCfg := effects.DefaultParticleConfig()
	partCfg.Count, partCfg.MaxDistance, partCfg.Color, partCfg.Intensity = 60, 800, "#FFD700", 0.7
	if opts.Particles != nil {
		partCfg = *opts.Particles
	}
	if lineCfg.Rand == nil {
		lineCfg.Rand = opts.Rand
	}
	if partCfg.Rand == nil {
		partCfg.Rand = opts.Rand
	}

	bg := l.Root.AddChild(scene.NewGroup("background"))
	bg.SetZIndex(-1)
	lines := effects.NewLines(bg, lineCfg)
	particles := effects.NewParticles(bg, partCfg)

	var lineErr, partErr error
	p.All(
		func(p *timeline.Proc) { lineErr = lines.Play(p, effects.LineRadialBurst, d) },
		func(p *timeline.Proc) { partErr = particles.Play(p, effects.ParticleExplosion, d*0.3) },
	)
	if lineErr != nil {
		return lineErr
	}
	return partErr
}
