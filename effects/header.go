package effects

import (
	"fmt"
	"math/rand"
	"strings"

	"shortsbot/scene"
	"shortsbot/timeline"
)

type HeaderKind string

const (
	HeaderDefault            HeaderKind = ""
	HeaderExtrude3D          HeaderKind = "3d_extrude"
	HeaderTypewriter         HeaderKind = "typewriter"
	HeaderInfiniteTypewriter HeaderKind = "infinite_typewriter"
	HeaderPunchZoom          HeaderKind = "punch_zoom"
	HeaderHighlightWords     HeaderKind = "highlight_words"
	HeaderBackgroundImage    HeaderKind = "background_image"
	HeaderGlow               HeaderKind = "glow_effect"
	HeaderBounceIn           HeaderKind = "bounce_in"
	HeaderSlideSplit         HeaderKind = "slide_split"
	HeaderRainbow            HeaderKind = "rainbow_text"
	HeaderShake              HeaderKind = "shake_emphasis"
)

const (
	headerGreen     = "#32D74B"
	headerHighlight = "#FF6B6B"
	headerStroke    = "#1E293B"
	// HeaderExtra names nodes a header effect adds next to the header.
	HeaderExtra = "header-extra"
)

var rainbowColors = []string{"#FF0000", "#FF7F00", "#FFFF00", "#00FF00", "#0000FF", "#4B0082", "#9400D3"}

// HeaderConfig selects and tunes a header text effect.
type HeaderConfig struct {
	Type            HeaderKind `json:"type"`
	Duration        float64    `json:"duration,omitempty"`
	Intensity       float64    `json:"intensity,omitempty"`
	HighlightWords  []string   `json:"highlightWords,omitempty"`
	HighlightColor  string     `json:"highlightColor,omitempty"`
	BackgroundImage string     `json:"backgroundImage,omitempty"`
	GlowColor       string     `json:"glowColor,omitempty"`
	TextColor       string     `json:"textColor,omitempty"`
	StrokeColor     string     `json:"strokeColor,omitempty"`
	FontSize        float64    `json:"fontSize,omitempty"`
	FontWeight      int        `json:"fontWeight,omitempty"`

	// Rand drives shake offsets. A nil Rand uses a fixed seed.
	Rand *rand.Rand `json:"-"`
}

func (c HeaderConfig) intensityOr(def float64) float64 {
	if c.Intensity > 0 {
		return c.Intensity
	}
	return def
}

func (c HeaderConfig) rng() *rand.Rand {
	if c.Rand != nil {
		return c.Rand
	}
	return rand.New(rand.NewSource(1))
}

func (c HeaderConfig) wordStyle(align scene.Align, lineWidth float64) scene.TextStyle {
	size := c.FontSize
	if size <= 0 {
		size = 110
	}
	weight := c.FontWeight
	if weight <= 0 {
		weight = 900
	}
	return scene.TextStyle{
		FontSize:   size,
		FontWeight: weight,
		FontFamily: "Arial",
		Align:      align,
		Stroke:     or(c.StrokeColor, headerStroke),
		LineWidth:  lineWidth,
	}
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// HeaderHandler animates the header text node for duration seconds.
type HeaderHandler func(p *timeline.Proc, header *scene.Node, cfg HeaderConfig, duration float64)

var headerHandlers = map[HeaderKind]HeaderHandler{
	HeaderDefault:            fadeHeader,
	HeaderExtrude3D:          extrude3D,
	HeaderTypewriter:         typewriter,
	HeaderInfiniteTypewriter: infiniteTypewriter,
	HeaderPunchZoom:          punchZoom,
	HeaderHighlightWords:     highlightWords,
	HeaderBackgroundImage:    backgroundImage,
	HeaderGlow:               glow,
	HeaderBounceIn:           bounceIn,
	HeaderSlideSplit:         slideSplit,
	HeaderRainbow:            rainbow,
	HeaderShake:              shake,
}

func ParseHeader(s string) (HeaderKind, error) {
	k := HeaderKind(s)
	if _, ok := headerHandlers[k]; !ok {
		return "", fmt.Errorf("unknown header effect %q", s)
	}
	return k, nil
}

// ApplyHeader runs the configured effect. cfg.Duration overrides duration
// when set; the fallback is one second.
func ApplyHeader(p *timeline.Proc, header *scene.Node, cfg HeaderConfig, duration float64) {
	if cfg.Duration > 0 {
		duration = cfg.Duration
	}
	if duration <= 0 {
		duration = 1
	}
	h, ok := headerHandlers[cfg.Type]
	if !ok {
		h = fadeHeader
	}
	h(p, header, cfg, duration)
}

// CleanupHeader removes the nodes a header effect added to parent.
func CleanupHeader(parent *scene.Node) {
	for _, c := range parent.Children() {
		if c.Name() == HeaderExtra {
			c.Remove()
		}
	}
}

func addExtra(header, n *scene.Node) *scene.Node {
	parent := header.Parent()
	if parent == nil {
		return n
	}
	return parent.AddChild(n.Named(HeaderExtra))
}

func fadeHeader(p *timeline.Proc, header *scene.Node, _ HeaderConfig, d float64) {
	header.AnimateOpacity(p, 1, d, timeline.InOutQuad)
}

// popScale grows to peak over the first 30% and settles back to 1.
func popScale(n *scene.Node, peak, d float64, first timeline.Easing) timeline.Func {
	return func(p *timeline.Proc) {
		n.AnimateScale(p, peak, d*0.3, first)
		n.AnimateScale(p, 1, d*0.7, timeline.InOutQuad)
	}
}

func extrude3D(p *timeline.Proc, header *scene.Node, cfg HeaderConfig, d float64) {
	layers := int(cfg.intensityOr(5))
	for i := 1; i <= layers; i++ {
		shadow := scene.NewText(header.Text(), header.Style())
		shadow.SetFill(scene.LerpColor(headerStroke, "#000000", float64(i)/float64(layers)))
		shadow.SetPosition(header.X()+float64(i*2), header.Y()+float64(i*2))
		shadow.SetOpacity(0.8 - float64(i)*0.1)
		shadow.SetZIndex(-i)
		addExtra(header, shadow)
	}
	header.SetFill(headerGreen)
	header.SetStroke("#FFFFFF")
	p.All(
		scene.Opacity(header, 1, d, timeline.OutBack),
		popScale(header, 1.1, d, timeline.OutBack),
	)
}

// typeOut reveals text one rune at a time with a trailing cursor.
func typeOut(p *timeline.Proc, header *scene.Node, text string, d float64) {
	runes := []rune(text)
	if len(runes) == 0 {
		p.Wait(d)
		return
	}
	per := d / float64(len(runes))
	for i := 0; i < len(runes); i++ {
		header.SetText(string(runes[:i]) + "|")
		p.Wait(per * 0.7)
		header.SetText(string(runes[:i]))
		p.Wait(per * 0.3)
	}
	header.SetText(text)
}

func typewriter(p *timeline.Proc, header *scene.Node, _ HeaderConfig, d float64) {
	header.SetOpacity(1)
	typeOut(p, header, header.Text(), d)
}

const (
	typingDuration = 2.0
	typingPause    = 2.0
	typingClear    = 0.5
)

// infiniteTypewriter repeats the typing cycle and stops exactly at d,
// cutting the last cycle short.
func infiniteTypewriter(p *timeline.Proc, header *scene.Node, _ HeaderConfig, d float64) {
	text := header.Text()
	header.SetOpacity(1)
	end := p.Now() + d
	for cycle := 0; ; cycle++ {
		if cycle > 0 {
			header.SetText("")
			if !waitWithin(p, typingClear, end) {
				break
			}
		}
		if left := end - p.Now(); left < typingDuration {
			typeOut(p, header, text, left)
			break
		}
		typeOut(p, header, text, typingDuration)
		if !waitWithin(p, typingPause, end) {
			break
		}
	}
	header.SetText(text)
	p.WaitUntil(end)
}

// waitWithin waits d unless that would reach end, in which case it waits
// until end and reports false.
func waitWithin(p *timeline.Proc, d, end float64) bool {
	if p.Now()+d >= end-1e-9 {
		p.WaitUntil(end)
		return false
	}
	p.Wait(d)
	return true
}

func punchZoom(p *timeline.Proc, header *scene.Node, cfg HeaderConfig, d float64) {
	header.SetOpacity(1)
	header.SetScale(0.8)
	header.AnimateScale(p, cfg.intensityOr(1.3), d*0.2, timeline.OutQuad)
	header.AnimateScale(p, 1, d*0.8, timeline.OutBack)
}

// highlightWords replaces the header with one node per word and pops them
// in one after another.
func highlightWords(p *timeline.Proc, header *scene.Node, cfg HeaderConfig, d float64) {
	if len(cfg.HighlightWords) == 0 {
		p.Wait(d)
		return
	}
	marked := map[string]bool{}
	for _, w := range cfg.HighlightWords {
		marked[w] = true
	}
	words := strings.Split(header.Text(), " ")
	x := -float64(len(words)-1) * 60
	nodes := make([]*scene.Node, len(words))
	for i, w := range words {
		lineWidth := 3.0
		fill := or(cfg.TextColor, headerGreen)
		if marked[w] {
			lineWidth = 5
			fill = or(cfg.HighlightColor, headerHighlight)
		}
		n := scene.NewText(w, cfg.wordStyle(scene.AlignCenter, lineWidth))
		n.SetFill(fill)
		n.SetOpacity(0)
		n.SetPosition(x, header.Y()+80)
		nodes[i] = addExtra(header, n)
		x += float64(len([]rune(w)))*25 + 40
	}
	header.SetOpacity(0)
	for i, n := range nodes {
		peak, rest := 1.0, 1.0
		if marked[words[i]] {
			peak, rest = 1.2, 1.1
		}
		p.All(
			scene.Opacity(n, 1, 0.3, timeline.OutQuad),
			func(p *timeline.Proc) {
				n.AnimateScale(p, peak, 0.3, timeline.OutBack)
				n.AnimateScale(p, rest, 0.2, timeline.InOutQuad)
			},
		)
		if i < len(nodes)-1 {
			p.Wait(0.1)
		}
	}
}

func backgroundImage(p *timeline.Proc, header *scene.Node, cfg HeaderConfig, d float64) {
	if cfg.BackgroundImage == "" {
		p.Wait(d)
		return
	}
	img := scene.NewImage(cfg.BackgroundImage, 1920, 1080)
	img.SetOpacity(0)
	img.SetZIndex(-1)
	img.SetBlur(3)
	img.SetBrightness(0.3)
	addExtra(header, img)
	img.AnimateOpacity(p, 0.7, d, timeline.InOutQuad)
	header.AnimateOpacity(p, 1, d*0.5, timeline.OutQuad)
}

func glow(p *timeline.Proc, header *scene.Node, cfg HeaderConfig, d float64) {
	header.SetOpacity(1)
	original := header.Fill()
	p.All(
		func(p *timeline.Proc) { header.AnimateFill(p, or(cfg.GlowColor, headerGreen), d*0.3, timeline.InOutQuad) },
		popScale(header, 1.1, d, timeline.InOutQuad),
	)
	header.AnimateFill(p, original, 0.3, timeline.InOutQuad)
}

func bounceIn(p *timeline.Proc, header *scene.Node, _ HeaderConfig, d float64) {
	header.SetScale(0)
	header.SetOpacity(1)
	header.AnimateScale(p, 1, d, timeline.OutBack)
}

// slideSplit splits the text at its middle rune and slides both halves
// towards the center.
func slideSplit(p *timeline.Proc, header *scene.Node, cfg HeaderConfig, d float64) {
	runes := []rune(header.Text())
	mid := len(runes) / 2
	left, right := string(runes[:mid]), string(runes[mid:])

	l := scene.NewText(left, cfg.wordStyle(scene.AlignRight, 3))
	r := scene.NewText(right, cfg.wordStyle(scene.AlignLeft, 3))
	for _, n := range []*scene.Node{l, r} {
		n.SetFill(or(cfg.TextColor, headerGreen))
		n.SetY(header.Y() + 80)
	}
	l.SetX(-400)
	r.SetX(400)
	addExtra(header, l)
	addExtra(header, r)
	header.SetOpacity(0)

	p.All(
		func(p *timeline.Proc) { l.AnimateX(p, -float64(mid)*12, d, timeline.OutBack) },
		func(p *timeline.Proc) { r.AnimateX(p, float64(len(runes)-mid)*12, d, timeline.OutBack) },
	)
}

func rainbow(p *timeline.Proc, header *scene.Node, _ HeaderConfig, d float64) {
	header.SetOpacity(1)
	step := d / float64(len(rainbowColors)*2)
	for cycle := 0; cycle < 2; cycle++ {
		for _, c := range rainbowColors {
			header.AnimateFill(p, c, step, timeline.InOutQuad)
		}
	}
	header.AnimateFill(p, headerGreen, 0.3, timeline.InOutQuad)
}

const shakeCount = 10

func shake(p *timeline.Proc, header *scene.Node, cfg HeaderConfig, d float64) {
	header.SetOpacity(1)
	rng := cfg.rng()
	x := header.X()
	step := d / shakeCount
	amp := cfg.intensityOr(10)
	for i := 0; i < shakeCount; i++ {
		offset := (rng.Float64() - 0.5) * amp
		header.AnimateX(p, x+offset, step/2, timeline.InOutQuad)
		header.AnimateX(p, x, step/2, timeline.InOutQuad)
	}
}

// HeaderPresets are ready-made header configurations.
var HeaderPresets = map[string]HeaderConfig{
	"basic3D":       {Type: HeaderExtrude3D, Duration: 1.0, Intensity: 3, TextColor: headerGreen, StrokeColor: headerStroke},
	"typewriter":    {Type: HeaderTypewriter, Duration: 2.0, TextColor: headerGreen, StrokeColor: headerStroke},
	"powerPunch":    {Type: HeaderPunchZoom, Duration: 1.2, Intensity: 1.5, TextColor: headerHighlight, StrokeColor: "#FFFFFF"},
	"highlightDemo": {Type: HeaderHighlightWords, Duration: 1.5, HighlightWords: []string{"중요한", "핵심", "특별한"}, HighlightColor: "#FFD93D", TextColor: headerGreen, StrokeColor: headerStroke},
	"greenGlow":     {Type: HeaderGlow, Duration: 1.0, GlowColor: headerGreen, TextColor: "#FFFFFF", StrokeColor: "#000000"},
	"bounceIn":      {Type: HeaderBounceIn, Duration: 1.0, TextColor: headerGreen, StrokeColor: headerStroke},
	"rainbow":       {Type: HeaderRainbow, Duration: 3.0, StrokeColor: "#000000"},
	"shake":         {Type: HeaderShake, Duration: 1.0, Intensity: 15, TextColor: headerHighlight, StrokeColor: "#FFFFFF"},
}
