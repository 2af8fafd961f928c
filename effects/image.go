package effects

import (
	"fmt"
	"math"

	"shortsbot/scene"
	"shortsbot/timeline"
)

type ZoomKind string

const (
	ZoomIn     ZoomKind = "zoomIn"
	ZoomOut    ZoomKind = "zoomOut"
	ZoomInOut  ZoomKind = "zoomInOut"
	ZoomStatic ZoomKind = "static"
)

type PanKind string

const (
	PanLeft  PanKind = "panLeft"
	PanRight PanKind = "panRight"
	PanUp    PanKind = "panUp"
	PanDown  PanKind = "panDown"
	PanNone  PanKind = "none"
)

type ShutterKind string

const (
	ShutterFlash      ShutterKind = "flash"
	ShutterBlink      ShutterKind = "blink"
	ShutterTransition ShutterKind = "shutterTransition"
	ShutterFade       ShutterKind = "fade"
	ShutterNone       ShutterKind = "none"
)

const (
	DefaultZoomIntensity = 0.15
	DefaultPanDistance   = 100.0
	DefaultBlinkCount    = 3
	// ImageBaseY is the resting vertical offset of a slide image.
	ImageBaseY = -50.0
)

// ImageConfig describes how a slide image moves. Zero values mean
// "not configured" for each part.
type ImageConfig struct {
	Zoom          ZoomKind    `json:"zoom,omitempty"`
	ZoomIntensity float64     `json:"zoomIntensity,omitempty"`
	Pan           PanKind     `json:"pan,omitempty"`
	PanDistance   float64     `json:"panDistance,omitempty"`
	Shutter       ShutterKind `json:"shutter,omitempty"`
	BlinkCount    int         `json:"blinkCount,omitempty"`
	BaseY         float64     `json:"baseY,omitempty"`
}

func (c ImageConfig) intensity() float64 {
	if c.ZoomIntensity > 0 {
		return c.ZoomIntensity
	}
	return DefaultZoomIntensity
}

func (c ImageConfig) distance() float64 {
	if c.PanDistance > 0 {
		return c.PanDistance
	}
	return DefaultPanDistance
}

func (c ImageConfig) baseY() float64 {
	if c.BaseY != 0 {
		return c.BaseY
	}
	return ImageBaseY
}

// ImageHandler animates img for duration seconds.
type ImageHandler func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, duration float64)

var zoomHandlers = map[ZoomKind]ImageHandler{
	ZoomIn: func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, d float64) {
		i := cfg.intensity()
		img.SetScale(1)
		timeline.Tween(p, d, timeline.InOutQuad, func(v float64) { img.SetScale(1 + v*i) })
	},
	ZoomOut: func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, d float64) {
		i := cfg.intensity()
		img.SetScale(1 + i)
		timeline.Tween(p, d, timeline.InOutQuad, func(v float64) { img.SetScale(1 + i - v*i) })
	},
	ZoomInOut: func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, d float64) {
		i := cfg.intensity()
		img.SetScale(1)
		timeline.Tween(p, d*0.6, timeline.InOutQuad, func(v float64) { img.SetScale(1 + v*i) })
		timeline.Tween(p, d*0.4, timeline.InOutQuad, func(v float64) { img.SetScale(1 + i - v*i) })
	},
	ZoomStatic: func(p *timeline.Proc, img *scene.Node, _ ImageConfig, d float64) {
		img.SetScale(1)
		p.Wait(d)
	},
}

var panHandlers = map[PanKind]ImageHandler{
	PanLeft: func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, d float64) {
		dist := cfg.distance()
		img.SetX(dist / 2)
		timeline.Tween(p, d, timeline.InOutQuad, func(v float64) { img.SetX(dist/2 - v*dist) })
	},
	PanRight: func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, d float64) {
		dist := cfg.distance()
		img.SetX(-dist / 2)
		timeline.Tween(p, d, timeline.InOutQuad, func(v float64) { img.SetX(-dist/2 + v*dist) })
	},
	PanUp: func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, d float64) {
		dist, y := cfg.distance(), cfg.baseY()
		img.SetY(y + dist/2)
		timeline.Tween(p, d, timeline.InOutQuad, func(v float64) { img.SetY(y + dist/2 - v*dist) })
	},
	PanDown: func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, d float64) {
		dist, y := cfg.distance(), cfg.baseY()
		img.SetY(y - dist/2)
		timeline.Tween(p, d, timeline.InOutQuad, func(v float64) { img.SetY(y - dist/2 + v*dist) })
	},
	PanNone: func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, d float64) {
		img.SetPosition(0, cfg.baseY())
		p.Wait(d)
	},
}

var shutterHandlers = map[ShutterKind]ImageHandler{
	ShutterFlash: func(p *timeline.Proc, img *scene.Node, _ ImageConfig, d float64) {
		img.SetOpacity(1)
		img.SetBrightness(1)
		timeline.Tween(p, 0.1, timeline.OutQuad, func(v float64) { img.SetBrightness(1 + v*2) })
		timeline.Tween(p, 0.2, timeline.InQuad, func(v float64) { img.SetBrightness(3 - v*2) })
		p.Wait(d - 0.3)
	},
	ShutterBlink: func(p *timeline.Proc, img *scene.Node, cfg ImageConfig, d float64) {
		img.SetOpacity(0)
		img.SetBrightness(1)
		count := cfg.BlinkCount
		if count <= 0 {
			count = DefaultBlinkCount
		}
		blink := math.Min(d*0.4, 0.6) / float64(count)
		for i := 0; i < count; i++ {
			timeline.Tween(p, blink/2, timeline.InOutQuad, img.SetOpacity)
			timeline.Tween(p, blink/2, timeline.InOutQuad, func(v float64) { img.SetOpacity(1 - v) })
		}
		timeline.Tween(p, 0.2, timeline.InOutQuad, img.SetOpacity)
		p.Wait(d - blink*float64(count) - 0.2)
	},
	ShutterFade: func(p *timeline.Proc, img *scene.Node, _ ImageConfig, d float64) {
		img.SetOpacity(0)
		img.SetBrightness(1)
		hold := d * 0.9
		p.Wait(hold)
		timeline.Tween(p, d-hold, timeline.InOutQuad, img.SetOpacity)
	},
	// The full-screen shutter is driven by the composer between slides.
	ShutterTransition: holdShutter,
	ShutterNone:       holdShutter,
}

func holdShutter(p *timeline.Proc, img *scene.Node, _ ImageConfig, d float64) {
	img.SetOpacity(1)
	img.SetBrightness(1)
	p.Wait(d)
}

func ParseZoom(s string) (ZoomKind, error) {
	k := ZoomKind(s)
	if _, ok := zoomHandlers[k]; !ok {
		return "", fmt.Errorf("unknown zoom type %q", s)
	}
	return k, nil
}

func ParsePan(s string) (PanKind, error) {
	k := PanKind(s)
	if _, ok := panHandlers[k]; !ok {
		return "", fmt.Errorf("unknown pan type %q", s)
	}
	return k, nil
}

func ParseShutter(s string) (ShutterKind, error) {
	k := ShutterKind(s)
	if _, ok := shutterHandlers[k]; !ok {
		return "", fmt.Errorf("unknown shutter type %q", s)
	}
	return k, nil
}

// InitialScale is the scale an image must start at so its zoom has no jump.
func InitialScale(cfg ImageConfig) float64 {
	if cfg.Zoom == ZoomOut {
		return 1 + cfg.intensity()
	}
	return 1
}

// InitialPosition is the starting offset for the configured pan.
func InitialPosition(cfg ImageConfig) (x, y float64) {
	dist, base := cfg.distance(), cfg.baseY()
	switch cfg.Pan {
	case PanLeft:
		return dist / 2, base
	case PanRight:
		return -dist / 2, base
	case PanUp:
		return 0, base + dist/2
	case PanDown:
		return 0, base - dist/2
	}
	return 0, base
}

// InitialShutter returns the starting opacity and brightness.
func InitialShutter(cfg ImageConfig) (opacity, brightness float64) {
	switch cfg.Shutter {
	case ShutterBlink, ShutterFade:
		return 0, 1
	}
	return 1, 1
}

// SetInitialState places img where its configured effects begin.
func SetInitialState(img *scene.Node, cfg ImageConfig) {
	img.SetScale(InitialScale(cfg))
	img.SetPosition(InitialPosition(cfg))
	o, b := InitialShutter(cfg)
	img.SetOpacity(o)
	img.SetBrightness(b)
}

// ExecuteImage runs the configured zoom, pan and shutter concurrently. With
// nothing configured it just holds the image for duration.
func ExecuteImage(p *timeline.Proc, img *scene.Node, cfg ImageConfig, duration float64) {
	var fns []timeline.Func
	bind := func(h ImageHandler) timeline.Func {
		return func(p *timeline.Proc) { h(p, img, cfg, duration) }
	}
	if h, ok := zoomHandlers[cfg.Zoom]; ok {
		fns = append(fns, bind(h))
	}
	if h, ok := panHandlers[cfg.Pan]; ok {
		fns = append(fns, bind(h))
	}
	if h, ok := shutterHandlers[cfg.Shutter]; ok && cfg.Shutter != ShutterTransition {
		fns = append(fns, bind(h))
	}
	if len(fns) == 0 {
		p.Wait(duration)
		return
	}
	p.All(fns...)
}

// ShutterClose runs a full-screen shutter on view: black bars close from
// the top and bottom, onClosed runs, and the bars open again. Each phase
// takes a third of duration. Open bars sit just outside the view.
func ShutterClose(p *timeline.Proc, view *scene.Node, duration float64, onClosed func()) {
	w, h := view.Width(), view.Height()
	phase := duration / 3
	bar := func(name string, y float64) *scene.Node {
		r := scene.NewRect("#000000", w, h/2).Named(name)
		r.SetY(y)
		r.SetZIndex(1000)
		return view.AddChild(r)
	}
	top := bar("shutter-top", -3*h/4)
	bottom := bar("shutter-bottom", 3*h/4)

	p.All(
		func(p *timeline.Proc) { top.AnimateY(p, -h/4, phase, nil) },
		func(p *timeline.Proc) { bottom.AnimateY(p, h/4, phase, nil) },
	)
	if onClosed != nil {
		onClosed()
	}
	p.Wait(phase)
	p.All(
		func(p *timeline.Proc) { top.AnimateY(p, -3*h/4, phase, nil) },
		func(p *timeline.Proc) { bottom.AnimateY(p, 3*h/4, phase, nil) },
	)
	top.Remove()
	bottom.Remove()
}
