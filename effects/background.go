package effects

import (
	"fmt"
	"math"
	"math/rand"

	"shortsbot/scene"
	"shortsbot/timeline"
)

type LineKind string

const (
	LineRadialBurst  LineKind = "radialBurst"
	LineSpiralMotion LineKind = "spiralMotion"
)

type ParticleKind string

const (
	ParticleExplosion    ParticleKind = "explosion"
	ParticleVortex       ParticleKind = "vortex"
	ParticleMeteorShower ParticleKind = "meteorShower"
)

// LineConfig describes a field of lines radiating from a center.
type LineConfig struct {
	CenterX, CenterY float64
	Count            int
	MaxLength        float64
	Color            string
	SecondaryColor   string
	Opacity          float64
	Rotations        float64
	Rand             *rand.Rand
}

func DefaultLineConfig() LineConfig {
	return LineConfig{Count: 50, MaxLength: 1200, Color: "#FFFFFF", SecondaryColor: "#00CED1", Opacity: 0.6, Rotations: 2}
}

// ParticleConfig describes a particle burst.
type ParticleConfig struct {
	CenterX, CenterY float64
	Count            int
	MaxDistance      float64
	Color            string
	SecondaryColor   string
	Intensity        float64
	Rotations        float64
	Rand             *rand.Rand
}

func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{Count: 80, MaxDistance: 800, Color: "#FFD700", SecondaryColor: "#FFFFFF", Intensity: 1, Rotations: 3}
}

func seeded(r *rand.Rand) *rand.Rand {
	if r != nil {
		return r
	}
	return rand.New(rand.NewSource(1))
}

// Lines is a line effect built under a container node. Randomized
// properties are drawn once at build time.
type Lines struct {
	cfg       LineConfig
	container *scene.Node
	lines     []line
}

type line struct {
	node         *scene.Node
	start, end   scene.Point
	angle, delay float64
}

// NewLines adds a hidden line container to parent.
func NewLines(parent *scene.Node, cfg LineConfig) *Lines {
	rng := seeded(cfg.Rand)
	l := &Lines{cfg: cfg, container: parent.AddChild(scene.NewGroup("lines"))}
	l.container.SetOpacity(0)
	for i := 0; i < cfg.Count; i++ {
		angle := float64(i) / float64(cfg.Count) * 2 * math.Pi
		start := scene.Point{X: cfg.CenterX, Y: cfg.CenterY}
		end := scene.Point{X: cfg.CenterX + math.Cos(angle)*cfg.MaxLength, Y: cfg.CenterY + math.Sin(angle)*cfg.MaxLength}
		stroke := cfg.Color
		if i%2 == 0 {
			stroke = cfg.SecondaryColor
		}
		n := scene.NewLine(stroke, 2+rng.Float64()*4, start, start)
		n.SetOpacity(0)
		l.container.AddChild(n)
		l.lines = append(l.lines, line{node: n, start: start, end: end, angle: angle, delay: rng.Float64() * 0.3})
	}
	return l
}

func (l *Lines) Container() *scene.Node { return l.container }

// LineHandler plays a line effect for duration seconds.
type LineHandler func(p *timeline.Proc, l *Lines, duration float64)

var lineHandlers = map[LineKind]LineHandler{
	LineRadialBurst:  radialBurst,
	LineSpiralMotion: spiralMotion,
}

func ParseLine(s string) (LineKind, error) {
	k := LineKind(s)
	if _, ok := lineHandlers[k]; !ok {
		return "", fmt.Errorf("unknown line effect %q", s)
	}
	return k, nil
}

// Play runs the effect of the given kind.
func (l *Lines) Play(p *timeline.Proc, kind LineKind, duration float64) error {
	h, ok := lineHandlers[kind]
	if !ok {
		return fmt.Errorf("unknown line effect %q", kind)
	}
	h(p, l, duration)
	return nil
}

func radialBurst(p *timeline.Proc, l *Lines, d float64) {
	l.container.AnimateOpacity(p, 1, 0.1, nil)
	fns := make([]timeline.Func, len(l.lines))
	for i := range l.lines {
		ln := l.lines[i]
		fns[i] = func(p *timeline.Proc) {
			p.Wait(ln.delay)
			p.All(
				scene.Opacity(ln.node, l.cfg.Opacity, 0.2, nil),
				timeline.TweenFunc(d*0.8, timeline.Linear, func(v float64) {
					t := timeline.OutQuart(v)
					ln.node.SetPoints(ln.start, scene.Point{
						X: timeline.Lerp(ln.start.X, ln.end.X, t),
						Y: timeline.Lerp(ln.start.Y, ln.end.Y, t),
					})
				}),
			)
			ln.node.AnimateOpacity(p, 0, d*0.2, nil)
		}
	}
	p.All(fns...)
}

func spiralMotion(p *timeline.Proc, l *Lines, d float64) {
	l.container.AnimateOpacity(p, 1, 0.1, nil)
	cx, cy := l.cfg.CenterX, l.cfg.CenterY
	fns := make([]timeline.Func, len(l.lines))
	for i := range l.lines {
		ln := l.lines[i]
		delay := float64(i) / float64(len(l.lines)) * 0.8
		fns[i] = func(p *timeline.Proc) {
			p.Wait(delay)
			ln.node.AnimateOpacity(p, l.cfg.Opacity, 0.2, nil)
			timeline.Tween(p, d, timeline.InOutQuad, func(t float64) {
				a := ln.angle + t*l.cfg.Rotations*2*math.Pi
				dist := t * l.cfg.MaxLength
				ln.node.SetPoints(
					scene.Point{X: cx + math.Cos(a)*dist*0.2, Y: cy + math.Sin(a)*dist*0.2},
					scene.Point{X: cx + math.Cos(a)*dist, Y: cy + math.Sin(a)*dist},
				)
			})
			ln.node.AnimateOpacity(p, 0, 0.3, nil)
		}
	}
	p.All(fns...)
}

// Particles is a particle effect built under a container node.
type Particles struct {
	cfg       ParticleConfig
	container *scene.Node
	particles []particle
}

type particle struct {
	node         *scene.Node
	end          scene.Point
	angle, delay float64
	speed        float64
}

// NewParticles adds a hidden particle container to parent.
func NewParticles(parent *scene.Node, cfg ParticleConfig) *Particles {
	rng := seeded(cfg.Rand)
	ps := &Particles{cfg: cfg, container: parent.AddChild(scene.NewGroup("particles"))}
	ps.container.SetOpacity(0)
	for i := 0; i < cfg.Count; i++ {
		angle := float64(i)/float64(cfg.Count)*2*math.Pi + rng.Float64()*0.3
		dist := cfg.MaxDistance + rng.Float64()*200
		fill := cfg.Color
		if i%3 == 0 {
			fill = cfg.SecondaryColor
		}
		n := scene.NewCircle(fill, 3+rng.Float64()*5)
		n.SetPosition(cfg.CenterX, cfg.CenterY)
		n.SetOpacity(0)
		ps.container.AddChild(n)
		ps.particles = append(ps.particles, particle{
			node:  n,
			end:   scene.Point{X: cfg.CenterX + math.Cos(angle)*dist, Y: cfg.CenterY + math.Sin(angle)*dist},
			angle: angle,
			delay: rng.Float64() * 0.5,
			speed: 0.8 + rng.Float64()*0.4,
		})
	}
	return ps
}

func (ps *Particles) Container() *scene.Node { return ps.container }

// ParticleHandler plays a particle effect for duration seconds.
type ParticleHandler func(p *timeline.Proc, ps *Particles, duration float64)

var particleHandlers = map[ParticleKind]ParticleHandler{
	ParticleExplosion:    explosion,
	ParticleVortex:       vortex,
	ParticleMeteorShower: meteorShower,
}

func ParseParticle(s string) (ParticleKind, error) {
	k := ParticleKind(s)
	if _, ok := particleHandlers[k]; !ok {
		return "", fmt.Errorf("unknown particle effect %q", s)
	}
	return k, nil
}

func (ps *Particles) Play(p *timeline.Proc, kind ParticleKind, duration float64) error {
	h, ok := particleHandlers[kind]
	if !ok {
		return fmt.Errorf("unknown particle effect %q", kind)
	}
	h(p, ps, duration)
	return nil
}

func explosion(p *timeline.Proc, ps *Particles, d float64) {
	ps.container.AnimateOpacity(p, 1, 0.05, nil)
	peak := 0.8 * ps.cfg.Intensity
	cx, cy := ps.cfg.CenterX, ps.cfg.CenterY
	fns := make([]timeline.Func, len(ps.particles))
	for i := range ps.particles {
		pt := ps.particles[i]
		fns[i] = func(p *timeline.Proc) {
			pt.node.SetScale(0.1)
			p.All(
				scene.Opacity(pt.node, peak, 0.1, nil),
				scene.Scale(pt.node, 1, 0.2, nil),
				timeline.TweenFunc(d, timeline.Linear, func(v float64) {
					t := timeline.OutQuart(v)
					pt.node.SetPosition(timeline.Lerp(cx, pt.end.X, t), timeline.Lerp(cy, pt.end.Y, t))
					if t > 0.6 {
						fade := (t - 0.6) / 0.4
						pt.node.SetOpacity(peak * (1 - fade))
						pt.node.SetScale(1 + fade*0.5)
					}
				}),
			)
		}
	}
	p.All(fns...)
}

func vortex(p *timeline.Proc, ps *Particles, d float64) {
	ps.container.AnimateOpacity(p, 1, 0.1, nil)
	cx, cy := ps.cfg.CenterX, ps.cfg.CenterY
	fns := make([]timeline.Func, len(ps.particles))
	for i := range ps.particles {
		pt := ps.particles[i]
		delay := float64(i) / float64(len(ps.particles))
		fns[i] = func(p *timeline.Proc) {
			p.Wait(delay)
			pt.node.AnimateOpacity(p, 0.7*ps.cfg.Intensity, 0.1, nil)
			timeline.Tween(p, d, timeline.InOutQuad, func(t float64) {
				a := pt.angle + t*ps.cfg.Rotations*2*math.Pi
				dist := t * ps.cfg.MaxDistance
				pt.node.SetPosition(cx+math.Cos(a)*dist, cy+math.Sin(a)*dist)
				pt.node.SetScale(1 + math.Sin(t*math.Pi*4)*0.3)
			})
			pt.node.AnimateOpacity(p, 0, 0.2, nil)
		}
	}
	p.All(fns...)
}

func meteorShower(p *timeline.Proc, ps *Particles, d float64) {
	ps.container.AnimateOpacity(p, 1, 0.1, nil)
	peak := 0.7 * ps.cfg.Intensity
	fns := make([]timeline.Func, len(ps.particles))
	for i := range ps.particles {
		pt := ps.particles[i]
		fns[i] = func(p *timeline.Proc) {
			p.Wait(pt.delay)
			back := pt.angle + math.Pi
			sx := ps.cfg.CenterX + math.Cos(back)*ps.cfg.MaxDistance
			sy := ps.cfg.CenterY + math.Sin(back)*ps.cfg.MaxDistance
			pt.node.SetPosition(sx, sy)
			travel := ps.cfg.MaxDistance * 2
			p.All(
				scene.Opacity(pt.node, peak, 0.1, nil),
				timeline.TweenFunc(d*pt.speed, timeline.Linear, func(v float64) {
					t := timeline.OutQuart(v)
					pt.node.SetPosition(sx+math.Cos(pt.angle)*travel*t, sy+math.Sin(pt.angle)*travel*t)
					pt.node.SetScale(1 + t*0.5)
					if t > 0.7 {
						pt.node.SetOpacity(peak * (1 - (t-0.7)/0.3))
					}
				}),
			)
		}
	}
	p.All(fns...)
}
