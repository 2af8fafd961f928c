package timeline

import "math"

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

const (
	backC1 = 1.70158
	backC2 = backC1 * 1.525
	backC3 = backC1 + 1
)

func Linear(t float64) float64 { return t }

func InQuad(t float64) float64 { return t * t }

func OutQuad(t float64) float64 { return t * (2 - t) }

func InOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// InOutCubic is the default easing of Tween.
func InOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return 0.5*u*u*u + 1
}

func OutQuart(t float64) float64 { return 1 - math.Pow(1-t, 4) }

func InBack(t float64) float64 { return backC3*t*t*t - backC1*t*t }

func OutBack(t float64) float64 {
	u := t - 1
	return 1 + backC3*u*u*u + backC1*u*u
}

func InOutBack(t float64) float64 {
	if t < 0.5 {
		u := 2 * t
		return u * u * ((backC2+1)*u - backC2) / 2
	}
	u := 2*t - 2
	return (u*u*((backC2+1)*u+backC2) + 2) / 2
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// Tween calls apply with eased progress at every frame boundary between now
// and now+duration, then once more with 1 exactly at the end. A non-positive
// duration applies the final value without suspending.
func Tween(p *Proc, duration float64, ease Easing, apply func(v float64)) {
	if ease == nil {
		ease = InOutCubic
	}
	if duration <= 0 || math.IsNaN(duration) {
		apply(1)
		return
	}

	start := p.Now()
	frame := p.Frame()
	apply(ease(0))
	for i := 1; ; i++ {
		t := float64(i) * frame
		if t >= duration {
			break
		}
		p.WaitUntil(start + t)
		apply(ease(t / duration))
	}
	p.WaitUntil(start + duration)
	apply(1)
}

// TweenFunc wraps Tween so it can be passed to Proc.All.
func TweenFunc(duration float64, ease Easing, apply func(v float64)) Func {
	return func(p *Proc) { Tween(p, duration, ease, apply) }
}
