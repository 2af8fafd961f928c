package scene

import "shortsbot/timeline"

func tweenFloat(p *timeline.Proc, from, to, d float64, ease timeline.Easing, set func(float64)) {
	timeline.Tween(p, d, ease, func(v float64) { set(timeline.Lerp(from, to, v)) })
}

// AnimateOpacity tweens opacity from its current value to `to` over d seconds.
func (n *Node) AnimateOpacity(p *timeline.Proc, to, d float64, ease timeline.Easing) {
	tweenFloat(p, n.opacity, to, d, ease, n.SetOpacity)
}

func (n *Node) AnimateScale(p *timeline.Proc, to, d float64, ease timeline.Easing) {
	tweenFloat(p, n.scale, to, d, ease, n.SetScale)
}

func (n *Node) AnimateX(p *timeline.Proc, to, d float64, ease timeline.Easing) {
	tweenFloat(p, n.x, to, d, ease, n.SetX)
}

func (n *Node) AnimateY(p *timeline.Proc, to, d float64, ease timeline.Easing) {
	tweenFloat(p, n.y, to, d, ease, n.SetY)
}

func (n *Node) AnimateBrightness(p *timeline.Proc, to, d float64, ease timeline.Easing) {
	tweenFloat(p, n.brightness, to, d, ease, n.SetBrightness)
}

func (n *Node) AnimateBlur(p *timeline.Proc, to, d float64, ease timeline.Easing) {
	tweenFloat(p, n.blur, to, d, ease, n.SetBlur)
}

// AnimateFill blends the fill color towards `to`.
func (n *Node) AnimateFill(p *timeline.Proc, to string, d float64, ease timeline.Easing) {
	from := n.fill
	timeline.Tween(p, d, ease, func(v float64) {
		if v >= 1 {
			n.SetFill(to)
			return
		}
		n.SetFill(LerpColor(from, to, v))
	})
}

// Opacity returns a Func tweening n's opacity, for use with Proc.All.
func Opacity(n *Node, to, d float64, ease timeline.Easing) timeline.Func {
	return func(p *timeline.Proc) { n.AnimateOpacity(p, to, d, ease) }
}

// Scale returns a Func tweening n's scale.
func Scale(n *Node, to, d float64, ease timeline.Easing) timeline.Func {
	return func(p *timeline.Proc) { n.AnimateScale(p, to, d, ease) }
}
