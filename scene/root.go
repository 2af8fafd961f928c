package scene

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// Advance and line-height factors used to estimate text extents. A wide
// (CJK/Hangul) rune counts as two cells.
const (
	cellAdvance = 0.5
	lineHeight  = 1.2
)

// EventKind classifies a scene mutation.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRemoved EventKind = "removed"
	EventChanged EventKind = "changed"
)

// Event records one mutation of an attached node.
type Event struct {
	Time  float64
	Kind  EventKind
	Node  *Node
	Prop  Prop
	Value any
}

// Clock supplies the time stamped on events.
type Clock interface {
	Now() float64
}

// Box is an axis-aligned box given by its center and size.
type Box struct {
	X, Y float64
	W, H float64
}

func (b Box) Left() float64   { return b.X - b.W/2 }
func (b Box) Right() float64  { return b.X + b.W/2 }
func (b Box) Top() float64    { return b.Y - b.H/2 }
func (b Box) Bottom() float64 { return b.Y + b.H/2 }

// Root is the top of a scene tree. Its embedded Node is the canvas group.
type Root struct {
	*Node

	clock     Clock
	observers []func(Event)
	nextID    int
	settled   bool
	dirty     bool
}

// New creates an empty canvas of the given size. clock may be nil, in which
// case events carry time zero.
func New(clock Clock, width, height float64) *Root {
	r := &Root{clock: clock}
	r.Node = newNode(KindGroup, "root")
	r.Node.width = width
	r.Node.height = height
	r.attach(r.Node)
	return r
}

// Observe registers fn to receive every mutation event.
func (r *Root) Observe(fn func(Event)) {
	r.observers = append(r.observers, fn)
}

// Settled reports whether layout has been synchronized at least once.
func (r *Root) Settled() bool { return r.settled }

// Settle synchronizes layout. Bounding boxes are unavailable until the first
// settle, mirroring a renderer that has not drawn its first frame.
func (r *Root) Settle() {
	r.settled = true
	r.Layout()
}

// Layout recomputes every node's absolute box.
func (r *Root) Layout() {
	r.place(r.Node, 0, 0)
	r.dirty = false
}

func (r *Root) now() float64 {
	if r.clock == nil {
		return 0
	}
	return r.clock.Now()
}

func (r *Root) emit(kind EventKind, n *Node, prop Prop, v any) {
	r.dirty = true
	if len(r.observers) == 0 {
		return
	}
	e := Event{Time: r.now(), Kind: kind, Node: n, Prop: prop, Value: v}
	for _, fn := range r.observers {
		fn(e)
	}
}

func (r *Root) attach(n *Node) {
	n.Walk(func(c *Node) {
		if c.root == r {
			return
		}
		c.root = r
		r.nextID++
		c.id = r.nextID
	})
}

func (r *Root) detach(n *Node) {
	n.Walk(func(c *Node) {
		c.root = nil
		c.laidOut = false
	})
}

// BBox returns the node's absolute box. ok is false while the node is
// detached or before the scene has settled.
func (n *Node) BBox() (Box, bool) {
	r := n.root
	if r == nil || !r.settled {
		return Box{}, false
	}
	if r.dirty || !n.laidOut {
		r.Layout()
	}
	return n.box, n.laidOut
}

// measure returns the scaled size of n in its parent's units.
func (n *Node) measure() (float64, float64) {
	var w, h float64
	switch n.kind {
	case KindText:
		w = float64(runewidth.StringWidth(n.text)) * n.style.FontSize * cellAdvance
		h = n.style.FontSize * lineHeight
	case KindLine:
		if len(n.points) > 0 {
			minX, minY := math.Inf(1), math.Inf(1)
			maxX, maxY := math.Inf(-1), math.Inf(-1)
			for _, p := range n.points {
				minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
				minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			}
			w, h = maxX-minX, maxY-minY
		}
	case KindGroup:
		if n.flow {
			w, h = n.flowExtent()
		} else if len(n.children) > 0 && n.width == 0 && n.height == 0 {
			w, h = n.groupExtent()
		} else {
			w, h = n.width, n.height
		}
	default:
		w, h = n.width, n.height
	}
	return w * n.scale, h * n.scale
}

func (n *Node) groupExtent() (float64, float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range n.children {
		cw, ch := c.measure()
		minX = math.Min(minX, c.x-cw/2)
		maxX = math.Max(maxX, c.x+cw/2)
		minY = math.Min(minY, c.y-ch/2)
		maxY = math.Max(maxY, c.y+ch/2)
	}
	return maxX - minX, maxY - minY
}

type flowLine struct {
	items  []*Node
	widths []float64
	width  float64
	height float64
}

func (n *Node) flowLines() []flowLine {
	var lines []flowLine
	cur := flowLine{}
	for _, c := range n.children {
		cw, ch := c.measure()
		if n.maxWidth > 0 && len(cur.items) > 0 && cur.width+cw > n.maxWidth {
			lines = append(lines, cur)
			cur = flowLine{}
		}
		cur.items = append(cur.items, c)
		cur.widths = append(cur.widths, cw)
		cur.width += cw
		cur.height = math.Max(cur.height, ch)
	}
	if len(cur.items) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

func (n *Node) flowExtent() (float64, float64) {
	var w, h float64
	for _, l := range n.flowLines() {
		w = math.Max(w, l.width)
		h += l.height
	}
	if n.maxWidth > 0 {
		w = n.maxWidth
	}
	return w, h
}

func (r *Root) place(n *Node, cx, cy float64) {
	w, h := n.measure()
	n.box = Box{X: cx, Y: cy, W: w, H: h}
	n.laidOut = true

	if !n.flow {
		for _, c := range n.children {
			r.place(c, cx+c.x*n.scale, cy+c.y*n.scale)
		}
		return
	}

	lines := n.flowLines()
	top := cy - h/2
	for _, l := range lines {
		var x float64
		switch n.align {
		case AlignLeft:
			x = cx - w/2
		case AlignRight:
			x = cx + w/2 - l.width
		default:
			x = cx - l.width/2
		}
		for i, c := range l.items {
			r.place(c, x+l.widths[i]/2, top+l.height/2)
			x += l.widths[i]
		}
		top += l.height
	}
}
