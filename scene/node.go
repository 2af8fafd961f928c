package scene

import (
	"sort"
)

// Kind identifies what a node draws.
type Kind int

const (
	KindGroup Kind = iota
	KindText
	KindRect
	KindImage
	KindLine
	KindCircle
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindText:
		return "text"
	case KindRect:
		return "rect"
	case KindImage:
		return "image"
	case KindLine:
		return "line"
	case KindCircle:
		return "circle"
	}
	return "unknown"
}

// Prop names a mutable node property.
type Prop string

const (
	PropText       Prop = "text"
	PropFill       Prop = "fill"
	PropStroke     Prop = "stroke"
	PropOpacity    Prop = "opacity"
	PropScale      Prop = "scale"
	PropX          Prop = "x"
	PropY          Prop = "y"
	PropWidth      Prop = "width"
	PropHeight     Prop = "height"
	PropZIndex     Prop = "zIndex"
	PropBrightness Prop = "brightness"
	PropBlur       Prop = "blur"
	PropPoints     Prop = "points"
)

// Align controls horizontal placement inside a flow group.
type Align string

const (
	AlignCenter Align = "center"
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
)

// TextStyle holds the font attributes of a text node. They have no timing
// behavior; only FontSize feeds layout.
type TextStyle struct {
	FontSize    float64
	FontWeight  int
	FontFamily  string
	Align       Align
	Stroke      string
	LineWidth   float64
	ShadowColor string
	ShadowBlur  float64
}

// Point is a 2D coordinate used by line nodes.
type Point struct {
	X, Y float64
}

// Node is an element of the scene tree. A parent exclusively owns its
// children: removing a node detaches its whole subtree.
type Node struct {
	id       int
	kind     Kind
	name     string
	root     *Root
	parent   *Node
	children []*Node

	text       string
	style      TextStyle
	src        string
	fill       string
	stroke     string
	opacity    float64
	scale      float64
	x, y       float64
	width      float64
	height     float64
	radius     float64
	zIndex     int
	brightness float64
	blur       float64
	points     []Point

	flow     bool
	maxWidth float64
	align    Align

	box     Box
	laidOut bool
}

func newNode(kind Kind, name string) *Node {
	return &Node{kind: kind, name: name, opacity: 1, scale: 1, brightness: 1}
}

// NewGroup creates an empty container.
func NewGroup(name string) *Node {
	return newNode(KindGroup, name)
}

// NewFlow creates a container that lays its children out left to right,
// wrapping at maxWidth. A zero maxWidth never wraps.
func NewFlow(name string, maxWidth float64, align Align) *Node {
	n := newNode(KindGroup, name)
	n.flow = true
	n.maxWidth = maxWidth
	if align == "" {
		align = AlignCenter
	}
	n.align = align
	return n
}

// NewText creates a text node.
func NewText(text string, style TextStyle) *Node {
	n := newNode(KindText, "")
	n.text = text
	n.style = style
	return n
}

// NewRect creates a filled rectangle.
func NewRect(fill string, width, height float64) *Node {
	n := newNode(KindRect, "")
	n.fill = fill
	n.width = width
	n.height = height
	return n
}

// NewImage creates an image node for src.
func NewImage(src string, width, height float64) *Node {
	n := newNode(KindImage, "")
	n.src = src
	n.width = width
	n.height = height
	return n
}

// NewLine creates a polyline.
func NewLine(stroke string, lineWidth float64, points ...Point) *Node {
	n := newNode(KindLine, "")
	n.stroke = stroke
	n.style.LineWidth = lineWidth
	n.points = append([]Point(nil), points...)
	return n
}

// NewCircle creates a circle of the given diameter.
func NewCircle(fill string, size float64) *Node {
	n := newNode(KindCircle, "")
	n.fill = fill
	n.width = size
	n.height = size
	return n
}

// Named sets the node name and returns the node, for use while building.
func (n *Node) Named(name string) *Node {
	n.name = name
	return n
}

func (n *Node) ID() int { return n.id }
func (n *Node) Kind() Kind { return n.kind }
func (n *Node) Name() string { return n.name }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Attached() bool { return n.root != nil }
func (n *Node) Scene() *Root { return n.root }
func (n *Node) Style() TextStyle { return n.style }
func (n *Node) Src() string { return n.src }
func (n *Node) Text() string { return n.text }
func (n *Node) Fill() string { return n.fill }
func (n *Node) Stroke() string { return n.stroke }
func (n *Node) Opacity() float64 { return n.opacity }
func (n *Node) Scale() float64 { return n.scale }
func (n *Node) X() float64 { return n.x }
func (n *Node) Y() float64 { return n.y }
func (n *Node) Width() float64 { return n.width }
func (n *Node) Height() float64 { return n.height }
func (n *Node) Radius() float64 { return n.radius }
func (n *Node) ZIndex() int { return n.zIndex }
func (n *Node) Brightness() float64 { return n.brightness }
func (n *Node) Blur() float64 { return n.blur }
func (n *Node) Points() []Point { return append([]Point(nil), n.points...) }

// Children returns a copy of the child list in insertion order.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Sorted returns the children ordered by z-index, ties kept in insertion order.
func (n *Node) Sorted() []*Node {
	out := n.Children()
	sort.SliceStable(out, func(i, j int) bool { return out[i].zIndex < out[j].zIndex })
	return out
}

// AddChild appends c to n, detaching it from any previous parent, and
// returns c.
func (n *Node) AddChild(c *Node) *Node {
	if c.parent != nil {
		c.Remove()
	}
	c.parent = n
	n.children = append(n.children, c)
	if n.root != nil {
		n.root.attach(c)
		n.root.emit(EventAdded, c, "", nil)
	}
	return c
}

// Remove detaches n and its subtree from the tree.
func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	p := n.parent
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
	if r := n.root; r != nil {
		r.emit(EventRemoved, n, "", nil)
		r.detach(n)
	}
}

// Find returns the first descendant (or n itself) with the given name.
func (n *Node) Find(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

func (n *Node) changed(prop Prop, v any) {
	if n.root != nil {
		n.root.emit(EventChanged, n, prop, v)
	}
}

func (n *Node) SetText(s string) {
	if n.text == s {
		return
	}
	n.text = s
	n.changed(PropText, s)
}

func (n *Node) SetFill(c string) {
	if n.fill == c {
		return
	}
	n.fill = c
	n.changed(PropFill, c)
}

func (n *Node) SetStroke(c string) {
	if n.stroke == c {
		return
	}
	n.stroke = c
	n.changed(PropStroke, c)
}

func (n *Node) SetOpacity(v float64) {
	if n.opacity == v {
		return
	}
	n.opacity = v
	n.changed(PropOpacity, v)
}

func (n *Node) SetScale(v float64) {
	if n.scale == v {
		return
	}
	n.scale = v
	n.changed(PropScale, v)
}

func (n *Node) SetX(v float64) {
	if n.x == v {
		return
	}
	n.x = v
	n.changed(PropX, v)
}

func (n *Node) SetY(v float64) {
	if n.y == v {
		return
	}
	n.y = v
	n.changed(PropY, v)
}

// SetPosition sets x and y.
func (n *Node) SetPosition(x, y float64) {
	n.SetX(x)
	n.SetY(y)
}

// SetSize sets width and height.
func (n *Node) SetSize(w, h float64) {
	if n.width != w {
		n.width = w
		n.changed(PropWidth, w)
	}
	if n.height != h {
		n.height = h
		n.changed(PropHeight, h)
	}
}

func (n *Node) SetRadius(r float64) { n.radius = r }

func (n *Node) SetZIndex(z int) {
	if n.zIndex == z {
		return
	}
	n.zIndex = z
	n.changed(PropZIndex, z)
}

func (n *Node) SetBrightness(v float64) {
	if n.brightness == v {
		return
	}
	n.brightness = v
	n.changed(PropBrightness, v)
}

func (n *Node) SetBlur(v float64) {
	if n.blur == v {
		return
	}
	n.blur = v
	n.changed(PropBlur, v)
}

func (n *Node) SetPoints(pts ...Point) {
	n.points = append(n.points[:0], pts...)
	n.changed(PropPoints, n.Points())
}
