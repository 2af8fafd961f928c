package scene

import (
	"context"
	"testing"

	"shortsbot/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRemoveEmitsEventsAndOwnsSubtree(t *testing.T) {
	root := New(nil, 1080, 1920)
	var events []Event
	root.Observe(func(e Event) { events = append(events, e) })

	group := NewGroup("caption")
	word := group.AddChild(NewText("남자", TextStyle{FontSize: 80}))
	assert.False(t, word.Attached())

	root.AddChild(group)
	assert.True(t, word.Attached())
	require.Len(t, events, 1)
	assert.Equal(t, EventAdded, events[0].Kind)

	word.SetFill("#FFFF00")
	word.SetFill("#FFFF00")
	require.Len(t, events, 2, "setting the same value is not a change")
	assert.Equal(t, PropFill, events[1].Prop)

	group.Remove()
	assert.False(t, word.Attached())
	assert.Empty(t, root.Children())
	assert.Equal(t, EventRemoved, events[len(events)-1].Kind)

	word.SetFill("#FFFFFF")
	assert.Len(t, events, 3, "detached nodes are silent")
}

func TestBBoxUnavailableUntilSettled(t *testing.T) {
	root := New(nil, 1080, 1920)
	word := root.AddChild(NewText("간다", TextStyle{FontSize: 100}))

	_, ok := word.BBox()
	assert.False(t, ok)

	root.Settle()
	box, ok := word.BBox()
	require.True(t, ok)
	assert.InDelta(t, 200.0, box.W, 1e-9, "two wide runes, four cells")
	assert.InDelta(t, 120.0, box.H, 1e-9)
}

func TestFlowLayoutWrapsAndCenters(t *testing.T) {
	root := New(nil, 1080, 1920)
	flow := root.AddChild(NewFlow("run", 300, AlignCenter))
	flow.SetY(500)
	style := TextStyle{FontSize: 100}
	a := flow.AddChild(NewText("ab", style))
	b := flow.AddChild(NewText("cd", style))
	c := flow.AddChild(NewText("efgh", style))
	root.Settle()

	ba, _ := a.BBox()
	bb, _ := b.BBox()
	bc, _ := c.BBox()
	assert.InDelta(t, -50.0, ba.X, 1e-9)
	assert.InDelta(t, 50.0, bb.X, 1e-9)
	assert.InDelta(t, ba.Y, bb.Y, 1e-9)
	assert.InDelta(t, 0.0, bc.X, 1e-9, "wrapped line is centered on its own")
	assert.Greater(t, bc.Y, ba.Y)

	fb, _ := flow.BBox()
	assert.InDelta(t, 300.0, fb.W, 1e-9)
	assert.InDelta(t, 240.0, fb.H, 1e-9)
	assert.InDelta(t, 500.0, fb.Y, 1e-9)
}

func TestLayoutTracksMutationsAfterSettle(t *testing.T) {
	root := New(nil, 1080, 1920)
	root.Settle()
	rect := root.AddChild(NewRect("#000000", 10, 10))
	rect.SetPosition(20, 30)

	box, ok := rect.BBox()
	require.True(t, ok)
	assert.Equal(t, Box{X: 20, Y: 30, W: 10, H: 10}, box)
}

func TestColorHelpers(t *testing.T) {
	c, err := ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", c.Hex())

	assert.True(t, SameColor("cyan", "#00FFFF"))
	assert.False(t, SameColor("#FF0000", "#00FF00"))

	_, err = ParseColor("not-a-color")
	assert.Error(t, err)

	assert.Equal(t, "#000000", LerpColor("#000000", "#FFFFFF", 0))
	assert.Equal(t, "#ffffff", LerpColor("#000000", "#FFFFFF", 1))
}

func TestAnimateOpacityStampsEventsWithVirtualTime(t *testing.T) {
	s := timeline.New(timeline.WithFrameRate(10))
	root := New(s, 1080, 1920)
	word := root.AddChild(NewText("는", TextStyle{FontSize: 80}))
	word.SetOpacity(0.5)

	var times []float64
	root.Observe(func(e Event) {
		if e.Prop == PropOpacity {
			times = append(times, e.Time)
		}
	})

	err := s.Run(context.Background(), func(p *timeline.Proc) {
		p.Wait(1)
		word.AnimateOpacity(p, 1, 0.2, timeline.Linear)
	})

	require.NoError(t, err)
	assert.InDelta(t, 1.0, word.Opacity(), 1e-9)
	require.NotEmpty(t, times)
	assert.InDelta(t, 1.2, times[len(times)-1], 1e-9)
}
