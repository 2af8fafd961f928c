package timeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasingsHitEndpoints(t *testing.T) {
	easings := map[string]Easing{
		"linear":     Linear,
		"inQuad":     InQuad,
		"outQuad":    OutQuad,
		"inOutQuad":  InOutQuad,
		"inOutCubic": InOutCubic,
		"outQuart":   OutQuart,
		"inBack":     InBack,
		"outBack":    OutBack,
		"inOutBack":  InOutBack,
	}
	for name, ease := range easings {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0.0, ease(0), 1e-9)
			assert.InDelta(t, 1.0, ease(1), 1e-9)
		})
	}
}

func TestOutBackOvershoots(t *testing.T) {
	assert.Greater(t, OutBack(0.7), 1.0)
}

func TestTweenSamplesEachFrameAndEndsExactly(t *testing.T) {
	s := New(WithFrameRate(10))
	var values []float64
	var end float64

	err := s.Run(context.Background(), func(p *Proc) {
		p.Wait(1)
		Tween(p, 0.35, Linear, func(v float64) { values = append(values, v) })
		end = p.Now()
	})

	require.NoError(t, err)
	assert.InDelta(t, 1.35, end, 1e-9)
	require.Len(t, values, 5)
	assert.InDelta(t, 0.0, values[0], 1e-9)
	assert.InDelta(t, 0.1/0.35, values[1], 1e-9)
	assert.InDelta(t, 1.0, values[len(values)-1], 1e-9)
}

func TestZeroDurationTweenDoesNotSuspend(t *testing.T) {
	s := New()
	applied := 0.0

	err := s.Run(context.Background(), func(p *Proc) {
		Tween(p, 0, nil, func(v float64) { applied = v })
		assert.InDelta(t, 0.0, p.Now(), 1e-9)
	})

	require.NoError(t, err)
	assert.InDelta(t, 1.0, applied, 1e-9)
}

func TestLerp(t *testing.T) {
	assert.InDelta(t, 0.75, Lerp(0.5, 1, 0.5), 1e-9)
}
