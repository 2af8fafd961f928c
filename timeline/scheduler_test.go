package timeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestWaitAdvancesVirtualClock(t *testing.T) {
	s := New()
	var marks []float64

	err := s.Run(context.Background(), func(p *Proc) {
		marks = append(marks, p.Now())
		p.Wait(0.4)
		marks = append(marks, p.Now())
		p.Wait(-3)
		marks = append(marks, p.Now())
		p.Wait(1.1)
		marks = append(marks, p.Now())
	})

	require.NoError(t, err)
	require.Len(t, marks, 4)
	assert.InDelta(t, 0.0, marks[0], eps)
	assert.InDelta(t, 0.4, marks[1], eps)
	assert.InDelta(t, 0.4, marks[2], eps, "negative waits collapse to zero")
	assert.InDelta(t, 1.5, marks[3], eps)
	assert.InDelta(t, 1.5, s.Now(), eps)
}

func TestAllFinishesWithSlowestBranch(t *testing.T) {
	s := New()
	var order []string
	var end float64

	err := s.Run(context.Background(), func(p *Proc) {
		p.All(
			func(p *Proc) { p.Wait(0.3); order = append(order, "a") },
			func(p *Proc) { p.Wait(0.1); order = append(order, "b") },
			func(p *Proc) { p.Wait(0.2); order = append(order, "c") },
		)
		end = p.Now()
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, order)
	assert.InDelta(t, 0.3, end, eps)
}

func TestSameInstantWakeupsRunInScheduleOrder(t *testing.T) {
	s := New()
	var order []int

	err := s.Run(context.Background(), func(p *Proc) {
		var procs []*Proc
		for i := 0; i < 5; i++ {
			i := i
			procs = append(procs, p.Spawn(func(p *Proc) {
				p.Wait(1)
				order = append(order, i)
			}))
		}
		p.Join(procs...)
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRunWaitsForDetachedProcs(t *testing.T) {
	s := New()
	finished := false

	err := s.Run(context.Background(), func(p *Proc) {
		p.Spawn(func(p *Proc) {
			p.Wait(2)
			finished = true
		})
	})

	require.NoError(t, err)
	assert.True(t, finished)
	assert.InDelta(t, 2.0, s.Now(), eps)
}

func TestJoinOnFinishedProcReturnsImmediately(t *testing.T) {
	s := New()

	err := s.Run(context.Background(), func(p *Proc) {
		child := p.Spawn(func(p *Proc) {})
		p.Wait(1)
		assert.True(t, child.Done())
		p.Join(child)
		assert.InDelta(t, 1.0, p.Now(), eps)
	})

	require.NoError(t, err)
}

func TestPanicIsReturnedAsError(t *testing.T) {
	s := New()

	err := s.Run(context.Background(), func(p *Proc) {
		p.All(
			func(p *Proc) { p.Wait(5) },
			func(p *Proc) { p.Wait(1); panic("boom") },
		)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCancelledContextAbortsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()

	err := s.Run(ctx, func(p *Proc) {
		for i := 0; i < 100; i++ {
			if i == 3 {
				cancel()
			}
			p.Wait(1)
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, s.Now(), 10.0)
}

func TestSchedulerCanRunAgain(t *testing.T) {
	s := New()
	require.NoError(t, s.Run(context.Background(), WaitFor(1)))
	require.NoError(t, s.Run(context.Background(), WaitFor(1)))
	assert.InDelta(t, 2.0, s.Now(), eps)
}

func TestOnAdvanceReportsEveryStep(t *testing.T) {
	s := New()
	type step struct{ from, to float64 }
	var steps []step
	s.OnAdvance(func(from, to float64) { steps = append(steps, step{from, to}) })

	err := s.Run(context.Background(), Sequence(WaitFor(0.5), WaitFor(0), WaitFor(0.25)))

	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.InDelta(t, 0.5, steps[0].to, eps)
	assert.InDelta(t, 0.75, steps[1].to, eps)
	assert.InDelta(t, steps[2].from, steps[2].to, eps, "final flush does not move the clock")
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrDeadlock, ErrRunning))
}
