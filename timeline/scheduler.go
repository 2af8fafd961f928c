package timeline

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
)

// DefaultFrameRate is used when no frame rate option is given.
const DefaultFrameRate = 30.0

var (
	// ErrDeadlock is returned by Run when live procs remain but none can be woken.
	ErrDeadlock = errors.New("timeline: all procs are blocked")
	// ErrRunning is returned when Run is called on a scheduler that is already running.
	ErrRunning = errors.New("timeline: scheduler already running")
)

// Func is the body of a proc. It runs on its own goroutine but never
// concurrently with any other proc of the same scheduler.
type Func func(p *Proc)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithFrameRate sets the frame rate used by tweens and Proc.Frame.
func WithFrameRate(fps float64) Option {
	return func(s *Scheduler) {
		if fps > 0 {
			s.frameRate = fps
		}
	}
}

// Scheduler drives procs against a virtual clock. Time only moves when every
// proc runnable at the current instant has suspended.
type Scheduler struct {
	frameRate float64
	now       float64
	queue     wakeQueue
	seq       uint64
	live      int
	running   bool
	failure   error

	yield chan struct{}
	abort chan struct{}

	hooks []func(from, to float64)
}

// New creates a scheduler positioned at virtual time zero.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{frameRate: DefaultFrameRate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current virtual time in seconds.
func (s *Scheduler) Now() float64 { return s.now }

// FrameRate returns the configured frames per second.
func (s *Scheduler) FrameRate() float64 { return s.frameRate }

// OnAdvance registers a hook called each time the clock moves forward.
// Hooks run on the scheduler goroutine while every proc is parked.
func (s *Scheduler) OnAdvance(fn func(from, to float64)) {
	s.hooks = append(s.hooks, fn)
}

// Run starts fn as the root proc and drives the clock until every proc has
// finished. Cancelling ctx aborts all parked procs.
func (s *Scheduler) Run(ctx context.Context, fn Func) error {
	if s.running {
		return ErrRunning
	}
	s.running = true
	s.failure = nil
	s.yield = make(chan struct{})
	s.abort = make(chan struct{})
	defer func() { s.running = false }()

	s.spawn(fn)

	for {
		if err := ctx.Err(); err != nil {
			s.stop()
			return err
		}
		if s.failure != nil {
			s.stop()
			return s.failure
		}
		if s.queue.Len() == 0 {
			if s.live > 0 {
				s.stop()
				return fmt.Errorf("%w (%d live)", ErrDeadlock, s.live)
			}
			s.advance(s.now)
			return nil
		}

		w := heap.Pop(&s.queue).(wakeup)
		if w.at > s.now {
			s.advance(w.at)
		}
		w.proc.wake <- struct{}{}
		<-s.yield
	}
}

// advance notifies hooks and moves the clock. A call with to == now is the
// final flush at the end of a run.
func (s *Scheduler) advance(to float64) {
	from := s.now
	for _, h := range s.hooks {
		h(from, to)
	}
	s.now = to
}

func (s *Scheduler) stop() {
	close(s.abort)
	s.queue = nil
	s.live = 0
}

func (s *Scheduler) aborted() bool {
	select {
	case <-s.abort:
		return true
	default:
		return false
	}
}

func (s *Scheduler) schedule(p *Proc, at float64) {
	if math.IsNaN(at) || at < s.now {
		at = s.now
	}
	s.seq++
	heap.Push(&s.queue, wakeup{at: at, seq: s.seq, proc: p})
}

func (s *Scheduler) spawn(fn Func) *Proc {
	p := &Proc{s: s, wake: make(chan struct{})}
	s.live++
	s.schedule(p, s.now)
	go p.run(fn)
	return p
}

type wakeup struct {
	at   float64
	seq  uint64
	proc *Proc
}

type wakeQueue []wakeup

func (q wakeQueue) Len() int { return len(q) }
func (q wakeQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q wakeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *wakeQueue) Push(x any)   { *q = append(*q, x.(wakeup)) }
func (q *wakeQueue) Pop() any {
	old := *q
	n := len(old)
	w := old[n-1]
	*q = old[:n-1]
	return w
}

// Proc is a cooperative coroutine. All of its methods must be called from
// its own Func.
type Proc struct {
	s       *Scheduler
	wake    chan struct{}
	done    bool
	joiners []*Proc
	pending int
}

func (p *Proc) run(fn Func) {
	if !p.park() {
		return
	}
	defer func() {
		r := recover()
		if p.s.aborted() {
			return
		}
		if r != nil {
			p.s.failure = fmt.Errorf("timeline: proc panicked: %v", r)
		}
		p.finish()
		p.s.yield <- struct{}{}
	}()
	fn(p)
}

func (p *Proc) park() bool {
	select {
	case <-p.wake:
		return true
	case <-p.s.abort:
		return false
	}
}

// suspend hands control back to the scheduler and blocks until woken.
func (p *Proc) suspend() {
	p.s.yield <- struct{}{}
	if !p.park() {
		runtime.Goexit()
	}
}

func (p *Proc) finish() {
	p.done = true
	p.s.live--
	for _, j := range p.joiners {
		j.pending--
		if j.pending == 0 {
			p.s.schedule(j, p.s.now)
		}
	}
	p.joiners = nil
}

// Now returns the scheduler's virtual time.
func (p *Proc) Now() float64 { return p.s.now }

// Frame returns the duration of one frame in seconds.
func (p *Proc) Frame() float64 { return 1 / p.s.frameRate }

// Done reports whether the proc has returned.
func (p *Proc) Done() bool { return p.done }

// Wait suspends for d seconds of virtual time. Negative and NaN durations are
// treated as zero.
func (p *Proc) Wait(d float64) {
	if d < 0 || math.IsNaN(d) {
		d = 0
	}
	p.WaitUntil(p.s.now + d)
}

// WaitUntil suspends until the clock reaches t. Times in the past resume at
// the current instant.
func (p *Proc) WaitUntil(t float64) {
	p.s.schedule(p, t)
	p.suspend()
}

// Yield lets every other proc runnable at this instant run before continuing.
func (p *Proc) Yield() {
	p.Wait(0)
}

// Spawn starts fn as a new proc at the current instant. It begins running
// after the caller next suspends.
func (p *Proc) Spawn(fn Func) *Proc {
	return p.s.spawn(fn)
}

// Join suspends until every given proc has finished.
func (p *Proc) Join(procs ...*Proc) {
	for _, c := range procs {
		if c == nil || c.done {
			continue
		}
		c.joiners = append(c.joiners, p)
		p.pending++
	}
	if p.pending == 0 {
		return
	}
	p.suspend()
}

// All runs fns concurrently and returns once the slowest has finished.
func (p *Proc) All(fns ...Func) {
	procs := make([]*Proc, 0, len(fns))
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		procs = append(procs, p.Spawn(fn))
	}
	p.Join(procs...)
}

// WaitFor returns a Func that waits d seconds, handy inside All.
func WaitFor(d float64) Func {
	return func(p *Proc) { p.Wait(d) }
}

// Sequence returns a Func that runs fns one after another.
func Sequence(fns ...Func) Func {
	return func(p *Proc) {
		for _, fn := range fns {
			if fn != nil {
				fn(p)
			}
		}
	}
}
