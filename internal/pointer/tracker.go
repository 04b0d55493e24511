package pointer

import (
	"math"
	"sync"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// SmoothingFactor is the fraction of the remaining distance the follower
// covers on each frame.
const SmoothingFactor = 0.15

// Position is a point in surface coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is the tracker state after one tick.
type Frame struct {
	Seq      uint64   `json:"seq"`
	Target   Position `json:"target"`
	Follower Position `json:"follower"`
	Active   bool     `json:"active"`
}

// Options configures a Tracker.
type Options struct {
	// MaxX and MaxY bound the target. Zero uses guard.DefaultMaxCoordinate.
	MaxX, MaxY float64

	// Surface provides pointer signals once Start is called. Optional; the
	// On* methods can be driven directly.
	Surface Surface

	// Scheduler drives the frame loop. Nil uses a TimerScheduler at
	// DefaultFrameInterval.
	Scheduler Scheduler

	// OnFrame receives every frame. It is called without the tracker lock
	// held and must not block for long.
	OnFrame func(Frame)
}

// Tracker holds the clamped target and the smoothed follower.
type Tracker struct {
	maxX, maxY float64
	surface    Surface
	sched      Scheduler
	onFrame    func(Frame)

	mu       sync.Mutex
	target   Position
	follower Position
	active   bool
	seq      uint64

	started bool
	running bool
	unsubs  []func()
	cancel  func()
	gen     uint64
}

// New returns an idle tracker with target and follower at the origin.
func New(opts Options) *Tracker {
	if opts.MaxX <= 0 {
		opts.MaxX = guard.DefaultMaxCoordinate
	}
	if opts.MaxY <= 0 {
		opts.MaxY = guard.DefaultMaxCoordinate
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimerScheduler(DefaultFrameInterval)
	}
	return &Tracker{
		maxX:    opts.MaxX,
		maxY:    opts.MaxY,
		surface: opts.Surface,
		sched:   opts.Scheduler,
		onFrame: opts.OnFrame,
	}
}

// Start subscribes to the surface and requests the first frame.
// A tracker can be started once.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return xerrors.New("pointer tracker already started")
	}
	t.started = true
	t.running = true

	if t.surface != nil {
		move := func(ev Event) { t.OnPointerMove(ev.X, ev.Y) }
		t.unsubs = append(t.unsubs,
			t.surface.Subscribe(SignalPointerMove, move),
			t.surface.Subscribe(SignalTouchMove, move),
			t.surface.Subscribe(SignalPointerEnter, func(Event) { t.OnPointerEnter() }),
			t.surface.Subscribe(SignalPointerLeave, func(Event) { t.OnPointerLeave() }),
		)
	}
	t.scheduleLocked()
	return nil
}

// Stop removes every subscription and cancels the pending frame.
// It is idempotent and safe to call on a tracker that was never started.
func (t *Tracker) Stop() {
	t.mu.Lock()
	unsubs := t.unsubs
	t.unsubs = nil
	t.running = false
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()

	for _, u := range unsubs {
		if u != nil {
			u()
		}
	}
}

// Running reports whether the frame loop is live.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// OnPointerMove clamps the raw coordinates, stores them as the target and
// marks the tracker active. Non-numeric input counts as 0.
func (t *Tracker) OnPointerMove(rawX, rawY any) {
	x, y := guard.ClampCoordinateValues(rawX, rawY, t.maxX, t.maxY)
	t.mu.Lock()
	t.target = Position{X: x, Y: y}
	t.active = true
	t.mu.Unlock()
}

// MoveTo is OnPointerMove for already numeric input.
func (t *Tracker) MoveTo(x, y float64) {
	t.OnPointerMove(x, y)
}

// OnPointerEnter marks the follower visible. Target and follower are untouched.
func (t *Tracker) OnPointerEnter() {
	t.mu.Lock()
	t.active = true
	t.mu.Unlock()
}

// OnPointerLeave hides the follower. Ticks keep running toward the last target.
func (t *Tracker) OnPointerLeave() {
	t.mu.Lock()
	t.active = false
	t.mu.Unlock()
}

// Tick advances the follower one frame, publishes the frame, and schedules
// the next one while the tracker is running.
func (t *Tracker) Tick() Frame {
	t.mu.Lock()
	t.follower.X = step(t.follower.X, t.target.X)
	t.follower.Y = step(t.follower.Y, t.target.Y)
	t.seq++
	f := t.frameLocked()
	t.scheduleLocked()
	onFrame := t.onFrame
	t.mu.Unlock()

	if onFrame != nil {
		onFrame(f)
	}
	return f
}

// Snapshot returns the current state without advancing it.
func (t *Tracker) Snapshot() Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frameLocked()
}

func (t *Tracker) frameLocked() Frame {
	return Frame{
		Seq:      t.seq,
		Target:   t.target,
		Follower: t.follower,
		Active:   t.active,
	}
}

// scheduleLocked keeps at most one frame request outstanding.
func (t *Tracker) scheduleLocked() {
	if !t.running {
		return
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	gen := t.gen
	t.cancel = t.sched.RequestFrame(func() { t.frame(gen) })
}

// frame is the scheduler callback. A request that was superseded or that
// raced with Stop is ignored.
func (t *Tracker) frame(gen uint64) {
	t.mu.Lock()
	if !t.running || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.cancel = nil
	t.mu.Unlock()
	t.Tick()
}

// follower moves toward target by SmoothingFactor and never goes negative.
// The target is already clamped, so no upper bound is applied.
func step(follower, target float64) float64 {
	return math.Max(0, follower+(target-follower)*SmoothingFactor)
}
