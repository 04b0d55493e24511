package guard

import (
	"sync"
	"time"
)

// Debouncer delays calls to fn until delay has passed without another call.
// Each Call cancels the pending one and reschedules with the latest argument,
// so only the last call in a burst ever runs.
type Debouncer[T any] struct {
	fn    func(T)
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// Debounce wraps fn. A nil fn yields a Debouncer whose calls do nothing.
func Debounce[T any](fn func(T), delay time.Duration) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{fn: fn, delay: delay}
}

// Call schedules fn(arg) after the delay, replacing any pending call.
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || d.fn == nil {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq, arg) })
}

// fire runs fn only if no newer Call or Stop happened since it was scheduled.
// Timer.Stop can lose the race against an already expired timer, the
// sequence check covers that case.
func (d *Debouncer[T]) fire(seq uint64, arg T) {
	d.mu.Lock()
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn(arg)
}

// Pending reports whether a call is scheduled and has not run yet.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending call. Later Calls are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
