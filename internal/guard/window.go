package guard

import (
	"sync"
	"time"
)

const (
	// DefaultWindowLimit and DefaultWindowInterval apply when a window is
	// built with a non-positive limit or interval.
	DefaultWindowLimit    = 1
	DefaultWindowInterval = time.Second
)

// SlidingWindow admits at most limit events in any trailing interval.
// It keeps the timestamps of admitted events and prunes them on every call,
// so memory is bounded by limit.
type SlidingWindow struct {
	limit    int
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	calls []time.Time
}

// NewSlidingWindow returns a window admitting limit events per interval.
func NewSlidingWindow(limit int, interval time.Duration) *SlidingWindow {
	if limit <= 0 {
		limit = DefaultWindowLimit
	}
	if interval <= 0 {
		interval = DefaultWindowInterval
	}
	return &SlidingWindow{
		limit:    limit,
		interval: interval,
		now:      time.Now,
		calls:    make([]time.Time, 0, limit),
	}
}

// Allow records and admits an event if fewer than limit events were admitted
// within the trailing interval. Denied events are not recorded.
func (w *SlidingWindow) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	kept := w.calls[:0]
	for _, t := range w.calls {
		if now.Sub(t) < w.interval {
			kept = append(kept, t)
		}
	}
	w.calls = kept

	if len(w.calls) >= w.limit {
		return false
	}
	w.calls = append(w.calls, now)
	return true
}

// Len returns the number of admitted events still inside the window as of the
// last call to Allow.
func (w *SlidingWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.calls)
}

// RateLimit wraps fn so it runs at most limit times in any trailing interval.
// Calls over the limit are dropped without queuing. The returned function
// reports whether fn ran.
func RateLimit[T any](fn func(T), limit int, interval time.Duration) func(T) bool {
	w := NewSlidingWindow(limit, interval)
	return func(arg T) bool {
		if !w.Allow() {
			return false
		}
		if fn != nil {
			fn(arg)
		}
		return true
	}
}
