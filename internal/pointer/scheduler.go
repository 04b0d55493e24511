package pointer

import (
	"sync"
	"time"
)

// DefaultFrameInterval is roughly one display refresh at 60Hz.
const DefaultFrameInterval = time.Second / 60

// Scheduler runs a callback at the next frame boundary.
type Scheduler interface {
	// RequestFrame schedules fn once. cancel prevents fn from running if it
	// has not started yet; calling it more than once is a no-op.
	RequestFrame(fn func()) (cancel func())
}

// TimerScheduler is a Scheduler backed by time.AfterFunc with a fixed
// frame interval.
type TimerScheduler struct {
	Interval time.Duration
}

// NewTimerScheduler returns a scheduler firing every interval.
// A non-positive interval uses DefaultFrameInterval.
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerScheduler{Interval: interval}
}

func (s *TimerScheduler) RequestFrame(fn func()) func() {
	d := s.Interval
	if d <= 0 {
		d = DefaultFrameInterval
	}
	t := time.AfterFunc(d, fn)
	var once sync.Once
	return func() { once.Do(func() { t.Stop() }) }
}
