package guard

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for window tests.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWindow(limit int, interval time.Duration) (*SlidingWindow, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	w := NewSlidingWindow(limit, interval)
	w.now = clk.now
	return w, clk
}

// window.go - SlidingWindow

func TestSlidingWindow_AdmitsUpToLimit(t *testing.T) {
	w, _ := newTestWindow(3, time.Second)

	for i := range 3 {
		if !w.Allow() {
			t.Fatalf("call %d denied, want allowed", i)
		}
	}
	if w.Allow() {
		t.Fatal("4th call allowed, want denied")
	}
	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", w.Len())
	}
}

func TestSlidingWindow_Slides(t *testing.T) {
	w, clk := newTestWindow(2, time.Second)

	w.Allow() // t=0
	clk.advance(600 * time.Millisecond)
	w.Allow() // t=600ms
	if w.Allow() {
		t.Fatal("third call inside window allowed")
	}

	// t=1000ms: first entry is exactly interval old and drops out
	clk.advance(400 * time.Millisecond)
	if !w.Allow() {
		t.Fatal("call after oldest entry expired denied")
	}
	if w.Allow() {
		t.Fatal("window should be full again")
	}
}

func TestSlidingWindow_DeniedCallsNotRecorded(t *testing.T) {
	w, clk := newTestWindow(1, time.Second)

	w.Allow()
	for range 10 {
		clk.advance(50 * time.Millisecond)
		w.Allow()
	}
	// 500ms later the only recorded call is 1s old
	clk.advance(500 * time.Millisecond)
	if !w.Allow() {
		t.Fatal("denied calls extended the window")
	}
}

func TestNewSlidingWindow_Defaults(t *testing.T) {
	w := NewSlidingWindow(0, -time.Second)
	if w.limit != DefaultWindowLimit || w.interval != DefaultWindowInterval {
		t.Fatalf("defaults = (%d, %v), want (%d, %v)", w.limit, w.interval, DefaultWindowLimit, DefaultWindowInterval)
	}
}

// window.go - RateLimit

func TestRateLimit(t *testing.T) {
	var got []string
	limited := RateLimit(func(s string) { got = append(got, s) }, 2, time.Hour)

	results := []bool{limited("a"), limited("b"), limited("c")}
	want := []bool{true, true, false}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, results[i], want[i])
		}
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("invoked with %v, want [a b]", got)
	}
}

func TestRateLimit_NilFunc(t *testing.T) {
	limited := RateLimit[int](nil, 1, time.Hour)
	if !limited(1) {
		t.Fatal("first call with nil func should still be admitted")
	}
	if limited(2) {
		t.Fatal("second call admitted")
	}
}
