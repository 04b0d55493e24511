package guard

import (
	"sync"
	"testing"
	"time"
)

// debounce.go

func TestDebounce_OnlyLastCallRuns(t *testing.T) {
	var mu sync.Mutex
	var got []int
	done := make(chan struct{}, 4)

	d := Debounce(func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		done <- struct{}{}
	}, 20*time.Millisecond)

	d.Call(1)
	d.Call(2)
	d.Call(3)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}

	// give a stale timer a chance to misfire
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("calls = %v, want [3]", got)
	}
}

func TestDebounce_SeparateBursts(t *testing.T) {
	done := make(chan int, 4)
	d := Debounce(func(v int) { done <- v }, 5*time.Millisecond)

	for _, v := range []int{1, 2} {
		d.Call(v)
		select {
		case got := <-done:
			if got != v {
				t.Fatalf("got %d, want %d", got, v)
			}
		case <-time.After(time.Second):
			t.Fatalf("burst %d never ran", v)
		}
	}
}

func TestDebounce_StopCancelsPending(t *testing.T) {
	ran := make(chan struct{}, 1)
	d := Debounce(func(struct{}) { ran <- struct{}{} }, 20*time.Millisecond)

	d.Call(struct{}{})
	if !d.Pending() {
		t.Fatal("Pending() = false after Call")
	}
	d.Stop()
	d.Call(struct{}{})

	select {
	case <-ran:
		t.Fatal("function ran after Stop")
	case <-time.After(80 * time.Millisecond):
	}
	if d.Pending() {
		t.Fatal("Pending() = true after Stop")
	}
}

func TestDebounce_NilFunc(t *testing.T) {
	d := Debounce[string](nil, time.Millisecond)
	d.Call("x")
	if d.Pending() {
		t.Fatal("nil func should never schedule")
	}
}
