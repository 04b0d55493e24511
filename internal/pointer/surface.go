package pointer

import "sync"

// Signal identifies a kind of pointer notification.
type Signal int

const (
	// SignalPointerMove and SignalTouchMove carry a position.
	SignalPointerMove Signal = iota
	SignalTouchMove

	// SignalPointerEnter and SignalPointerLeave mark the hover boundary.
	SignalPointerEnter
	SignalPointerLeave
)

func (s Signal) String() string {
	switch s {
	case SignalPointerMove:
		return "pointermove"
	case SignalTouchMove:
		return "touchmove"
	case SignalPointerEnter:
		return "pointerenter"
	case SignalPointerLeave:
		return "pointerleave"
	default:
		return "unknown"
	}
}

// Event is a pointer notification. X and Y are raw values as received and
// are normalized by the Tracker.
type Event struct {
	Signal Signal
	X, Y   any
}

// Listener receives events for one signal.
type Listener func(Event)

// Surface is the event source a Tracker attaches to.
type Surface interface {
	// Subscribe registers l for sig. The returned func removes it and is
	// safe to call more than once.
	Subscribe(sig Signal, l Listener) (unsubscribe func())
}

// Bus is an in-memory Surface. Emit fans an event out to the listeners
// registered for its signal.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Signal]map[uint64]Listener
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Signal]map[uint64]Listener)}
}

func (b *Bus) Subscribe(sig Signal, l Listener) func() {
	if l == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	m := b.subs[sig]
	if m == nil {
		m = make(map[uint64]Listener)
		b.subs[sig] = m
	}
	m[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[sig], id)
		})
	}
}

// Emit delivers ev to every listener for ev.Signal. Listeners run on the
// caller's goroutine, outside the bus lock.
func (b *Bus) Emit(ev Event) {
	b.mu.Lock()
	ls := make([]Listener, 0, len(b.subs[ev.Signal]))
	for _, l := range b.subs[ev.Signal] {
		ls = append(ls, l)
	}
	b.mu.Unlock()

	for _, l := range ls {
		l(ev)
	}
}

// Listeners returns the number of listeners registered for sig.
func (b *Bus) Listeners(sig Signal) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[sig])
}
