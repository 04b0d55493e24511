package guard

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pranavnadakkal/portfolio/internal/log"
)

// Security event types emitted by the site.
const (
	EventInvalidSection   = "invalid_section"
	EventUnsafeLink       = "unsafe_link"
	EventInvalidEmail     = "invalid_email"
	EventMalformedMessage = "malformed_message"
	EventMessageDropped   = "message_dropped"
	EventDetachedElement  = "detached_element"
)

// Event is a single security-relevant observation.
type Event struct {
	Type    string
	Details map[string]any
}

// Sink receives security events, e.g. to count them or forward them.
type Sink func(ctx context.Context, ev Event)

// EventsOptions configures an Events recorder.
type EventsOptions struct {
	Logger log.Logger

	// Development writes every event to the log (subject to LogLimit).
	Development bool

	// LogLimit caps log lines per LogInterval so a noisy client cannot flood
	// the log. Zero uses 20 per minute.
	LogLimit    int
	LogInterval time.Duration
}

// Events records security events. A registered sink always receives the
// event; in development mode the event is also logged. With no sink and
// development off, events are dropped.
//
// A nil *Events is valid and drops everything.
type Events struct {
	logger log.Logger
	dev    bool
	logWin *SlidingWindow
	sink   atomic.Pointer[Sink]
}

// NewEvents returns an Events recorder.
func NewEvents(opts EventsOptions) *Events {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.LogLimit <= 0 {
		opts.LogLimit = 20
	}
	if opts.LogInterval <= 0 {
		opts.LogInterval = time.Minute
	}
	return &Events{
		logger: opts.Logger,
		dev:    opts.Development,
		logWin: NewSlidingWindow(opts.LogLimit, opts.LogInterval),
	}
}

// Register installs s as the sink, replacing any previous one.
// Passing nil removes the sink.
func (e *Events) Register(s Sink) {
	if e == nil {
		return
	}
	if s == nil {
		e.sink.Store(nil)
		return
	}
	e.sink.Store(&s)
}

// Record delivers an event of the given type.
func (e *Events) Record(ctx context.Context, eventType string, details map[string]any) {
	if e == nil || eventType == "" {
		return
	}
	ev := Event{Type: eventType, Details: details}
	if p := e.sink.Load(); p != nil {
		(*p)(ctx, ev)
	}
	if e.dev && e.logWin.Allow() {
		kv := make([]any, 0, 2+2*len(details))
		kv = append(kv, "security_event", eventType)
		for k, v := range details {
			kv = append(kv, k, v)
		}
		e.logger.Warn(ctx, "security event", kv...)
	}
}
