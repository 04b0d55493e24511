package guard

import (
	"context"
	"testing"
	"time"
)

// events.go

func TestEvents_SinkReceives(t *testing.T) {
	e := NewEvents(EventsOptions{})

	var got []Event
	e.Register(func(_ context.Context, ev Event) { got = append(got, ev) })
	e.Record(context.Background(), EventInvalidSection, map[string]any{"section": "admin"})

	if len(got) != 1 {
		t.Fatalf("sink got %d events, want 1", len(got))
	}
	if got[0].Type != EventInvalidSection || got[0].Details["section"] != "admin" {
		t.Fatalf("event = %+v", got[0])
	}
}

func TestEvents_DevelopmentLogs(t *testing.T) {
	spy := newSpyLogger()
	e := NewEvents(EventsOptions{Logger: spy, Development: true})
	e.Record(context.Background(), EventUnsafeLink, nil)

	if len(spy.warns) != 1 {
		t.Fatalf("warns = %d, want 1", len(spy.warns))
	}
}

func TestEvents_ProductionWithoutSinkDrops(t *testing.T) {
	spy := newSpyLogger()
	e := NewEvents(EventsOptions{Logger: spy})
	e.Record(context.Background(), EventUnsafeLink, nil)

	if len(spy.warns) != 0 {
		t.Fatalf("production logged %d events", len(spy.warns))
	}
}

func TestEvents_LogThrottled(t *testing.T) {
	spy := newSpyLogger()
	e := NewEvents(EventsOptions{Logger: spy, Development: true, LogLimit: 2, LogInterval: time.Hour})

	sinkCount := 0
	e.Register(func(context.Context, Event) { sinkCount++ })
	for range 5 {
		e.Record(context.Background(), EventMalformedMessage, nil)
	}

	if len(spy.warns) != 2 {
		t.Errorf("warns = %d, want 2", len(spy.warns))
	}
	if sinkCount != 5 {
		t.Errorf("sink saw %d events, want all 5", sinkCount)
	}
}

func TestEvents_RegisterNilRemovesSink(t *testing.T) {
	e := NewEvents(EventsOptions{})
	called := false
	e.Register(func(context.Context, Event) { called = true })
	e.Register(nil)
	e.Record(context.Background(), EventUnsafeLink, nil)
	if called {
		t.Fatal("removed sink still called")
	}
}

func TestEvents_NilReceiver(t *testing.T) {
	var e *Events
	e.Register(func(context.Context, Event) {})
	e.Record(context.Background(), EventUnsafeLink, nil)
}
