package cursorws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/pranavnadakkal/portfolio/internal/guard"
)

// eventSpy collects security events from a guard.Events sink.
type eventSpy struct {
	mu  sync.Mutex
	evs []guard.Event
	ch  chan guard.Event
}

func newEventSpy() (*guard.Events, *eventSpy) {
	spy := &eventSpy{ch: make(chan guard.Event, 32)}
	ev := guard.NewEvents(guard.EventsOptions{})
	ev.Register(func(_ context.Context, e guard.Event) {
		spy.mu.Lock()
		spy.evs = append(spy.evs, e)
		spy.mu.Unlock()
		select {
		case spy.ch <- e:
		default:
		}
	})
	return ev, spy
}

func (s *eventSpy) wait(t *testing.T, typ string) guard.Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-s.ch:
			if e.Type == typ {
				return e
			}
		case <-timeout:
			t.Fatalf("no %s event", typ)
			return guard.Event{}
		}
	}
}

func startServer(t *testing.T, opts Options) (*Handler, string) {
	t.Helper()
	if opts.FrameInterval == 0 {
		opts.FrameInterval = time.Millisecond
	}
	h := NewHandler(opts)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func send(t *testing.T, c *websocket.Conn, msg string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil reads frames until ok returns true.
func readUntil(t *testing.T, c *websocket.Conn, ok func(outbound) bool) outbound {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		var f outbound
		if err := wsjson.Read(ctx, c, &f); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if ok(f) {
			return f
		}
	}
}

func TestSession_StreamsFollower(t *testing.T) {
	_, url := startServer(t, Options{})
	c := dial(t, url)

	// frames flow before any input, parked at the origin
	first := readUntil(t, c, func(outbound) bool { return true })
	if first.Active || first.X != 0 || first.Y != 0 {
		t.Fatalf("first frame = %+v, want inactive origin", first)
	}

	send(t, c, `{"type":"move","x":400,"y":"200"}`)
	f := readUntil(t, c, func(f outbound) bool { return f.Active && f.X > 390 })
	if f.X > 400 || f.Y > 200 {
		t.Fatalf("follower overshot: %+v", f)
	}

	send(t, c, `{"type":"leave"}`)
	readUntil(t, c, func(f outbound) bool { return !f.Active })
}

func TestSession_ClampsInput(t *testing.T) {
	_, url := startServer(t, Options{MaxX: 50, MaxY: 50})
	c := dial(t, url)

	send(t, c, `{"type":"move","x":1e9,"y":-20}`)
	f := readUntil(t, c, func(f outbound) bool { return f.Active && f.X > 49 })
	if f.X > 50 || f.Y != 0 {
		t.Fatalf("frame = %+v, want x<=50 y=0", f)
	}
}

func TestSession_MalformedMessagesSkipped(t *testing.T) {
	events, spy := newEventSpy()
	_, url := startServer(t, Options{Events: events})
	c := dial(t, url)

	send(t, c, `not json`)
	send(t, c, `{"type":"click"}`)
	spy.wait(t, guard.EventMalformedMessage)

	// session survives and still tracks
	send(t, c, `{"type":"enter"}`)
	readUntil(t, c, func(f outbound) bool { return f.Active })
}

func TestSession_RateLimited(t *testing.T) {
	events, spy := newEventSpy()
	_, url := startServer(t, Options{Events: events, MessageLimit: 1, MessageInterval: time.Hour})
	c := dial(t, url)

	send(t, c, `{"type":"enter"}`)
	send(t, c, `{"type":"move","x":5,"y":5}`)

	e := spy.wait(t, guard.EventMessageDropped)
	if e.Details["signal"] != "pointermove" {
		t.Fatalf("dropped event = %+v", e)
	}
}

func TestHandler_MaxSessions(t *testing.T) {
	h, url := startServer(t, Options{MaxSessions: 1})
	dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, url, nil)
	if err == nil {
		t.Fatal("second session accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("resp = %+v, want 503", resp)
	}
	if h.Active() != 1 {
		t.Fatalf("Active() = %d, want 1", h.Active())
	}
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	_, url := startServer(t, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"https://evil.example"}},
	})
	if err == nil {
		t.Fatal("foreign origin accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("resp = %+v, want 403", resp)
	}
}

func TestHandler_SessionLifecycleHooks(t *testing.T) {
	opened := make(chan struct{}, 1)
	closed := make(chan time.Duration, 1)
	h, url := startServer(t, Options{
		OnOpen:  func() { opened <- struct{}{} },
		OnClose: func(d time.Duration) { closed <- d },
	})

	c := dial(t, url)
	select {
	case <-opened:
	case <-time.After(2 * time.Second):
		t.Fatal("OnOpen not called")
	}

	c.Close(websocket.StatusNormalClosure, "bye")
	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("OnClose not called")
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.Active() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Active() = %d after close", h.Active())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
