package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pranavnadakkal/portfolio/internal/httpmw"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, opts ...Option) (*IPLimiter, *fakeClock) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := New(ctx, opts...)
	l.mu.Lock()
	l.now = clock.now
	l.mu.Unlock()
	return l, clock
}

func TestAllow_BurstThenRefill(t *testing.T) {
	l, clock := newTestLimiter(t, WithRate(1, 3))

	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("request %d denied inside burst", i)
		}
	}
	if l.allow("1.2.3.4") {
		t.Fatal("request past burst allowed")
	}
	if !l.allow("5.6.7.8") {
		t.Fatal("other address denied")
	}

	clock.advance(time.Second)
	if !l.allow("1.2.3.4") {
		t.Fatal("not refilled after 1s")
	}
}

func TestAllow_Hooks(t *testing.T) {
	var first, every []string
	l, _ := newTestLimiter(t,
		WithRate(0.001, 1),
		WithOnFirstDenied(func(ip string) { first = append(first, ip) }),
		WithOnDenied(func(ip string) { every = append(every, ip) }),
	)

	l.allow("9.9.9.9")
	l.allow("9.9.9.9")
	l.allow("9.9.9.9")
	l.allow("9.9.9.9")

	if len(first) != 1 {
		t.Errorf("first-denied calls = %d, want 1", len(first))
	}
	if len(every) != 3 {
		t.Errorf("denied calls = %d, want 3", len(every))
	}
}

func TestAllow_Capacity(t *testing.T) {
	capHits := 0
	l, clock := newTestLimiter(t, WithMaxVisitors(2), WithTTL(time.Minute), WithOnCapacity(func() { capHits++ }))

	if !l.allow("a") || !l.allow("b") {
		t.Fatal("initial addresses denied")
	}
	if l.allow("c") {
		t.Fatal("third address allowed past capacity")
	}
	if capHits != 1 {
		t.Errorf("capacity hits = %d", capHits)
	}
	if !l.allow("a") {
		t.Error("known address denied at capacity")
	}

	clock.advance(2 * time.Minute)
	l.evict(clock.now())
	if l.Len() != 0 {
		t.Fatalf("Len after evict = %d", l.Len())
	}
	if !l.allow("c") {
		t.Error("address denied after eviction freed room")
	}
}

func TestEvict_KeepsRecent(t *testing.T) {
	l, clock := newTestLimiter(t, WithTTL(time.Minute))
	l.allow("old")
	clock.advance(45 * time.Second)
	l.allow("new")
	clock.advance(30 * time.Second)

	l.evict(clock.now())
	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1", l.Len())
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(t,
		WithRate(0.001, 1),
		WithExempt(func(r *http.Request) bool { return r.URL.Path == "/-/healthy" }),
	)
	h := httpmw.ClientIP(l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "8.8.8.8:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("/"); rec.Code != http.StatusOK {
		t.Fatalf("first: status = %d", rec.Code)
	}
	rec := do("/")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "30" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if rec.Body.String() != `{"error":"too many requests"}` {
		t.Errorf("body = %q", rec.Body.String())
	}
	for i := 0; i < 5; i++ {
		if rec := do("/-/healthy"); rec.Code != http.StatusOK {
			t.Fatalf("exempt path limited: %d", rec.Code)
		}
	}
}
