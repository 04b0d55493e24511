package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pranavnadakkal/portfolio/internal/profile"
	"github.com/pranavnadakkal/portfolio/internal/version"
)

// ServerMetrics must satisfy the profile watcher hooks.
var _ profile.WatcherMetrics = (*ServerMetrics)(nil)

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.IncSecurityEvent("invalid_section")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{"security_events_total", "go_goroutines", "http_inflight_requests"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %s", want)
		}
	}
}

func TestSecurityEvents(t *testing.T) {
	m := New()
	m.IncSecurityEvent("unsafe_link")
	m.IncSecurityEvent("unsafe_link")
	m.IncSecurityEvent("message_dropped")

	if got := testutil.ToFloat64(m.securityEvents.WithLabelValues("unsafe_link")); got != 2 {
		t.Errorf("unsafe_link = %v", got)
	}
	if got := testutil.ToFloat64(m.securityEvents.WithLabelValues("message_dropped")); got != 1 {
		t.Errorf("message_dropped = %v", got)
	}
}

func TestCursorSessions(t *testing.T) {
	m := New()
	m.CursorSessionOpened()
	m.CursorSessionOpened()
	m.CursorSessionClosed(3 * time.Second)

	if got := testutil.ToFloat64(m.cursorActive); got != 1 {
		t.Errorf("active = %v", got)
	}
	if got := testutil.ToFloat64(m.cursorSessions); got != 2 {
		t.Errorf("total = %v", got)
	}
	if got := testutil.CollectAndCount(m.cursorDuration); got != 1 {
		t.Errorf("duration series = %d", got)
	}
}

func TestSetActiveProfile_ReplacesLabels(t *testing.T) {
	m := New()
	m.SetActiveProfile("seed", "aaaa", time.Unix(100, 0))
	m.SetActiveProfile("s3", "bbbb", time.Unix(200, 0))

	if got := testutil.CollectAndCount(m.profileSource); got != 1 {
		t.Errorf("source series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.profileSource.WithLabelValues("s3")); got != 1 {
		t.Errorf("s3 source = %v", got)
	}
	if got := testutil.CollectAndCount(m.profileInfo); got != 1 {
		t.Errorf("info series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.profileLoadedTs); got != 200 {
		t.Errorf("loaded ts = %v", got)
	}
}

func TestWatcherMetrics(t *testing.T) {
	m := New()
	m.IncProfilePolls()
	m.IncProfilePolls()
	m.IncProfileSwaps()
	m.IncProfileError("ssm")
	m.ObserveProfileLoadDuration(0.2)
	m.SetProfileLastSuccess(1234)
	m.SetProfileStale(true)

	checks := map[string]float64{
		"polls": testutil.ToFloat64(m.profilePolls),
		"swaps": testutil.ToFloat64(m.profileSwaps),
		"ssm":   testutil.ToFloat64(m.profileErrors.WithLabelValues("ssm")),
		"last":  testutil.ToFloat64(m.profileLastOK),
		"stale": testutil.ToFloat64(m.profileStale),
	}
	want := map[string]float64{"polls": 2, "swaps": 1, "ssm": 1, "last": 1234, "stale": 1}
	for k, w := range want {
		if checks[k] != w {
			t.Errorf("%s = %v, want %v", k, checks[k], w)
		}
	}

	m.SetProfileStale(false)
	if got := testutil.ToFloat64(m.profileStale); got != 0 {
		t.Errorf("stale after clear = %v", got)
	}
}

func TestSetBuildInfo(t *testing.T) {
	m := New()
	dirty := true
	m.SetBuildInfo("portfolio", "server", version.Info{Version: "1.2.3", Commit: "abc", VCSDirty: &dirty})

	if got := testutil.ToFloat64(m.buildInfo.WithLabelValues("portfolio", "server", "1.2.3", "abc", "", "true", "")); got != 1 {
		t.Errorf("build_info = %v", got)
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncHttpPanic()
	m.IncRateLimitDenied()
	m.IncRateLimitDenied()
	m.IncRateLimitCapacity()
	m.SetProfilingActive(true)

	if testutil.ToFloat64(m.panics) != 1 || testutil.ToFloat64(m.ratelimitDenied) != 2 ||
		testutil.ToFloat64(m.ratelimitCapacity) != 1 || testutil.ToFloat64(m.profilingActive) != 1 {
		t.Error("counter values off")
	}
}

func TestMiddleware_RouteLabels(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Get("/go/{section}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	h := m.Middleware(r)

	for _, p := range []string{"/go/about", "/go/skills", "/boom", "/random/path"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(m.reqTotal.WithLabelValues("GET", "/go/{section}", "302")); got != 2 {
		t.Errorf("section requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.reqTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("GET", "/boom")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.inflight); got != 0 {
		t.Errorf("inflight = %v", got)
	}
	// raw paths never become labels
	if got := testutil.CollectAndCount(m.reqTotal); got != 3 {
		t.Errorf("request series = %d, want 3", got)
	}
}

func TestStatusWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}
	_, _ = sw.Write([]byte("abc"))
	sw.WriteHeader(http.StatusTeapot)
	if sw.status != http.StatusOK || sw.n != 3 {
		t.Errorf("status = %d n = %d", sw.status, sw.n)
	}
	if _, _, err := sw.Hijack(); err == nil {
		t.Error("Hijack on recorder should fail")
	}
}
