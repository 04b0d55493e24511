package httpmw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	csp := rec.Header().Get("Content-Security-Policy")
	for _, want := range []string{"default-src 'self'", "script-src 'self'", "connect-src 'self'", "frame-ancestors 'none'"} {
		if !strings.Contains(csp, want) {
			t.Errorf("CSP missing %q: %s", want, csp)
		}
	}
	if strings.Contains(csp, "unsafe-inline") {
		t.Error("CSP allows inline")
	}
	for h, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rec.Header().Get(h); got != want {
			t.Errorf("%s = %q, want %q", h, got, want)
		}
	}
}

type stubInfo struct{ version, hash string }

func (s stubInfo) ContentVersion() string { return s.version }
func (s stubInfo) ContentHash() string    { return s.hash }

func TestProfileHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	ProfileHeaders(stubInfo{"abc123def456", strings.Repeat("f", 64)})(okHandler).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("X-Profile-Version"); got != "abc123def456" {
		t.Errorf("version = %q", got)
	}
	if got := rec.Header().Get("X-Profile-Hash"); got != strings.Repeat("f", 12) {
		t.Errorf("hash = %q", got)
	}

	rec = httptest.NewRecorder()
	ProfileHeaders(stubInfo{})(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Profile-Version") != "" || rec.Header().Get("X-Profile-Hash") != "" {
		t.Error("headers set without a profile")
	}

	rec = httptest.NewRecorder()
	ProfileHeaders(nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("nil info: status = %d", rec.Code)
	}
}

func TestTraceResponseHeaders(t *testing.T) {
	h := TraceResponseHeaders("", "")(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Trace-Id") != "" {
		t.Error("trace header without span")
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(trace.ContextWithSpanContext(context.Background(), sc))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Trace-Id"); got != sc.TraceID().String() {
		t.Errorf("X-Trace-Id = %q", got)
	}
	if got := rec.Header().Get("X-Span-Id"); got != sc.SpanID().String() {
		t.Errorf("X-Span-Id = %q", got)
	}
}
