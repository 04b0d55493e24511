package httpmw

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		inbound  string
		propagate bool
	}{
		{"generated when missing", "", false},
		{"propagates token", "abc-123_x.y", true},
		{"rejects markup", "<script>", false},
		{"rejects spaces", "a b", false},
		{"rejects overlong", strings.Repeat("a", maxRequestIDLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID("")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set("X-Request-Id", tt.inbound)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if seen == "" {
				t.Fatal("no request id in context")
			}
			if got := rec.Header().Get("X-Request-Id"); got != seen {
				t.Errorf("response header %q != context %q", got, seen)
			}
			if tt.propagate && seen != tt.inbound {
				t.Errorf("id = %q, want inbound %q", seen, tt.inbound)
			}
			if !tt.propagate && (seen == tt.inbound || len(seen) != 32) {
				t.Errorf("id = %q, want fresh 32 hex chars", seen)
			}
		})
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := RequestIDFromContext(req.Context()); got != "" {
		t.Errorf("got %q", got)
	}
	if ctx := WithRequestID(req.Context(), ""); RequestIDFromContext(ctx) != "" {
		t.Error("empty id stored")
	}
}
