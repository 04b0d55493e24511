package httpmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		hops   int
		want   string
	}{
		{"public peer ignores xff", "8.8.8.8:1234", "1.2.3.4", 1, "8.8.8.8"},
		{"private peer without hops ignores xff", "10.0.0.5:1234", "1.2.3.4", 0, "10.0.0.5"},
		{"single trusted hop", "10.0.0.5:1234", "9.9.9.9, 1.2.3.4", 1, "1.2.3.4"},
		{"two trusted hops", "10.0.0.5:1234", "9.9.9.9, 1.2.3.4, 10.0.0.9", 2, "1.2.3.4"},
		{"too few entries fails closed", "10.0.0.5:1234", "1.2.3.4", 3, "10.0.0.5"},
		{"garbage entry falls back", "10.0.0.5:1234", "not-an-ip", 1, "10.0.0.5"},
		{"no xff", "10.0.0.5:1234", "", 1, "10.0.0.5"},
		{"ipv4 mapped peer", "[::ffff:8.8.8.8]:1", "", 0, "8.8.8.8"},
		{"malformed remote", "nonsense", "1.2.3.4", 1, "0.0.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var sawXFF bool
			h := ClientIPWithOptions(ClientIPOptions{TrustedHops: tt.hops})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = ClientIPFromContext(r.Context())
				sawXFF = r.Header.Get("X-Forwarded-For") != ""
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("client ip = %q, want %q", got, tt.want)
			}
			if tt.hops == 0 && sawXFF {
				t.Error("untrusted X-Forwarded-For left on request")
			}
		})
	}
}

func TestClientIP_Default(t *testing.T) {
	var got string
	h := ClientIP(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = ClientIPFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.0.2:80"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "192.168.0.2" {
		t.Errorf("client ip = %q", got)
	}
}
