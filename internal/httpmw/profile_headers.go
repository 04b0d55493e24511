package httpmw

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProfileInfo reports the active profile document.
type ProfileInfo interface {
	ContentVersion() string
	ContentHash() string
}

// ProfileHeaders sets X-Profile-Version and a short X-Profile-Hash on every
// response and tags the span with the full values.
func ProfileHeaders(info ProfileInfo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if info == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, h := info.ContentVersion(), info.ContentHash()
			if v != "" {
				w.Header().Set("X-Profile-Version", v)
			}
			if h != "" {
				w.Header().Set("X-Profile-Hash", h[:min(len(h), 12)])
			}
			if span := trace.SpanFromContext(r.Context()); span.IsRecording() {
				span.SetAttributes(
					attribute.String("profile.version", v),
					attribute.String("profile.hash", h),
				)
			}
			next.ServeHTTP(w, r)
		})
	}
}
