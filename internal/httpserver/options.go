package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pranavnadakkal/portfolio/internal/health"
	"github.com/pranavnadakkal/portfolio/internal/httpmw"
	"github.com/pranavnadakkal/portfolio/internal/log"
)

// DefaultStreamPath is where the pointer stream is mounted.
const DefaultStreamPath = "/ws/cursor"

type Options struct {
	Logger log.Logger
	Port   int

	UseRecoverMW bool
	OnPanic      func()
	MetricsMW    func(http.Handler) http.Handler
	RateLimitMW  func(http.Handler) http.Handler
	ClientIPOpts httpmw.ClientIPOptions

	Health    health.Probe
	Readiness health.Probe

	// ProfileInfo sets X-Profile-Version and X-Profile-Hash.
	ProfileInfo httpmw.ProfileInfo

	// Routes registers the page and API routes. Responses are compressed.
	Routes func(chi.Router)

	// Stream is the long-lived websocket handler mounted at StreamPath. It
	// bypasses compression and tracing and has no server deadlines.
	Stream     http.Handler
	StreamPath string

	// SiteHandler serves everything no route matched: static assets and
	// the not-found page.
	SiteHandler http.Handler
}
