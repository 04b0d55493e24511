package opshttp

import (
	"net/http"

	"github.com/pranavnadakkal/portfolio/internal/health"
)

type Options struct {
	Port        int
	Metrics     http.Handler
	EnablePprof bool
	Health      health.Probe
	Readiness   health.Probe

	// AllowPublic disables the private-network check, e.g. behind a trusted proxy.
	AllowPublic bool
}
