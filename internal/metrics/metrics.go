package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pranavnadakkal/portfolio/internal/version"
)

// ServerMetrics owns the registry and every collector the server exports.
// Labels are bounded (method, route pattern, status, event type) so client
// input can never create new series.
type ServerMetrics struct {
	reg     *prometheus.Registry
	handler http.Handler

	inflight  prometheus.Gauge
	reqTotal  *prometheus.CounterVec
	reqDur    *prometheus.HistogramVec
	respBytes *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	panics    prometheus.Counter
	buildInfo *prometheus.GaugeVec

	ratelimitDenied   prometheus.Counter
	ratelimitCapacity prometheus.Counter

	securityEvents *prometheus.CounterVec

	cursorActive   prometheus.Gauge
	cursorSessions prometheus.Counter
	cursorDuration prometheus.Histogram

	profileSource   *prometheus.GaugeVec
	profileLoadedTs prometheus.Gauge
	profileInfo     *prometheus.GaugeVec
	profilePolls    prometheus.Counter
	profileSwaps    prometheus.Counter
	profileErrors   *prometheus.CounterVec
	profileLoadDur  prometheus.Histogram
	profileLastOK   prometheus.Gauge
	profileStale    prometheus.Gauge

	profilingActive prometheus.Gauge
}

func New() *ServerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &ServerMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by method and route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		respBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Response size by method and route",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"method", "route"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total 5xx responses by method and route",
		}, []string{"method", "route"}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_panic_total",
			Help: "Total number of recovered handler panics",
		}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build metadata (value is always 1)",
		}, []string{"app", "component", "version", "commit", "build_date", "vcs_dirty", "go_version"}),
		ratelimitDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Total requests rejected by the per-IP rate limiter",
		}),
		ratelimitCapacity: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_capacity_total",
			Help: "Total requests rejected because the limiter was tracking too many clients",
		}),
		securityEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "security_events_total",
			Help: "Security events recorded by input validation, by type",
		}, []string{"type"}),
		cursorActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cursor_sessions_active",
			Help: "Open cursor websocket sessions",
		}),
		cursorSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cursor_sessions_total",
			Help: "Total cursor websocket sessions opened",
		}),
		cursorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cursor_session_duration_seconds",
			Help:    "Lifetime of cursor websocket sessions",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 900, 1800},
		}),
		profileSource: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "profile_source_info",
			Help: "Source of the active profile (label carries value, gauge is always 1)",
		}, []string{"source"}),
		profileLoadedTs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "profile_loaded_timestamp_seconds",
			Help: "Unix timestamp of when the active profile was loaded",
		}),
		profileInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "profile_info",
			Help: "Active profile version (label carries identity, value is always 1)",
		}, []string{"version"}),
		profilePolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profile_watcher_polls_total",
			Help: "Total number of release pointer polls",
		}),
		profileSwaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profile_watcher_swaps_total",
			Help: "Total number of profile swaps",
		}),
		profileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_watcher_errors_total",
			Help: "Total profile watcher errors by type",
		}, []string{"type"}),
		profileLoadDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "profile_load_duration_seconds",
			Help:    "Time to fetch, verify and parse a profile document",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		profileLastOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "profile_watcher_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful pointer poll",
		}),
		profileStale: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "profile_watcher_stale",
			Help: "Whether the profile watcher is stale (1) or healthy (0)",
		}),
		profilingActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "profiling_active",
			Help: "Whether continuous profiling is active (1) or disabled/failed (0)",
		}),
	}
	reg.MustRegister(
		m.inflight, m.reqTotal, m.reqDur, m.respBytes, m.errors, m.panics, m.buildInfo,
		m.ratelimitDenied, m.ratelimitCapacity,
		m.securityEvents,
		m.cursorActive, m.cursorSessions, m.cursorDuration,
		m.profileSource, m.profileLoadedTs, m.profileInfo,
		m.profilePolls, m.profileSwaps, m.profileErrors, m.profileLoadDur, m.profileLastOK, m.profileStale,
		m.profilingActive,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
	m.reg = reg
	return m
}

func (m *ServerMetrics) Handler() http.Handler { return m.handler }

// Registry exposes the registry for tests and extra collectors.
func (m *ServerMetrics) Registry() *prometheus.Registry { return m.reg }

// SetBuildInfo is called once at startup.
func (m *ServerMetrics) SetBuildInfo(app, component string, vi version.Info) {
	dirty := "unknown"
	if vi.VCSDirty != nil {
		dirty = strconv.FormatBool(*vi.VCSDirty)
	}
	m.buildInfo.With(prometheus.Labels{
		"app":        app,
		"component":  component,
		"version":    vi.Version,
		"commit":     vi.Commit,
		"build_date": vi.BuildDate,
		"go_version": vi.GoVersion,
		"vcs_dirty":  dirty,
	}).Set(1)
}

func (m *ServerMetrics) IncHttpPanic() { m.panics.Inc() }

func (m *ServerMetrics) IncRateLimitDenied() { m.ratelimitDenied.Inc() }
func (m *ServerMetrics) IncRateLimitCapacity() { m.ratelimitCapacity.Inc() }

// IncSecurityEvent counts one security event. Types come from a fixed set in
// the guard package.
func (m *ServerMetrics) IncSecurityEvent(eventType string) {
	m.securityEvents.WithLabelValues(eventType).Inc()
}

func (m *ServerMetrics) CursorSessionOpened() {
	m.cursorSessions.Inc()
	m.cursorActive.Inc()
}

func (m *ServerMetrics) CursorSessionClosed(d time.Duration) {
	m.cursorActive.Dec()
	m.cursorDuration.Observe(d.Seconds())
}

// SetActiveProfile records identity and load time of the profile being served.
func (m *ServerMetrics) SetActiveProfile(source, ver string, loadedAt time.Time) {
	m.profileSource.Reset()
	m.profileSource.WithLabelValues(source).Set(1)
	m.profileInfo.Reset()
	m.profileInfo.WithLabelValues(ver).Set(1)
	m.profileLoadedTs.Set(float64(loadedAt.Unix()))
}

func (m *ServerMetrics) SetProfilingActive(active bool) { m.profilingActive.Set(boolGauge(active)) }

// profile.WatcherMetrics

func (m *ServerMetrics) IncProfilePolls() { m.profilePolls.Inc() }
func (m *ServerMetrics) IncProfileSwaps() { m.profileSwaps.Inc() }
func (m *ServerMetrics) IncProfileError(errType string) { m.profileErrors.WithLabelValues(errType).Inc() }
func (m *ServerMetrics) ObserveProfileLoadDuration(s float64) { m.profileLoadDur.Observe(s) }
func (m *ServerMetrics) SetProfileLastSuccess(unix float64) { m.profileLastOK.Set(unix) }
func (m *ServerMetrics) SetProfileStale(stale bool) { m.profileStale.Set(boolGauge(stale)) }

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
