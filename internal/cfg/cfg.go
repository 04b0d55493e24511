// Package cfg holds the server configuration. Values come from command
// line flags, then PORTFOLIO_* environment variables, then defaults.
package cfg

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/log"
)

// EnvPrefix is prepended to upper-cased flag names, so --http-port is
// read from PORTFOLIO_HTTP_PORT.
const EnvPrefix = "PORTFOLIO_"

type App struct {
	LogJSON           bool
	LogLevel          string
	StacktraceLevel   string
	IncludeErrorLinks bool
	MaxErrorLinks     int
	Development       bool

	HTTPPort    int
	AdminPort   int
	EnablePprof bool
	BaseURL     string
	TrustedHops int
	DrainDelay  time.Duration

	RateLimitRPS         float64
	RateLimitBurst       int
	RateLimitMaxVisitors int

	EnableTracing bool
	OTLPEndpoint  string
	OTLPInsecure  bool
	TraceSample   float64

	EnablePyroscope bool
	PyroServer      string
	PyroTenantID    string

	// local document with hot reload; exclusive with remote updates
	ProfileFile string

	EnableProfileUpdates bool
	ProfileSSMParam      string
	ProfileS3Bucket      string
	ProfileS3Prefix      string
	ProfileSigningKeyARN string
	ProfilePollInterval  time.Duration
	StrictLinks          bool

	CursorFrameRate   int
	CursorMaxSessions int
	CursorOrigins     []string
}

// Register binds all config fields to fs with defaults inline.
func Register(fs *pflag.FlagSet, c *App) {
	fs.BoolVar(&c.LogJSON, "log-json", true, "JSON logs (true) or logfmt (false)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "debug|info|warn|error")
	fs.StringVar(&c.StacktraceLevel, "stacktrace-level", "error", "lowest level that logs a stack (debug|info|warn|error)")
	fs.BoolVar(&c.IncludeErrorLinks, "include-error-links", true, "include wrap locations of logged errors")
	fs.IntVar(&c.MaxErrorLinks, "max-error-links", 5, "max error chain depth (1..64)")
	fs.BoolVar(&c.Development, "dev", false, "development mode: log every security event")

	fs.IntVar(&c.HTTPPort, "http-port", 8080, "site listen TCP port (1..65535)")
	fs.IntVar(&c.AdminPort, "admin-port", 9000, "ops listen TCP port (1..65535)")
	fs.BoolVar(&c.EnablePprof, "enable-pprof", true, "serve pprof on the ops port")
	fs.StringVar(&c.BaseURL, "base-url", "https://localhost/", "public site origin, used to resolve relative profile links")
	fs.DurationVar(&c.DrainDelay, "drain-delay", 15*time.Second, "time between failing readiness and closing listeners on shutdown")
	fs.IntVar(&c.TrustedHops, "trusted-proxy-hops", 0, "reverse proxies in front of the server whose X-Forwarded-For is trusted")

	fs.Float64Var(&c.RateLimitRPS, "ratelimit-rps", 10, "per-client request rate")
	fs.IntVar(&c.RateLimitBurst, "ratelimit-burst", 30, "per-client burst")
	fs.IntVar(&c.RateLimitMaxVisitors, "ratelimit-max-visitors", 50000, "max tracked client addresses")

	fs.BoolVar(&c.EnableTracing, "enable-tracing", false, "push OTLP traces to --otlp-endpoint")
	fs.StringVar(&c.OTLPEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint (host:port)")
	fs.BoolVar(&c.OTLPInsecure, "otlp-insecure", true, "plaintext OTLP connection")
	fs.Float64Var(&c.TraceSample, "trace-sample", 0.0, "trace sampling ratio (0..1)")

	fs.BoolVar(&c.EnablePyroscope, "enable-pyroscope", false, "push profiles to --pyro-server")
	fs.StringVar(&c.PyroServer, "pyro-server", "", "pyroscope server URL")
	fs.StringVar(&c.PyroTenantID, "pyro-tenant", "", "pyroscope tenant (X-Scope-OrgID)")

	fs.StringVar(&c.ProfileFile, "profile-file", "", "serve and hot-reload a local profile document")
	fs.BoolVar(&c.EnableProfileUpdates, "enable-profile-updates", false, "poll S3/SSM for profile releases")
	fs.StringVar(&c.ProfileSSMParam, "profile-ssm-param", "/app/portfolio/profile/release/sha256", "SSM parameter holding the released document hash")
	fs.StringVar(&c.ProfileS3Bucket, "profile-s3-bucket", "", "S3 bucket holding profile documents")
	fs.StringVar(&c.ProfileS3Prefix, "profile-s3-prefix", "portfolio/profiles", "S3 key prefix of profile documents")
	fs.StringVar(&c.ProfileSigningKeyARN, "profile-signing-key-arn", "", "KMS key for detached profile signatures (empty disables verification)")
	fs.DurationVar(&c.ProfilePollInterval, "profile-poll-interval", 30*time.Second, "release pointer poll interval")
	fs.BoolVar(&c.StrictLinks, "strict-links", false, "reject profiles with unsafe links instead of dropping the links")

	fs.IntVar(&c.CursorFrameRate, "cursor-fps", 60, "cursor follower frames per second (1..120)")
	fs.IntVar(&c.CursorMaxSessions, "cursor-max-sessions", 256, "concurrent cursor websocket sessions")
	fs.StringSliceVar(&c.CursorOrigins, "cursor-origins", nil, "extra websocket origin patterns")
}

// EnvKey maps a flag name to its environment variable.
func EnvKey(prefix, flagName string) string {
	return prefix + strings.ReplaceAll(strings.ToUpper(flagName), "-", "_")
}

// FillFromEnv sets every flag not given on the command line from its
// environment variable. Invalid env values are reported and skipped.
func FillFromEnv(fs *pflag.FlagSet, prefix string, logf func(string, ...any)) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	fs.VisitAll(func(f *pflag.Flag) {
		key := EnvKey(prefix, f.Name)
		val, ok := os.LookupEnv(key)
		if !ok {
			return
		}
		if f.Changed {
			logf("flag --%s: cli value %q overrides env %s", f.Name, f.Value.String(), key)
			return
		}
		if err := fs.Set(f.Name, val); err != nil {
			logf("flag --%s: ignoring invalid env %s=%q: %v", f.Name, key, val, err)
		}
	})
}

// FrameInterval converts the configured frame rate.
func (c App) FrameInterval() time.Duration {
	if c.CursorFrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.CursorFrameRate)
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

// Validate returns every invalid setting, joined, or nil.
func Validate(c App) error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if !validPort(c.HTTPPort) {
		bad("invalid http-port %d (must be 1..65535)", c.HTTPPort)
	}
	if !validPort(c.AdminPort) {
		bad("invalid admin-port %d (must be 1..65535)", c.AdminPort)
	}
	if c.AdminPort == c.HTTPPort {
		bad("admin-port and http-port must differ (both %d)", c.HTTPPort)
	}
	if !guard.IsSafeURL(c.BaseURL) {
		bad("base-url must be an absolute http(s) URL (got %q)", c.BaseURL)
	}
	if c.DrainDelay < 0 || c.DrainDelay > 5*time.Minute {
		bad("drain-delay must be 0..5m (got %s)", c.DrainDelay)
	}
	if c.TrustedHops < 0 || c.TrustedHops > 8 {
		bad("trusted-proxy-hops must be 0..8 (got %d)", c.TrustedHops)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		bad("invalid log-level: %w", err)
	}
	if _, err := log.ParseLevel(c.StacktraceLevel); err != nil {
		bad("invalid stacktrace-level: %w", err)
	}
	if c.IncludeErrorLinks && (c.MaxErrorLinks < 1 || c.MaxErrorLinks > 64) {
		bad("max-error-links must be 1..64 (got %d)", c.MaxErrorLinks)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		bad("ratelimit-rps and ratelimit-burst must be positive (got %g, %d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.RateLimitMaxVisitors < 1 {
		bad("ratelimit-max-visitors must be positive (got %d)", c.RateLimitMaxVisitors)
	}

	if c.TraceSample < 0 || c.TraceSample > 1 {
		bad("invalid trace-sample %.3f (must be 0..1)", c.TraceSample)
	}
	if c.EnableTracing {
		if c.OTLPEndpoint == "" {
			bad("otlp-endpoint required with enable-tracing")
		} else if _, _, err := net.SplitHostPort(c.OTLPEndpoint); err != nil {
			bad("otlp-endpoint must be host:port (got %q)", c.OTLPEndpoint)
		}
	}

	if c.EnablePyroscope {
		if !guard.IsSafeURL(c.PyroServer) {
			bad("pyro-server must be an http(s) URL with enable-pyroscope (got %q)", c.PyroServer)
		}
		if c.PyroTenantID == "" {
			bad("pyro-tenant required with enable-pyroscope")
		}
	}

	if c.EnableProfileUpdates {
		if c.ProfileFile != "" {
			bad("profile-file and enable-profile-updates are mutually exclusive")
		}
		if c.ProfileSSMParam == "" {
			bad("profile-ssm-param required with enable-profile-updates")
		}
		if c.ProfileS3Bucket == "" {
			bad("profile-s3-bucket required with enable-profile-updates")
		}
		if c.ProfilePollInterval < time.Second {
			bad("profile-poll-interval must be at least 1s (got %s)", c.ProfilePollInterval)
		}
	}

	if c.CursorFrameRate < 1 || c.CursorFrameRate > 120 {
		bad("cursor-fps must be 1..120 (got %d)", c.CursorFrameRate)
	}
	if c.CursorMaxSessions < 1 {
		bad("cursor-max-sessions must be positive (got %d)", c.CursorMaxSessions)
	}

	return errors.Join(errs...)
}
