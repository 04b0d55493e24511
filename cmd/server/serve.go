package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/pranavnadakkal/portfolio/internal/cfg"
	"github.com/pranavnadakkal/portfolio/internal/cryptoutil"
	"github.com/pranavnadakkal/portfolio/internal/cursorws"
	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/health"
	"github.com/pranavnadakkal/portfolio/internal/httpmw"
	"github.com/pranavnadakkal/portfolio/internal/httpserver"
	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/metrics"
	"github.com/pranavnadakkal/portfolio/internal/opshttp"
	"github.com/pranavnadakkal/portfolio/internal/otelx"
	"github.com/pranavnadakkal/portfolio/internal/prof"
	"github.com/pranavnadakkal/portfolio/internal/profile"
	"github.com/pranavnadakkal/portfolio/internal/ratelimit"
	"github.com/pranavnadakkal/portfolio/internal/site"
	"github.com/pranavnadakkal/portfolio/internal/siteapi"
	"github.com/pranavnadakkal/portfolio/internal/sitehandler"
	"github.com/pranavnadakkal/portfolio/internal/version"
	"github.com/pranavnadakkal/portfolio/internal/webassets"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// initTracing is replaced in tests.
var initTracing = otelx.Init

func newLogger(conf *cfg.App) (log.Logger, error) {
	lvl, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	stackLvl, err := log.ParseLevel(conf.StacktraceLevel)
	if err != nil {
		return nil, err
	}
	vi := version.Get()
	return log.New(log.Options{
		App:               appName,
		Version:           vi.Version,
		Commit:            vi.ShortCommit(),
		Level:             lvl,
		StacktraceLevel:   stackLvl,
		JsonFormat:        conf.LogJSON,
		IncludeErrorLinks: conf.IncludeErrorLinks,
		MaxErrorLinks:     conf.MaxErrorLinks,
	})
}

func runServe(cmd *cobra.Command, conf *cfg.App) error {
	if err := cfg.Validate(*conf); err != nil {
		return xerrors.Wrap(err, "config")
	}
	lg, err := newLogger(conf)
	if err != nil {
		return xerrors.Wrap(err, "logger")
	}
	defer lg.Sync()

	L := lg.With("component", "server")
	ctx := log.WithContext(cmd.Context(), L)
	vi := version.Get()

	L.Info(ctx, "initializing",
		"version", vi.Version,
		"commit", vi.Commit,
		"build_date", vi.BuildDate,
		"go_version", vi.GoVersion,
		"vcs_dirty", vi.VCSDirty,
		"http_port", conf.HTTPPort,
		"admin_port", conf.AdminPort,
		"base_url", conf.BaseURL,
		"profile_file", conf.ProfileFile,
		"enable_profile_updates", conf.EnableProfileUpdates,
		"enable_tracing", conf.EnableTracing,
		"enable_pyroscope", conf.EnablePyroscope,
		"dev", conf.Development,
	)

	m := metrics.New()
	m.SetBuildInfo(appName, "server", vi)

	stopProf, err := prof.Start(ctx, prof.Options{
		Enabled:       conf.EnablePyroscope,
		AppName:       appName,
		ServerAddress: conf.PyroServer,
		TenantID:      conf.PyroTenantID,
		Tags: map[string]string{
			"component": "server",
			"version":   vi.Version,
			"commit":    vi.ShortCommit(),
		},
		OnStateChange: m.SetProfilingActive,
	})
	if err != nil {
		L.Error(ctx, err, "profiler start failed, continuing without it")
	}
	defer stopProf()

	shutdownOTEL, err := initTracing(ctx, otelx.Options{
		Enabled:   conf.EnableTracing,
		Endpoint:  conf.OTLPEndpoint,
		Insecure:  conf.OTLPInsecure,
		Sample:    conf.TraceSample,
		Service:   appName,
		Component: "server",
		Version:   vi.Version,
	})
	if err != nil {
		L.Error(ctx, err, "tracing init failed, continuing without export")
		shutdownOTEL, _ = initTracing(ctx, otelx.Options{})
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTEL(flushCtx); err != nil {
			L.Error(flushCtx, err, "tracer shutdown")
		}
	}()

	base, err := url.Parse(conf.BaseURL)
	if err != nil {
		return xerrors.Wrap(err, "parse base url")
	}

	events := guard.NewEvents(guard.EventsOptions{Logger: L, Development: conf.Development})
	events.Register(func(_ context.Context, ev guard.Event) {
		m.IncSecurityEvent(ev.Type)
	})

	mgr, err := startProfiles(ctx, L, conf, base, m)
	if err != nil {
		return err
	}

	static, err := sitehandler.New(sitehandler.Options{
		Logger:     L,
		StaticFS:   webassets.StaticFS(),
		FallbackFS: webassets.FallbackFS(),
	})
	if err != nil {
		return err
	}
	renderer, err := site.NewRenderer(site.RendererOptions{Logger: L, Profiles: mgr, Events: events, BaseURL: base})
	if err != nil {
		return err
	}
	page, err := site.NewHandler(site.Options{Logger: L, Renderer: renderer, Events: events, Fallback: static})
	if err != nil {
		return err
	}
	api := siteapi.NewAPI(mgr, base, L)

	stream := cursorws.NewHandler(cursorws.Options{
		Logger:         L,
		Events:         events,
		OriginPatterns: conf.CursorOrigins,
		FrameInterval:  conf.FrameInterval(),
		MaxSessions:    conf.CursorMaxSessions,
		OnOpen:         m.CursorSessionOpened,
		OnClose:        m.CursorSessionClosed,
	})

	var gate health.ShutdownGate
	readiness := health.All(
		gate.Probe(),
		health.CheckFunc(func(context.Context) error { return mgr.ReadyErr() }),
	)

	limiter := ratelimit.New(ctx,
		ratelimit.WithRate(conf.RateLimitRPS, conf.RateLimitBurst),
		ratelimit.WithMaxVisitors(conf.RateLimitMaxVisitors),
		ratelimit.WithExempt(func(r *http.Request) bool { return strings.HasPrefix(r.URL.Path, "/-/") }),
		ratelimit.WithOnDenied(func(string) { m.IncRateLimitDenied() }),
		ratelimit.WithOnFirstDenied(func(ip string) {
			L.Warn(ctx, "rate limit triggered", "client.address", ip)
		}),
		ratelimit.WithOnCapacity(func() {
			m.IncRateLimitCapacity()
			L.Warn(ctx, "rate limit table full, refusing new clients until idle entries expire")
		}),
	)

	siteStop, err := httpserver.Start(ctx, &httpserver.Options{
		Logger:       L,
		Port:         conf.HTTPPort,
		UseRecoverMW: true,
		OnPanic:      m.IncHttpPanic,
		MetricsMW:    m.Middleware,
		RateLimitMW:  limiter.Middleware,
		ClientIPOpts: httpmw.ClientIPOptions{TrustedHops: conf.TrustedHops},
		Health:       health.Fixed(true, ""),
		Readiness:    readiness,
		ProfileInfo:  mgr,
		Routes: func(r chi.Router) {
			page.RegisterRoutes(r)
			api.RegisterRoutes(r)
		},
		Stream:      stream,
		SiteHandler: static,
	})
	if err != nil {
		return xerrors.Wrap(err, "start site listener")
	}

	// the ops listener only answers private addresses
	opsStop, err := opshttp.Start(ctx, L, opshttp.Options{
		Port:        conf.AdminPort,
		Metrics:     m.Handler(),
		EnablePprof: conf.EnablePprof,
		Health:      health.Fixed(true, ""),
		Readiness:   readiness,
	})
	if err != nil {
		_ = siteStop(context.Background())
		return xerrors.Wrap(err, "start ops listener")
	}

	if err := notifySystemd(); err != nil && !errors.Is(err, errNoNotifySocket) {
		L.Warn(ctx, "systemd readiness notification failed", "err", err)
	}

	<-ctx.Done()
	bg := context.Background()
	L.Info(bg, "shutdown signal received")

	gate.Set("draining")
	drain(bg, L, conf.DrainDelay)

	shutdownCtx, cancel := context.WithTimeout(bg, 10*time.Second)
	defer cancel()
	if err := siteStop(shutdownCtx); err != nil {
		L.Error(bg, err, "site server shutdown")
	}
	if err := opsStop(shutdownCtx); err != nil {
		L.Error(bg, err, "ops server shutdown")
	}
	L.Info(bg, "shutdown complete")
	return nil
}

// drain waits for load balancers to notice the failing readiness probe.
// A second signal cuts the wait short.
func drain(ctx context.Context, L log.Logger, d time.Duration) {
	if d <= 0 {
		return
	}
	force := make(chan os.Signal, 1)
	signal.Notify(force, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(force)

	L.Info(ctx, "draining", "delay", d.String())
	select {
	case <-time.After(d):
	case <-force:
		L.Warn(ctx, "second signal received, skipping drain")
	}
}

// startProfiles loads the seed profile, then whichever source is
// configured, and starts the matching watcher.
func startProfiles(ctx context.Context, L log.Logger, conf *cfg.App, base *url.URL, m *metrics.ServerMetrics) (*profile.Manager, error) {
	mgr := profile.NewManager()
	publish := func(snap *profile.Snapshot) {
		m.SetActiveProfile(string(snap.Meta.Source), snap.Meta.Version, snap.LoadedAt)
	}

	seed, err := profile.LoadSeed(webassets.SeedProfile())
	if err != nil {
		return nil, err
	}
	mgr.Set(*seed)
	publish(seed)

	validation := profile.ValidationOptions{StrictLinks: conf.StrictLinks, BaseURL: base}

	switch {
	case conf.ProfileFile != "":
		src := profile.FileSource{Path: conf.ProfileFile, Validation: validation}
		// an explicit local file must be valid at startup
		snap, err := src.Load(ctx)
		if err != nil {
			return nil, err
		}
		mgr.Set(*snap)
		publish(snap)

		fw := profile.NewFileWatcher(profile.FileWatcherOptions{
			Logger:  L,
			Source:  src,
			Manager: mgr,
			OnSwap:  publish,
			Metrics: m,
		})
		go func() {
			if err := fw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				L.Error(ctx, err, "profile file watcher stopped")
			}
		}()

	case conf.EnableProfileUpdates:
		loader, err := newS3Loader(ctx, L, conf, validation)
		if err != nil {
			return nil, err
		}
		if snap, err := loader.Load(ctx); err != nil {
			L.Error(ctx, err, "initial profile fetch failed, serving seed")
		} else {
			mgr.Set(*snap)
			publish(snap)
		}

		w := profile.NewWatcher(profile.WatcherOptions{
			Logger:       L,
			Fetcher:      loader,
			Manager:      mgr,
			PollInterval: conf.ProfilePollInterval,
			OnSwap:       publish,
			Metrics:      m,
		})
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				L.Error(ctx, err, "profile watcher stopped")
			}
		}()
	}

	L.Info(ctx, "profile active",
		"source", string(mgr.Source()),
		"version", mgr.ContentVersion(),
		"sha256", mgr.ContentHash(),
	)
	return mgr, nil
}

func newS3Loader(ctx context.Context, L log.Logger, conf *cfg.App, validation profile.ValidationOptions) (*profile.S3Loader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "load aws config")
	}

	opts := profile.S3LoaderOptions{
		Logger:     L,
		SSMParam:   conf.ProfileSSMParam,
		S3Bucket:   conf.ProfileS3Bucket,
		S3Prefix:   conf.ProfileS3Prefix,
		S3:         s3.NewFromConfig(awsCfg),
		SSM:        ssm.NewFromConfig(awsCfg),
		Validation: validation,
	}
	if conf.ProfileSigningKeyARN != "" {
		opts.Verifier = cryptoutil.NewKMSVerifier(kms.NewFromConfig(awsCfg), conf.ProfileSigningKeyARN)
	} else {
		L.Warn(ctx, "profile signature verification disabled, no signing key configured")
	}
	return profile.NewS3Loader(opts)
}
