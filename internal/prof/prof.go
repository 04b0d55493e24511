// Package prof runs the continuous profiler.
package prof

import (
	"context"
	"runtime"
	"sync"

	"github.com/grafana/pyroscope-go"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

type Options struct {
	Enabled              bool
	AppName              string
	ServerAddress        string
	AuthToken            string
	TenantID             string
	Tags                 map[string]string
	ProfileMutexFraction int
	BlockProfileRate     int

	// OnStateChange reports whether the profiler is running.
	OnStateChange func(active bool)
}

// StopFunc stops the profiler. It is safe to call more than once.
type StopFunc func()

func (o Options) validate() error {
	// the agent pushes over plain HTTP(S)
	if !guard.IsSafeURL(o.ServerAddress) {
		return xerrors.Newf("prof: invalid server address %q", o.ServerAddress)
	}
	if o.AppName == "" {
		return xerrors.New("prof: app name is required")
	}
	return nil
}

func (o Options) profileTypes() []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocObjects,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}
	// mutex and block profiles are empty unless their runtime rates are set
	if o.ProfileMutexFraction > 0 {
		types = append(types, pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration)
	}
	if o.BlockProfileRate > 0 {
		types = append(types, pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration)
	}
	return types
}

func (o Options) report(active bool) {
	if o.OnStateChange != nil {
		o.OnStateChange(active)
	}
}

// Start begins pushing profiles to the configured server. The logger is
// taken from ctx.
func Start(ctx context.Context, opts Options) (StopFunc, error) {
	L := log.FromContext(ctx)

	if !opts.Enabled {
		opts.report(false)
		L.Debug(ctx, "profiling disabled")
		return func() {}, nil
	}
	if err := opts.validate(); err != nil {
		opts.report(false)
		return func() {}, err
	}

	if opts.ProfileMutexFraction > 0 {
		runtime.SetMutexProfileFraction(opts.ProfileMutexFraction)
	}
	if opts.BlockProfileRate > 0 {
		runtime.SetBlockProfileRate(opts.BlockProfileRate)
	}

	cfg := pyroscope.Config{
		ApplicationName: opts.AppName,
		ServerAddress:   opts.ServerAddress,
		AuthToken:       opts.AuthToken,
		TenantID:        opts.TenantID,
		Tags:            opts.Tags,
		ProfileTypes:    opts.profileTypes(),
	}

	profiler, err := pyroscope.Start(cfg)
	if err != nil {
		opts.report(false)
		return func() {}, xerrors.Wrapf(err, "prof: start profiler for %s", opts.ServerAddress)
	}
	opts.report(true)
	L.Info(ctx, "profiling started", "server_address", opts.ServerAddress, "app_name", opts.AppName)

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := profiler.Stop(); err != nil {
				L.Warn(context.Background(), "profiler stop", "err", err)
			}
			opts.report(false)
			L.Info(context.Background(), "profiling stopped")
		})
	}, nil
}
