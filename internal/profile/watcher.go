package profile

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pranavnadakkal/portfolio/internal/cryptoutil"
	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

const (
	// DefaultPollInterval is how often the watcher reads the release pointer.
	DefaultPollInterval = 30 * time.Second

	// maxBackoff caps exponential backoff on consecutive pointer errors.
	maxBackoff = 5 * time.Minute
)

type pollResult int

const (
	pollNoChange pollResult = iota
	pollSwapped
	pollPointerError
	pollLoadError
)

// Fetcher is what the Watcher needs from a loader.
type Fetcher interface {
	CurrentHash(ctx context.Context) (string, error)
	LoadHash(ctx context.Context, hash string) (*Snapshot, error)
}

// WatcherMetrics is implemented by the metrics package.
type WatcherMetrics interface {
	IncProfilePolls()
	IncProfileSwaps()
	IncProfileError(errType string)
	ObserveProfileLoadDuration(seconds float64)
	SetProfileLastSuccess(unixSeconds float64)
	SetProfileStale(stale bool)
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	Logger       log.Logger
	Fetcher      Fetcher
	Manager      *Manager
	PollInterval time.Duration

	// OnSwap runs on the poll goroutine after every successful swap.
	// A panic in it is logged and does not stop the watcher.
	OnSwap func(snap *Snapshot)

	Metrics WatcherMetrics

	// StaleThreshold is how long pointer reads may fail before the profile
	// is reported stale. Zero uses 30 minutes.
	StaleThreshold time.Duration
}

// Watcher polls the release pointer and swaps in new profiles.
type Watcher struct {
	fetcher  Fetcher
	manager  *Manager
	logger   log.Logger
	interval time.Duration
	onSwap   func(*Snapshot)
	metrics  WatcherMetrics

	currentHash     string
	consecutiveErrs int

	staleThreshold time.Duration
	lastSuccessAt  time.Time
	staleLogged    bool

	pollCount int64
	swapCount int64
}

// NewWatcher returns a Watcher. Call Run to start polling.
func NewWatcher(opts WatcherOptions) *Watcher {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.StaleThreshold <= 0 {
		opts.StaleThreshold = 30 * time.Minute
	}

	// skip re-downloading what startup already loaded
	current := ""
	if snap, ok := opts.Manager.Get(); ok {
		current = snap.Meta.SHA256
	}

	return &Watcher{
		fetcher:        opts.Fetcher,
		manager:        opts.Manager,
		logger:         opts.Logger,
		interval:       opts.PollInterval,
		onSwap:         opts.OnSwap,
		metrics:        opts.Metrics,
		currentHash:    current,
		staleThreshold: opts.StaleThreshold,
		lastSuccessAt:  time.Now(),
	}
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info(ctx, "profile watcher starting",
		"poll_interval", w.interval.String(),
		"current_hash", shortHash(w.currentHash),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "profile watcher stopping", "polls", w.pollCount, "swaps", w.swapCount)
			return ctx.Err()
		case <-ticker.C:
			result := w.checkOnce(ctx)
			w.adjust(ctx, ticker, result)
		}
	}
}

// adjust applies backoff and staleness bookkeeping after a poll.
func (w *Watcher) adjust(ctx context.Context, ticker *time.Ticker, result pollResult) {
	if result == pollPointerError {
		w.consecutiveErrs++
		next := w.backoffDuration()
		w.logger.Warn(ctx, "profile watcher backing off",
			"consecutive_errors", w.consecutiveErrs,
			"next_poll_in", next.String(),
		)
		ticker.Reset(next)

		if time.Since(w.lastSuccessAt) > w.staleThreshold && !w.staleLogged {
			w.logger.Error(ctx,
				xerrors.Newf("last successful pointer read was %s ago", time.Since(w.lastSuccessAt).Truncate(time.Second)),
				"profile is stale, unable to verify freshness",
			)
			w.staleLogged = true
			if w.metrics != nil {
				w.metrics.SetProfileStale(true)
			}
		}
		return
	}

	if w.consecutiveErrs > 0 {
		w.logger.Info(ctx, "profile watcher recovered", "had_consecutive_errors", w.consecutiveErrs)
		w.consecutiveErrs = 0
		ticker.Reset(w.interval)
	}
	if w.staleLogged {
		w.logger.Info(ctx, "profile staleness recovered")
		w.staleLogged = false
		if w.metrics != nil {
			w.metrics.SetProfileStale(false)
		}
	}
}

func (w *Watcher) checkOnce(ctx context.Context) pollResult {
	w.pollCount++
	if w.metrics != nil {
		w.metrics.IncProfilePolls()
	}

	hash, err := w.fetcher.CurrentHash(ctx)
	if err != nil {
		w.logger.Error(ctx, err, "profile watcher: pointer read failed")
		if w.metrics != nil {
			w.metrics.IncProfileError("pointer")
		}
		return pollPointerError
	}

	now := time.Now()
	w.lastSuccessAt = now
	if w.metrics != nil {
		w.metrics.SetProfileLastSuccess(float64(now.Unix()))
	}

	if cryptoutil.HashEqual(hash, w.currentHash) {
		return pollNoChange
	}

	w.logger.Info(ctx, "profile watcher: new profile detected",
		"old_hash", shortHash(w.currentHash),
		"new_hash", shortHash(hash),
	)

	start := time.Now()
	snap, err := w.fetcher.LoadHash(ctx, hash)
	if w.metrics != nil {
		w.metrics.ObserveProfileLoadDuration(time.Since(start).Seconds())
	}
	if err != nil {
		w.logger.Error(ctx, err, "profile watcher: load failed, keeping current profile",
			"rejected_hash", shortHash(hash),
		)
		if w.metrics != nil {
			w.metrics.IncProfileError("load")
		}
		return pollLoadError
	}

	w.manager.Set(*snap)
	w.currentHash = hash
	w.swapCount++
	if w.metrics != nil {
		w.metrics.IncProfileSwaps()
	}
	w.logger.Info(ctx, "profile watcher: profile swapped",
		"hash", shortHash(hash),
		"total_swaps", w.swapCount,
	)

	if w.onSwap != nil {
		active, _ := w.manager.Get()
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error(ctx, fmt.Errorf("OnSwap panic: %v", r),
						"profile watcher: OnSwap callback panicked, continuing",
						"hash", shortHash(hash),
					)
				}
			}()
			w.onSwap(active)
		}()
	}
	return pollSwapped
}

// backoffDuration doubles the interval per consecutive error, capped at
// maxBackoff.
func (w *Watcher) backoffDuration() time.Duration {
	d := time.Duration(float64(w.interval) * math.Pow(2, float64(w.consecutiveErrs)))
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	return d
}
