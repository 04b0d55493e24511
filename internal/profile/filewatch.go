package profile

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// DefaultReloadDelay collapses the burst of events editors produce on save.
const DefaultReloadDelay = 200 * time.Millisecond

// FileWatcherOptions configures a FileWatcher.
type FileWatcherOptions struct {
	Logger  log.Logger
	Source  FileSource
	Manager *Manager

	// Delay is the debounce window. Zero uses DefaultReloadDelay.
	Delay time.Duration

	OnSwap  func(snap *Snapshot)
	Metrics WatcherMetrics
}

// FileWatcher reloads a local profile file whenever it changes.
//
// The parent directory is watched rather than the file itself, since many
// editors save by writing a temp file and renaming it over the original.
type FileWatcher struct {
	opts   FileWatcherOptions
	logger log.Logger
	target string
}

func NewFileWatcher(opts FileWatcherOptions) *FileWatcher {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultReloadDelay
	}
	return &FileWatcher{opts: opts, logger: opts.Logger, target: filepath.Clean(opts.Source.Path)}
}

// Run watches until ctx is cancelled.
func (fw *FileWatcher) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return xerrors.Wrap(err, "create fsnotify watcher")
	}
	defer w.Close()

	dir := filepath.Dir(fw.target)
	if err := w.Add(dir); err != nil {
		return xerrors.Wrapf(err, "watch %s", dir)
	}

	reload := guard.Debounce(func(ctx context.Context) { fw.reload(ctx) }, fw.opts.Delay)
	defer reload.Stop()

	fw.logger.Info(ctx, "profile file watcher starting", "path", fw.target)
	for {
		select {
		case <-ctx.Done():
			fw.logger.Info(ctx, "profile file watcher stopping")
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != fw.target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reload.Call(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fw.logger.Error(ctx, err, "profile file watcher error")
			if fw.opts.Metrics != nil {
				fw.opts.Metrics.IncProfileError("fsnotify")
			}
		}
	}
}

// reload loads the file and swaps it in. A broken file keeps the current
// profile live.
func (fw *FileWatcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	snap, err := fw.opts.Source.Load(ctx)
	if fw.opts.Metrics != nil {
		fw.opts.Metrics.ObserveProfileLoadDuration(time.Since(start).Seconds())
	}
	if err != nil {
		fw.logger.Error(ctx, err, "profile reload failed, keeping current profile", "path", fw.target)
		if fw.opts.Metrics != nil {
			fw.opts.Metrics.IncProfileError("load")
		}
		return
	}

	if cur, ok := fw.opts.Manager.Get(); ok && cur.Meta.SHA256 == snap.Meta.SHA256 {
		return
	}
	fw.opts.Manager.Set(*snap)
	if fw.opts.Metrics != nil {
		fw.opts.Metrics.IncProfileSwaps()
	}
	fw.logger.Info(ctx, "profile reloaded", "path", fw.target, "hash", shortHash(snap.Meta.SHA256))

	if fw.opts.OnSwap != nil {
		active, _ := fw.opts.Manager.Get()
		func() {
			defer func() {
				if r := recover(); r != nil {
					fw.logger.Error(ctx, fmt.Errorf("OnSwap panic: %v", r), "profile file watcher: OnSwap callback panicked")
				}
			}()
			fw.opts.OnSwap(active)
		}()
	}
}
