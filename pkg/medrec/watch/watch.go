// Package watch reloads the dataset when files in its directory change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/cognicore/medrec/pkg/medrec/dataset"
)

// DefaultDebounce groups the burst of events an editor or copy produces.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc rebuilds and publishes the dataset. A returned error leaves the
// previous dataset in place; the watcher only logs it.
type ReloadFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Patterns restricts which base names trigger a reload, as doublestar
	// globs such as "*.csv". Defaults to the dataset file names.
	Patterns []string
	Logger   *zap.Logger
}

// Watcher monitors one directory and calls a ReloadFunc after changes settle.
type Watcher struct {
	dir      string
	reload   ReloadFunc
	debounce time.Duration
	patterns []string
	logger   *zap.Logger

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup

	reloads  atomic.Int64
	failures atomic.Int64
}

// New creates a watcher for dir. Call Start to begin watching.
func New(dir string, reload ReloadFunc, opts Options) (*Watcher, error) {
	if reload == nil {
		return nil, fmt.Errorf("watch %s: nil reload func", dir)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		dir:      dir,
		reload:   reload,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		fsw:      fsw,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	w.patterns = opts.Patterns
	if len(w.patterns) == 0 {
		w.patterns = dataset.Files
	}
	for _, p := range w.patterns {
		if !doublestar.ValidatePattern(p) {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: invalid pattern %q", dir, p)
		}
	}
	return w, nil
}

// Start adds the directory watch and launches the event loop.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("watching dataset directory", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))
	return nil
}

// Stop ends the event loop and releases the fsnotify watcher.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// Reloads reports how many reloads succeeded.
func (w *Watcher) Reloads() int64 { return w.reloads.Load() }

// Failures reports how many reloads failed.
func (w *Watcher) Failures() int64 { return w.failures.Load() }

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("dataset file changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.run(ctx)
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	start := time.Now()
	if err := w.reload(ctx); err != nil {
		w.failures.Add(1)
		w.logger.Error("dataset reload failed; keeping previous snapshot", zap.String("dir", w.dir), zap.Error(err))
		return
	}
	w.reloads.Add(1)
	w.logger.Info("dataset reloaded", zap.String("dir", w.dir), zap.Duration("took", time.Since(start)))
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	base := filepath.Base(ev.Name)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}
