package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ca-srg/tokenmon/domain"
)

// DefaultWatchDebounce collapses the burst of events an atomic save produces
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher invokes a callback after the configuration file changes.
// The parent directory is watched so tmp+rename saves are seen.
type Watcher struct {
	path     string
	onChange func()
	logger   domain.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for the file at path
func NewWatcher(path string, onChange func(), logger domain.Logger) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		logger:   logger,
		debounce: DefaultWatchDebounce,
	}
}

// WithDebounce overrides the quiet period before onChange runs
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run blocks until ctx is cancelled or the underlying watcher fails
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	w.logger.Debug(ctx, "config watcher started",
		domain.NewField("dir", dir),
		domain.NewField("file", file))

	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("config watcher closed")
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.schedule(ctx)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("config watcher closed")
			}
			if err == nil {
				continue
			}
			// Overflow means events were dropped; reload once.
			if strings.Contains(strings.ToLower(err.Error()), "overflow") {
				w.logger.Warn(ctx, "config watch overflow; forcing reload", domain.ErrorField(err))
				w.schedule(ctx)
				continue
			}
			w.logger.Warn(ctx, "config watch error", domain.ErrorField(err))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.logger.Debug(ctx, "config change detected; scheduling reload", domain.NewField("path", w.path))
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.onChange()
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
