// Package watcher reloads the snapshot when its files change on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called once writes to the watched files have settled.
type ReloadFunc func(ctx context.Context) error

// Watcher watches a fixed set of files through their parent directories
// and debounces bursts of events into one reload.
type Watcher struct {
	logger *slog.Logger
	opts   Options
	reload ReloadFunc

	fsw   *fsnotify.Watcher
	files map[string]bool

	mu    sync.Mutex
	timer *time.Timer

	reloads  chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher for files. Parent directories that do not exist are
// skipped with a warning.
func New(files []string, reload ReloadFunc, opts Options, logger *slog.Logger) (*Watcher, error) {
	if reload == nil {
		return nil, errors.New("watcher: reload func is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		logger:  logger,
		opts:    opts,
		reload:  reload,
		fsw:     fsw,
		files:   make(map[string]bool, len(files)),
		reloads: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = filepath.Clean(f)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	watched := 0
	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("snapshot directory missing, not watching", "path", dir)
			continue
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Debug("added watch", "path", dir)
		watched++
	}
	if watched == 0 {
		logger.Warn("no snapshot directories to watch")
	}

	return w, nil
}

// Start processes events until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.cancelTimer()
			return nil
		case <-w.done:
			w.cancelTimer()
			return nil
		case <-w.reloads:
			if err := w.reload(ctx); err != nil {
				w.logger.Error("snapshot reload failed", "error", err)
			}
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) handle(event fsnotify.Event) {
	if w.opts.shouldIgnore(event.Name) {
		return
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		path = filepath.Clean(event.Name)
	}
	if !w.files[path] {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	w.logger.Debug("snapshot file changed", "path", path, "op", event.Op.String())
	w.schedule()
}

// schedule (re)arms the settle timer. When it fires a reload is queued for
// the Start loop, so reloads never run concurrently.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		select {
		case w.reloads <- struct{}{}:
		default: // a reload is already queued
		}
	})
}

func (w *Watcher) cancelTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
