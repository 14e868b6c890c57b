// Package watch reruns a function when Go sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before a run.
const DefaultDebounce = 300 * time.Millisecond

// Func regenerates output. It returns the directories to watch next; a
// nil slice keeps the current set.
type Func func(ctx context.Context) ([]string, error)

// Watcher watches package directories and calls a Func, debounced, when a
// Go source file or go.mod changes.
type Watcher struct {
	Debounce time.Duration
	Logger   *slog.Logger

	fn      Func
	watcher *fsnotify.Watcher
	dirs    []string

	mu    sync.Mutex
	timer *time.Timer
	runs  chan struct{}
}

// New returns a Watcher calling fn.
func New(fn Func, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		Debounce: DefaultDebounce,
		Logger:   logger,
		fn:       fn,
		watcher:  fw,
		runs:     make(chan struct{}, 1),
	}, nil
}

// Watch replaces the set of watched directories.
func (w *Watcher) Watch(dirs []string) error {
	next := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return err
		}
		if !slices.Contains(next, abs) {
			next = append(next, abs)
		}
	}
	slices.Sort(next)

	for _, d := range next {
		if !slices.Contains(w.dirs, d) {
			if err := w.watcher.Add(d); err != nil {
				return fmt.Errorf("failed to watch %s: %w", d, err)
			}
		}
	}
	for _, d := range w.dirs {
		if !slices.Contains(next, d) {
			if err := w.watcher.Remove(d); err != nil {
				w.Logger.Debug("unwatch failed", slog.String("dir", d), slog.String("error", err.Error()))
			}
		}
	}
	w.dirs = next
	w.Logger.Debug("watching", slog.Int("dirs", len(next)))
	return nil
}

// Run processes file events until ctx is done, then closes the watcher.
// Failures of fn are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.Logger.Debug("source changed", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			w.schedule()

		case <-w.runs:
			dirs, err := w.fn(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.Logger.Warn("regeneration failed", slog.String("error", err.Error()))
				continue
			}
			if dirs != nil {
				if err := w.Watch(dirs); err != nil {
					w.Logger.Warn("watch update failed", slog.String("error", err.Error()))
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Debounce, func() {
		select {
		case w.runs <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// relevant reports whether an event can change the analyzed program.
func relevant(e fsnotify.Event) bool {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Remove) && !e.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(e.Name)
	return filepath.Ext(base) == ".go" || base == "go.mod" || base == "go.sum"
}
