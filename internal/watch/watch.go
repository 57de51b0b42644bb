// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reruns a compile whenever the watched input directory changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls a function after each burst of changes in a directory. The
// directory is watched non-recursively.
type Watcher struct {
	dir      string
	ignore   []string
	debounce time.Duration
	fn       func() error
	log      *zap.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a watcher for dir. fn runs once the directory has been quiet for
// debounce after a change. Events for paths inside any of the ignore
// directories are dropped.
func New(dir string, debounce time.Duration, fn func() error, log *zap.Logger, ignore ...string) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		ignore:   absPaths(ignore),
		debounce: debounce,
		fn:       fn,
		log:      log,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the directory is first being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches the directory until ctx is cancelled. It returns nil on
// cancellation and the first error returned by fn otherwise. Run may be called
// again after it returns.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.readyOnce.Do(func() { close(w.ready) })
	w.log.Debug("watching directory", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("change detected", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(w.debounce)
			pending = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-pending:
			pending = nil
			if err := w.fn(); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	path, err := filepath.Abs(ev.Name)
	if err != nil {
		return true
	}
	for _, dir := range w.ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return false
		}
	}
	return true
}

func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}
	return out
}
