package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SceneWatcher = (*Watcher)(nil)

// DefaultDebounceWindow is the default time window for debouncing file events.
const DefaultDebounceWindow = 50 * time.Millisecond

// shouldSkipDirectories are directories that should not be watched.
var shouldSkipDirectories = map[string]bool{
	".git":              true,
	".jj":               true,
	domain.ShadeDirName: true,
}

// Watcher implements ports.SceneWatcher using fsnotify.
type Watcher struct {
	logger ports.Logger
	window time.Duration

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	done      chan struct{}
}

// NewWatcher creates a watcher that batches changes within window.
func NewWatcher(logger ports.Logger, window time.Duration) *Watcher {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Watcher{logger: logger, window: window}
}

// Start implements ports.SceneWatcher.
func (w *Watcher) Start(ctx context.Context, root string, onChange func(paths []string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsWatcher != nil {
		return zerr.With(domain.ErrWatchFailed, "reason", "already started")
	}

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return zerr.With(domain.ErrWatchFailed, "root", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}
	for dir := range watchRecursively(root) {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "dir", dir)
		}
	}

	w.fsWatcher = fsw
	w.debouncer = NewDebouncer(w.window, onChange)
	w.done = make(chan struct{})
	go w.processEvents(ctx, fsw, w.debouncer, w.done)
	return nil
}

// Stop implements ports.SceneWatcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fsw, deb, done := w.fsWatcher, w.debouncer, w.done
	w.fsWatcher, w.debouncer, w.done = nil, nil, nil
	w.mu.Unlock()

	if fsw == nil {
		return nil
	}
	err := fsw.Close()
	<-done
	deb.Flush()
	return err
}

// watchRecursively walks the directory tree and yields all directories.
func watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && shouldSkipDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func isScene(path string) bool {
	return strings.HasSuffix(path, domain.SceneFileSuffix)
}

func (w *Watcher) processEvents(ctx context.Context, fsw *fsnotify.Watcher, deb *Debouncer, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !shouldSkipDirectories[info.Name()] {
					for dir := range watchRecursively(event.Name) {
						_ = fsw.Add(dir)
					}
					continue
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				if isScene(event.Name) {
					deb.Add(event.Name)
				}
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher: " + err.Error())
		}
	}
}
