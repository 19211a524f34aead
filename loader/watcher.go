package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period a Watcher waits for after a
// change before reloading.
const DefaultDebounceInterval = 100 * time.Millisecond

// ErrWatcherRunning is returned by Watch when the watcher is already running.
var ErrWatcherRunning = errors.New("loader: watcher already running")

// Watcher reloads a root document whenever one of the local files it was
// assembled from changes. Directories are watched rather than files so
// that editors replacing a file on save are seen.
type Watcher struct {
	loader   *Loader
	path     string
	debounce time.Duration
	log      Logger

	mu      sync.Mutex
	running bool
	fsw     *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]bool
}

// NewWatcher creates a Watcher for the root document at path. A debounce
// of zero uses DefaultDebounceInterval.
func NewWatcher(l *Loader, path string, debounce time.Duration) (*Watcher, error) {
	if l == nil {
		return nil, errors.New("loader: watcher needs a Loader")
	}
	if isURL(path) {
		return nil, fmt.Errorf("loader: cannot watch remote document %s", path)
	}
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	return &Watcher{loader: l, path: path, debounce: debounce, log: l.log}, nil
}

// Watch loads the document, reports the result to onLoad, then reloads and
// reports again after every change to the files last loaded. A reload that
// fails keeps watching the previous file set. Watch blocks until ctx is done.
func (w *Watcher) Watch(ctx context.Context, onLoad func(*Result, error)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("loader: failed to create fsnotify watcher: %w", err)
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		_ = fsw.Close()
		return ErrWatcherRunning
	}
	w.running = true
	w.fsw = fsw
	w.files = make(map[string]bool)
	w.dirs = make(map[string]bool)
	w.mu.Unlock()

	defer func() {
		_ = fsw.Close()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	w.reload(ctx, onLoad)
	w.log.Info("file watcher started", "path", w.path, "debounce_ms", w.debounce.Milliseconds())

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.log.Info("file watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("loader: watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("file event detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.reload(ctx, onLoad)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("loader: watcher errors channel closed")
			}
			w.log.Error("file watcher error", "error", err)
		}
	}
}

// Files returns the local files the last successful load was built from.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	return files
}

func (w *Watcher) reload(ctx context.Context, onLoad func(*Result, error)) {
	res, err := w.loader.LoadFile(ctx, w.path)
	if err != nil {
		w.log.Warn("reload failed", "path", w.path, "error", err)
		if len(w.Files()) == 0 {
			// Nothing loaded yet: watch the root so fixing it triggers a reload.
			if abs, absErr := filepath.Abs(w.path); absErr == nil {
				w.track([]string{abs})
			}
		}
	} else {
		w.track(res.Files)
	}
	if onLoad != nil {
		onLoad(res, err)
	}
}

// track replaces the watched file set with the local entries of files.
func (w *Watcher) track(files []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = make(map[string]bool, len(files))
	for _, f := range files {
		if isURL(f) {
			continue
		}
		w.files[f] = true
		dir := filepath.Dir(f)
		if w.dirs[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.log.Warn("cannot watch directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
		w.log.Debug("watching directory", "dir", dir)
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[filepath.Clean(event.Name)]
}
