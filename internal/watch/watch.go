// Package watch emits a debounced notification when a watched dataset
// file changes on disk, so edits made in an external editor show up
// without restarting the app.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event reports one settled file change.
type Event struct {
	Path string
}

// Watcher watches a fixed set of files through their parent
// directories. Rapid saves are coalesced: an event is emitted only
// after a path has been quiet for the debounce window.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   *zap.Logger
	watched  map[string]struct{}
	debounce time.Duration
	events   chan Event

	mu      sync.Mutex
	pending map[string]time.Time

	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher for the given file paths. Directories are
// deduplicated before registration.
func New(paths []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:       fsw,
		logger:   logger,
		watched:  make(map[string]struct{}, len(paths)),
		debounce: debounce,
		events:   make(chan Event, 8),
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}

	dirs := map[string]struct{}{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		w.watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.fs.Add(dir); err != nil {
			// the dir may not exist until first save
			logger.Warn("watch dir unavailable", zap.String("dir", dir), zap.Error(err))
		}
	}
	return w, nil
}

// Events returns the settled-change channel.
func (w *Watcher) Events() <-chan Event { return w.events }

// Start runs the event loop until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	tick := w.debounce / 2
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	if _, ok := w.watched[abs]; !ok {
		return
	}
	w.mu.Lock()
	w.pending[abs] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	now := time.Now()
	var settled []string

	w.mu.Lock()
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.logger.Debug("dataset changed", zap.String("path", path))
		select {
		case w.events <- Event{Path: path}:
		default:
			// receiver is behind; drop rather than block the loop
		}
	}
}

// Close stops the watcher and releases the fsnotify handle.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
