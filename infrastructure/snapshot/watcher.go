package snapshot

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"canvaschat/domain/core/aggregates"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a snapshot file whenever it changes on disk.
// A reload that fails validation keeps the previous snapshot.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *aggregates.Snapshot
	mu       sync.RWMutex
	onChange []func(*aggregates.Snapshot)
	// reloadMu serializes reloads and their handlers with Stop
	reloadMu sync.Mutex
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	debounce time.Duration
}

// NewWatcher loads path and prepares to watch it
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	snap, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial snapshot: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic saves (write to temp, rename) are seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch snapshot directory: %w", err)
	}

	return &Watcher{
		path:     path,
		watcher:  watcher,
		current:  snap,
		logger:   logger,
		stopCh:   make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}, nil
}

// Current returns the latest valid snapshot
func (w *Watcher) Current() *aggregates.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback for every successful reload.
// Register callbacks before calling Start.
func (w *Watcher) OnChange(fn func(*aggregates.Snapshot)) {
	w.onChange = append(w.onChange, fn)
}

// Start begins watching for changes
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("Snapshot watcher started", zap.String("path", w.path))
}

// Stop stops watching for changes. It waits for a running reload to finish,
// and no handler runs after it returns.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()

		w.reloadMu.Lock()
		w.onChange = nil
		w.reloadMu.Unlock()

		w.logger.Info("Snapshot watcher stopped")
	})
}

func (w *Watcher) stopped() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

func (w *Watcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	if w.stopped() {
		return
	}

	snap, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("Failed to reload snapshot, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = snap
	w.mu.Unlock()

	w.logger.Info("Snapshot reloaded",
		zap.String("path", w.path),
		zap.Int("nodes", len(snap.Refs())),
		zap.Int("edges", snap.EdgeCount()),
		zap.Int("ids", snap.IDs().Len()),
	)

	for _, handler := range w.onChange {
		handler(snap)
	}
}
