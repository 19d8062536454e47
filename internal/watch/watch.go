// Package watch rebuilds the output document whenever a script or the
// target document changes.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches the scripts directory and the target document and
// invokes a rebuild callback after changes settle.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	logger      *zap.Logger
	scriptsDir  string
	scriptExt   string
	targetDoc   string // absolute-ish path of the host document
	rebuild     func()
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity for debugging and tests.
type Stats struct {
	Events        int
	Rebuilds      int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// New creates a Watcher. rebuild is called once per settled batch of
// changes, never concurrently with itself.
func New(scriptsDir, scriptExt, targetDoc string, debounce time.Duration, rebuild func(), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fsw,
		logger:      logger,
		scriptsDir:  scriptsDir,
		scriptExt:   scriptExt,
		targetDoc:   targetDoc,
		rebuild:     rebuild,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a
// goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.scriptsDir); err != nil {
		// run never launched, so a later Stop must not wait on doneCh.
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching scripts directory", zap.String("dir", w.scriptsDir))

	// The target document may live outside the scripts directory.
	targetDir := filepath.Dir(w.targetDoc)
	if targetDir != w.scriptsDir && targetDir != "." {
		if err := w.watcher.Add(targetDir); err != nil {
			w.logger.Warn("cannot watch target document directory", zap.String("dir", targetDir), zap.Error(err))
		}
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flushDebounced()
		}
	}
}

// handleEvent records a relevant filesystem event for debounced
// processing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.relevant(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // ignore chmod etc.
	}

	w.logger.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = time.Now()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// relevant reports whether a changed path should trigger a rebuild:
// matching scripts, or the target document itself. The output document
// is always ignored so a rebuild never retriggers itself.
func (w *Watcher) relevant(path string) bool {
	base := filepath.Base(path)
	if base == filepath.Base(w.targetDoc) {
		return true
	}
	return strings.EqualFold(filepath.Ext(base), w.scriptExt)
}

// flushDebounced triggers one rebuild if any recorded change has
// settled past the debounce window.
func (w *Watcher) flushDebounced() {
	w.mu.Lock()
	now := time.Now()
	settled := false
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			delete(w.debounceMap, path)
			settled = true
		}
	}
	if settled {
		w.stats.Rebuilds++
	}
	w.mu.Unlock()

	if settled {
		w.rebuild()
	}
}

// GetStats returns a snapshot of the watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
