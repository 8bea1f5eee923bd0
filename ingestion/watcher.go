package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultBatchDelay is how long the watcher waits for writes to settle.
const DefaultBatchDelay = 500 * time.Millisecond

// Loader loads one dump file.
type Loader interface {
	LoadFile(ctx context.Context, path string) (LoadStats, error)
}

// Watcher loads dump files created or rewritten in a directory.
type Watcher struct {
	path   string
	loader Loader

	pendingMu    sync.Mutex
	pendingFiles map[string]struct{}
	batchTimer   *time.Timer
	batchDelay   time.Duration

	// loadCtx is the context of the running Start call.
	loadCtx context.Context
	loading sync.WaitGroup

	log *slog.Logger
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Path       string
	Loader     Loader
	BatchDelay time.Duration // Default: 500ms
	Logger     *slog.Logger
}

// NewWatcher creates a watcher for cfg.Path, which must be a directory.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Loader == nil {
		return nil, ErrRepositoryRequired
	}
	if cfg.BatchDelay == 0 {
		cfg.BatchDelay = DefaultBatchDelay
	}
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path is not a directory: %s", absPath)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:         absPath,
		loader:       cfg.Loader,
		pendingFiles: make(map[string]struct{}),
		batchDelay:   cfg.BatchDelay,
		loadCtx:      context.Background(),
		log:          logger.With("component", "watcher"),
	}, nil
}

// Start watches until ctx is cancelled. Subdirectories created while
// running are watched too. It returns ctx.Err() on cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	w.pendingMu.Lock()
	w.loadCtx = ctx
	w.pendingMu.Unlock()

	err = filepath.WalkDir(w.path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.log.Warn("error walking path", "path", path, "err", err)
			return filepath.SkipDir
		}
		if d.IsDir() {
			return fsWatcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.log.Info("watching for dumps", "path", w.path)
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, fsWatcher)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, fsWatcher *fsnotify.Watcher) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if err := fsWatcher.Add(path); err != nil {
				w.log.Warn("cannot watch directory", "path", path, "err", err)
			}
			return
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	w.enqueue(path)
}

// enqueue adds a dump to the pending batch and restarts the settle timer.
func (w *Watcher) enqueue(path string) {
	if !IsDumpFile(path) {
		return
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pendingFiles[path] = struct{}{}
	if w.batchTimer != nil && w.batchTimer.Stop() {
		// the stopped timer func never runs, so release its slot here
		w.loading.Done()
	}
	w.loading.Add(1)
	w.batchTimer = time.AfterFunc(w.batchDelay, func() {
		defer w.loading.Done()
		w.processBatch()
	})
}

func (w *Watcher) processBatch() {
	w.pendingMu.Lock()
	files := make([]string, 0, len(w.pendingFiles))
	for path := range w.pendingFiles {
		files = append(files, path)
	}
	w.pendingFiles = make(map[string]struct{})
	ctx := w.loadCtx
	w.pendingMu.Unlock()

	if len(files) == 0 {
		return
	}
	sort.Strings(files)
	w.log.Info("processing batch", "count", len(files))

	for _, path := range files {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := w.loader.LoadFile(ctx, path); err != nil {
			w.log.Error("failed to load dump", "path", path, "err", err)
		}
	}
}

// stop cancels a pending batch and waits for a running one to finish.
func (w *Watcher) stop() {
	w.pendingMu.Lock()
	if w.batchTimer != nil && w.batchTimer.Stop() {
		w.loading.Done()
	}
	w.pendingMu.Unlock()
	w.loading.Wait()
}
