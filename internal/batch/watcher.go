package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/milkywaygod2/sysutil/internal/logging"
)

// Watcher organizes files dropped into a directory. New files are moved
// into per-extension subfolders after a quiet period, so partially written
// files are not grabbed mid-copy.
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   logging.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	done    chan struct{}
	started bool
}

// DefaultDebounce is the quiet period before a new file is organized.
const DefaultDebounce = 500 * time.Millisecond

// NewWatcher creates a watcher over dir. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(dir string, debounce time.Duration, logger logging.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching until the context is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.loop(ctx)
}

// Stop shuts the watcher down and releases the inotify handle.
func (w *Watcher) Stop() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "watch error")
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return
	}
	// Skip dotfiles and files mid-download.
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".part") ||
		strings.HasSuffix(base, ".tmp") {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
	w.logger.Debug(ctx, "file pending", "path", event.Name)
}

// flush organizes every pending file whose quiet period has elapsed.
func (w *Watcher) flush(ctx context.Context) {
	now := time.Now()

	w.mu.Lock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if err := w.organize(path); err != nil {
			w.logger.Warn(ctx, err, "failed to organize file", "path", path)
			continue
		}
		w.logger.Info(ctx, "file organized", "path", path)
	}
}

func (w *Watcher) organize(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil // went away while pending
	}

	folder := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if folder == "" {
		folder = "misc"
	}

	destDir := filepath.Join(w.dir, folder)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(destDir, filepath.Base(path)))
}
