package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/phambaophuc/image-thumbnails/internal/models"
	"github.com/phambaophuc/image-thumbnails/internal/services/storage"
	"github.com/phambaophuc/image-thumbnails/pkg/utils"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Generator renders the thumbnails of an original.
type Generator interface {
	Generate(ctx context.Context, key string, src []byte) ([]models.ThumbnailResult, error)
	Names() []string
}

// Watcher generates thumbnails for originals copied straight into the
// local upload directory.
type Watcher struct {
	root      string
	generator Generator
	allowed   []string
	debounce  time.Duration
	watcher   *fsnotify.Watcher
	logger    *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

func NewWatcher(root string, generator Generator, allowed []string, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to resolve upload path: %w", err)
	}

	return &Watcher{
		root:      abs,
		generator: generator,
		allowed:   allowed,
		debounce:  defaultDebounce,
		watcher:   fsWatcher,
		logger:    logger,
		timers:    make(map[string]*time.Timer),
	}, nil
}

// SetDebounce changes how long a file must stay quiet before it is handled.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start watches the upload directory and its subdirectories until ctx is
// done.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	w.logger.Info("Watching upload directory", zap.String("path", w.root))

	go w.processEvents(ctx)
	return nil
}

// Close stops watching and waits for pending generations.
func (w *Watcher) Close() error {
	err := w.watcher.Close()

	w.mu.Lock()
	for name, timer := range w.timers {
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.timers, name)
	}
	w.mu.Unlock()

	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						w.logger.Warn("Failed to watch directory", zap.String("path", event.Name), zap.Error(err))
					}
					continue
				}
			}

			key, ok := w.keyFor(event.Name)
			if !ok || !w.shouldHandle(key) {
				continue
			}
			w.schedule(ctx, event.Name, key)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

// schedule restarts the debounce timer of path.
func (w *Watcher) schedule(ctx context.Context, path, key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.timers[path]; exists && timer.Stop() {
		w.wg.Done()
	}

	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		w.handle(ctx, path, key)
	})
	w.timers[path] = timer
}

func (w *Watcher) handle(ctx context.Context, path, key string) {
	if ctx.Err() != nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("Failed to read new upload", zap.String("path", path), zap.Error(err))
		return
	}

	thumbs, err := w.generator.Generate(ctx, key, data)
	if err != nil {
		w.logger.Error("Failed to generate thumbnails",
			zap.String("key", key),
			zap.Error(err))
		return
	}

	w.logger.Info("Generated thumbnails for new upload",
		zap.String("key", key),
		zap.Int("thumbnails", len(thumbs)))
}

func (w *Watcher) keyFor(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// shouldHandle accepts originals with an allowed extension, ignoring hidden
// temp files and the service's own thumbnails.
func (w *Watcher) shouldHandle(key string) bool {
	base := filepath.Base(key)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if err := utils.ValidateExtension(base, w.allowed); err != nil {
		return false
	}
	return !storage.IsThumbFilename(key, w.generator.Names())
}
