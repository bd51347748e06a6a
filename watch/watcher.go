// Package watch feeds newly arrived annotation files from a drop directory
// to a handler.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config configures directory watching.
type Config struct {
	// Dir is the directory to watch for new annotation files.
	Dir string

	// DebounceDelay is how long to wait for more changes to a file before
	// handing it off. Uploads are rarely atomic.
	DebounceDelay time.Duration

	// Extensions lists the file extensions handed to the handler.
	Extensions []string
}

// DefaultConfig returns the default watch configuration for a directory.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:           dir,
		DebounceDelay: 500 * time.Millisecond,
		Extensions:    []string{".gff", ".gff3", ".gz"},
	}
}

// Handler is invoked with the path of each settled annotation file.
type Handler func(ctx context.Context, path string) error

// Watcher watches a drop directory and dispatches settled files.
type Watcher struct {
	config     Config
	logger     *slog.Logger
	handler    Handler
	extensions map[string]bool

	pendingMu sync.Mutex
	pending   map[string]*time.Timer
}

// New creates a watcher over the configured directory.
func New(config Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}

	extensions := make(map[string]bool, len(config.Extensions))
	for _, ext := range config.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	return &Watcher{
		config:     config,
		logger:     logger,
		handler:    handler,
		extensions: extensions,
		pending:    make(map[string]*time.Timer),
	}, nil
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.config.Dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", w.config.Dir, err)
	}
	w.logger.Info("Watching for annotation files",
		slog.String("dir", w.config.Dir),
		slog.Duration("debounce", w.config.DebounceDelay))

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.extensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watch error", slog.String("error", err.Error()))
		}
	}
}

// schedule (re)arms the debounce timer for a path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.config.DebounceDelay)
		return
	}
	w.pending[path] = time.AfterFunc(w.config.DebounceDelay, func() {
		w.pendingMu.Lock()
		delete(w.pending, path)
		w.pendingMu.Unlock()

		w.logger.Info("Annotation file settled", slog.String("path", path))
		if err := w.handler(ctx, path); err != nil {
			w.logger.Error("Failed to process annotation file",
				slog.String("path", path), slog.String("error", err.Error()))
		}
	})
}

func (w *Watcher) cancelPending() {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
