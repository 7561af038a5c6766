package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the delay between the last observed change and the
// handler invocation. Static site generators rewrite many files in quick
// succession, so changes are batched rather than handled one by one.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoHandler is returned when a Watcher is started without a handler.
var ErrNoHandler = errors.New("watcher: no handler configured")

// Handler processes a batch of changed HTML files. Paths are relative to
// the watched root, sorted, and deduplicated.
type Handler func(ctx context.Context, paths []string) error

// Watcher monitors a site directory for HTML changes and invokes a handler
// with debounced batches of changed files.
//
// Design decision: We batch changes behind a debounce timer rather than
// reacting to each fsnotify event because:
//  1. Generators emit several writes per file (create, write, rename)
//  2. A full rebuild touches hundreds of files within milliseconds
//  3. The handler is cheaper to run once per burst than once per event
type Watcher struct {
	root     string
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce delay for change batching.
// Non-positive values leave the default in place.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used for progress and error messages.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Watcher for the given site directory.
func New(root string, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		root:     filepath.Clean(root),
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Watch blocks, monitoring the site directory until ctx is cancelled.
// Newly created subdirectories are added to the watch set as they appear.
// Returns nil on cancellation and an error if the watch cannot be set up.
func (w *Watcher) Watch(ctx context.Context) error {
	if w.handler == nil {
		return ErrNoHandler
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}

	w.logger.Info("watching for changes", "dir", w.root, "debounce", w.debounce.String())

	// pending accumulates changed files between handler invocations.
	pending := make(map[string]struct{})

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.observe(fsw, event, pending) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			paths := drain(pending)
			if len(paths) == 0 {
				continue
			}
			w.logger.Debug("changes settled", "files", len(paths))
			if err := w.handler(ctx, paths); err != nil {
				w.logger.Error("change handler failed", "error", err)
			}
		}
	}
}

// observe inspects a single fsnotify event. It tracks new directories and
// records changed HTML files into pending. Returns true if the debounce
// timer should be reset.
func (w *Watcher) observe(fsw *fsnotify.Watcher, event fsnotify.Event, pending map[string]struct{}) bool {
	// Chmod-only events carry no content change.
	if event.Op == fsnotify.Chmod {
		return false
	}

	if event.Op.Has(fsnotify.Create) {
		if d, err := isDir(event.Name); err == nil && d {
			if err := w.addRecursive(fsw, event.Name); err != nil {
				w.logger.Warn("cannot watch new directory", "dir", event.Name, "error", err)
			}
			return false
		}
	}

	if !isHTML(event.Name) {
		return false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		// The file may be gone; drop any pending entry for it.
		delete(pending, rel)
		return false
	}

	pending[rel] = struct{}{}
	return true
}

// addRecursive adds dir and every subdirectory to the watch set.
// Hidden directories such as .git are skipped.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != dir {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// drain empties pending and returns its keys sorted.
func drain(pending map[string]struct{}) []string {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	for p := range pending {
		delete(pending, p)
	}
	sort.Strings(paths)
	return paths
}

// isHTML reports whether the path has an HTML file extension.
func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

// isDir reports whether the path refers to a directory.
func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
