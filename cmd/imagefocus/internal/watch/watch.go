// Package watch reports batches of file changes with fsnotify
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for changes to settle
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches files and directories, delivering debounced batches of
// changed paths
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	filter   func(path string) bool
	onError  func(error)
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the settle delay
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithFilter restricts reported paths to those filter accepts
func WithFilter(filter func(path string) bool) Option {
	return func(w *Watcher) { w.filter = filter }
}

// WithErrorHandler receives watcher errors
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Extensions returns a filter accepting paths with one of exts
func Extensions(exts ...string) func(string) bool {
	return func(path string) bool {
		ext := strings.ToLower(filepath.Ext(path))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}

// Patterns returns a filter accepting paths under root that match one of the
// glob patterns, which may use ** and {a,b}. A pattern without a slash also
// matches the base name alone.
func Patterns(root string, patterns ...string) func(string) bool {
	return func(path string) bool {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return false
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range patterns {
			pattern = filepath.ToSlash(pattern)
			if ok, err := doublestar.PathMatch(pattern, rel); err == nil && ok {
				return true
			}
			if !strings.Contains(pattern, "/") {
				if ok, err := doublestar.PathMatch(pattern, filepath.Base(rel)); err == nil && ok {
					return true
				}
			}
		}
		return false
	}
}

// New creates a watcher over paths. Directories are watched recursively,
// skipping hidden directories and node_modules.
func New(paths []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{watcher: fw, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		// Watch the directory so editors that replace the file are seen
		return w.watcher.Add(filepath.Dir(path))
	}
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if p != path && (strings.HasPrefix(info.Name(), ".") || info.Name() == "node_modules") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

// Run delivers batches of changed paths to fn until ctx is done
func (w *Watcher) Run(ctx context.Context, fn func(paths []string)) error {
	defer w.watcher.Close()

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pending []string
	var mu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if w.filter != nil && !w.filter(event.Name) {
				continue
			}

			mu.Lock()
			pending = append(pending, event.Name)
			mu.Unlock()

			debounce.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.onError != nil {
				w.onError(err)
			}

		case <-debounce.C:
			mu.Lock()
			paths := dedupe(pending)
			pending = nil
			mu.Unlock()

			if len(paths) > 0 {
				fn(paths)
			}
		}
	}
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
