// Package watch implements Watcher: a debounced filesystem watch loop that
// feeds batches of changed relative paths back into ChangeDetector and
// ParserRegistry for continuous indexing.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rlefko/semindex/internal/ignore"
	"github.com/rlefko/semindex/internal/logging"
)

// Watcher watches a project root and invokes a callback with batches of
// changed relative paths after a debounce window.
type Watcher struct {
	rootDir      string
	resolver     *ignore.Resolver
	debounceTime time.Duration
	logger       logging.Logger
}

// New builds a Watcher rooted at rootDir, consulting resolver to skip
// ignored paths. A nil logger falls back to a no-op logger.
func New(rootDir string, resolver *ignore.Resolver, logger logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Watcher{
		rootDir:      rootDir,
		resolver:     resolver,
		debounceTime: 500 * time.Millisecond,
		logger:       logger,
	}
}

// Watch blocks, watching rootDir recursively, and invokes onChange with the
// batch of relative paths that changed whenever a debounce window elapses
// with no further activity. It returns when ctx is cancelled or the
// underlying watcher fails to start.
func (w *Watcher) Watch(ctx context.Context, onChange func(paths []string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addDirectoriesRecursively(fsw, w.rootDir); err != nil {
		return err
	}

	var debounceTimer *time.Timer
	reindexCh := make(chan struct{}, 1)
	var mu sync.Mutex
	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			relPath, err := filepath.Rel(w.rootDir, event.Name)
			if err != nil {
				continue
			}
			mu.Lock()
			changed[filepath.ToSlash(relPath)] = true
			mu.Unlock()

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.shouldWatchDirectory(event.Name) {
						if err := w.addDirectoriesRecursively(fsw, event.Name); err != nil {
							w.logger.Warn("failed to watch new directory", logging.FilePath(event.Name), logging.Err(err))
						}
					}
				}
			}

			if debounceTimer != nil {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
			}
			debounceTimer = time.AfterFunc(w.debounceTime, func() {
				select {
				case reindexCh <- struct{}{}:
				default:
				}
			})

		case <-reindexCh:
			mu.Lock()
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			changed = make(map[string]bool)
			mu.Unlock()

			if len(paths) > 0 {
				onChange(paths)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", logging.Err(err))
		}
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	relPath, err := filepath.Rel(w.rootDir, event.Name)
	if err != nil {
		return false
	}
	return !w.isIgnored(filepath.ToSlash(relPath))
}

func (w *Watcher) shouldWatchDirectory(path string) bool {
	relPath, err := filepath.Rel(w.rootDir, path)
	if err != nil {
		return false
	}
	return !w.isIgnored(filepath.ToSlash(relPath))
}

func (w *Watcher) isIgnored(relPath string) bool {
	if w.resolver == nil {
		return false
	}
	return w.resolver.IsIgnored(relPath)
}

func (w *Watcher) addDirectoriesRecursively(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("error accessing path during watch setup", logging.FilePath(path), logging.Err(err))
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if !w.shouldWatchDirectory(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", logging.FilePath(path), logging.Err(err))
		}
		return nil
	})
}
