// Package watch turns filesystem notifications below a repository root into
// debounced batches of changed paths.
package watch

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a directory tree recursively. Editors often write a file
// several times per save, so events are collected until the tree has been
// quiet for the debounce interval and then delivered together.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	excluded func(relPath string) bool
	logger   *slog.Logger

	root    string
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher. excluded receives slash-separated paths
// relative to the watched root (directories with a trailing slash) and may
// be nil.
func NewWatcher(debounce time.Duration, excluded func(relPath string) bool, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if excluded == nil {
		excluded = func(string) bool { return false }
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{
		fw:       fw,
		debounce: debounce,
		excluded: excluded,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Watch registers every directory below root and starts delivering batches
// to onBatch from a background goroutine. Paths in a batch are absolute,
// distinct and sorted.
func (w *Watcher) Watch(root string, onBatch func(paths []string)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	w.root = absRoot

	if err := w.addTree(absRoot); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop(onBatch)
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path, true) {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

func (w *Watcher) ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return w.excluded(rel)
}

func (w *Watcher) loop(onBatch func([]string)) {
	defer w.wg.Done()

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.ignored(event.Name, true) {
						if err := w.addTree(event.Name); err != nil {
							w.logger.Warn("failed to watch new directory", slog.String("path", event.Name), slog.Any("error", err))
						}
					}
					continue
				}
			}
			if w.ignored(event.Name, false) {
				continue
			}

			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = make(map[string]struct{})
			onBatch(batch)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.Any("error", err))

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Stop ends monitoring and waits for the delivery goroutine to exit.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.done)
	w.mu.Unlock()

	err := w.fw.Close()
	w.wg.Wait()
	return err
}
