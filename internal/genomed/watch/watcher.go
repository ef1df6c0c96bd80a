// Package watch notifies the viewer when an open genome file changes on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"genomed/pkg/logger"
)

// Watcher monitors a single file for writes, with debouncing so rapid
// successive writes collapse into one notification.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
	logger    *logger.Logger
}

// New creates a watcher for the file at path.
func New(path string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      filepath.Clean(path),
		debounce:  debounce,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
		logger:    logger.WithFields("component", "watcher", "path", path),
	}, nil
}

// Start begins watching the directory containing the file (editors replace
// files rather than writing in place, so watching the file alone misses
// renames). Returns a channel that receives a signal per change burst.
func (w *Watcher) Start() (<-chan struct{}, error) {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	go w.loop()

	w.logger.Debug("watcher started", "dir", dir, "debounce", w.debounce)
	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevant(event) {
				continue
			}

			if pending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			if pending {
				pending = false
				w.logger.Debug("file changed")
				// non-blocking; a laggy consumer still gets one signal
				select {
				case w.onChange <- struct{}{}:
				default:
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename) || event.Op.Has(fsnotify.Remove)
}
