package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"aio/internal/ports"
)

// Recursive implements ports.ChangeNotifier with fsnotify. It watches a
// directory tree and emits the path of every created, written, removed
// or renamed file. Directories created after Start are picked up and
// watched too. Hidden directories are skipped.
type Recursive struct {
	root   string
	logger *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	events  chan string
	done    chan struct{}
}

var _ ports.ChangeNotifier = (*Recursive)(nil)

// New creates a notifier for the given root directory.
func New(root string, logger *slog.Logger) *Recursive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recursive{root: root, logger: logger}
}

// Start begins watching and returns the event channel. The channel is
// closed when the notifier is stopped.
func (r *Recursive) Start() (<-chan string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watcher != nil {
		return nil, fmt.Errorf("watcher already running")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := addDirs(w, r.root); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", r.root, err)
	}

	r.watcher = w
	r.events = make(chan string, 64)
	r.done = make(chan struct{})
	go r.loop(w, r.events, r.done)
	return r.events, nil
}

// Stop closes the watcher and the event channel.
func (r *Recursive) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Close()
	<-r.done
	r.watcher = nil
	return err
}

// Running reports whether the notifier is watching.
func (r *Recursive) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.watcher != nil
}

func (r *Recursive) loop(w *fsnotify.Watcher, events chan string, done chan struct{}) {
	defer close(done)
	defer close(events)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			r.handle(w, events, event)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			r.logger.Warn("watcher error", "error", err)
		}
	}
}

func (r *Recursive) handle(w *fsnotify.Watcher, events chan string, event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	// New directories must be added to the watch set. fsnotify does not
	// watch recursively on its own.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addDirs(w, event.Name); err != nil {
				r.logger.Warn("watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	select {
	case events <- event.Name:
	default:
		// A full channel means a refresh is already overdue. Dropping
		// the event is fine, the consumer rescans the whole vault.
	}
}

func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

