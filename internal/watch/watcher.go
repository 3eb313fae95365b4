// Package watch reloads the scoreboard configuration when the file changes
// on disk. Editor save bursts are debounced into a single reload; a reload
// that fails to read or parse leaves the previous document in place.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"courtside/internal/core/model"
)

// Load reads and parses the configuration file at path. Relative image
// sources resolve against the file's directory.
func Load(path string) (model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read config %s: %w", path, err)
	}
	doc, err := model.Parse(raw, filepath.Dir(path))
	if err != nil {
		return model.Document{}, fmt.Errorf("config %s: %w", path, err)
	}
	return doc, nil
}

// Config wires a Watcher.
type Config struct {
	// Path is the configuration file to watch.
	Path string

	// Debounce is the quiet window before a reload fires.
	Debounce time.Duration

	// OnDocument receives each successfully reloaded document.
	OnDocument func(model.Document)

	// OnError receives recoverable reload failures. Optional.
	OnError func(error)
}

// Watcher observes one configuration file.
type Watcher struct {
	config Config
	fsw    *fsnotify.Watcher

	mu      sync.Mutex
	pending *time.Timer
	running bool
	done    chan struct{}
}

// New creates a watcher for the file named in config.
func New(config Config) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = 200 * time.Millisecond
	}
	return &Watcher{config: config}
}

// Start begins watching. The parent directory is watched rather than the
// file itself, so rename-and-replace saves and re-created files keep
// producing events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start config watcher: %w", err)
	}

	dir := filepath.Dir(w.config.Path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Fresh per start so the watcher can be rearmed after Stop.
	w.done = make(chan struct{})
	w.fsw = fsw
	w.running = true
	go w.run(fsw, w.done)
	return nil
}

// Stop terminates watching and discards any pending reload.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	fsw := w.fsw
	done := w.done
	w.mu.Unlock()

	_ = fsw.Close()
	<-done
}

func (w *Watcher) run(fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.schedule()
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.reportError(fmt.Errorf("config watcher: %w", err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(w.config.Path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// schedule arms the debounce timer, restarting the quiet window on every
// event so a burst of editor writes collapses into one reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.config.Debounce, w.reload)
}

func (w *Watcher) reload() {
	doc, err := Load(w.config.Path)
	if err != nil {
		w.reportError(err)
		return
	}
	w.config.OnDocument(doc)
}

func (w *Watcher) reportError(err error) {
	if w.config.OnError != nil {
		w.config.OnError(err)
	}
}
