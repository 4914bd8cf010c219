// Package watcher re-validates environment descriptor files as they change.
//
// It is tooling for the deployment pipeline and local development: every
// time the watched file is written, it is loaded and validated again and the
// outcome is emitted. The descriptor returned by envdesc.Get is never
// replaced; each Result carries a new, independent Environment.
//
// Basic usage:
//
//	w, err := watcher.New().
//	    FromFile("descriptors/production.yaml").
//	    WithEnvPrefix("COFFEE_").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
//	initial, results, err := w.Watch()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for res := range results {
//	    if res.Err != nil {
//	        log.Printf("descriptor invalid: %v", res.Err)
//	        continue
//	    }
//	    log.Printf("descriptor ok: %s", res.Environment)
//	}
package watcher

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arloliu/envdesc"
	"github.com/fsnotify/fsnotify"
)

// Result is the outcome of loading the watched descriptor once.
type Result struct {
	Environment envdesc.Environment
	Err         error
}

// Watcher monitors a descriptor file and emits a Result whenever its
// content changes.
type Watcher struct {
	config      watcherConfig
	path        string
	fsWatcher   *fsnotify.Watcher
	stopChan    chan struct{}
	doneChan    chan struct{}
	resultsChan chan Result
	mu          sync.Mutex
	running     bool
	lastContent []byte
}

// watcherConfig holds internal configuration for the watcher.
type watcherConfig struct {
	pollInterval     time.Duration
	debounceInterval time.Duration
	apply            []func(*envdesc.Builder)
}

// defaultPollInterval is the fallback content check for filesystems where
// change notifications are unreliable.
const defaultPollInterval = 30 * time.Second

// defaultDebounceInterval prevents rapid successive reloads.
const defaultDebounceInterval = 100 * time.Millisecond

// New creates a new watcher Builder.
func New() *Builder {
	return &Builder{
		config: watcherConfig{
			pollInterval:     defaultPollInterval,
			debounceInterval: defaultDebounceInterval,
		},
	}
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Watch loads the descriptor once and starts watching it.
// It returns the result of the initial load and a channel that receives a
// Result each time the file content changes. An invalid initial descriptor
// does not stop the watch; its error is returned in the initial Result.
//
// The returned channel is closed when Stop is called.
func (w *Watcher) Watch() (Result, <-chan Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return Result{}, nil, &WatcherError{Message: "watcher is already running"}
	}

	content, err := os.ReadFile(w.path)
	if err != nil {
		return Result{}, nil, &WatcherError{Message: "failed to read " + w.path, Err: err}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Result{}, nil, &WatcherError{Message: "failed to create file watcher", Err: err}
	}

	// Watch the directory: editors often replace a file instead of writing
	// it in place, which drops a watch set on the file itself.
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		_ = fsWatcher.Close()

		return Result{}, nil, &WatcherError{Message: "failed to watch " + w.path, Err: err}
	}

	initial := w.load(content)
	w.lastContent = content

	w.fsWatcher = fsWatcher
	w.running = true
	w.resultsChan = make(chan Result, 1)
	w.stopChan = make(chan struct{})
	w.doneChan = make(chan struct{})

	go w.watchLoop()

	return initial, w.resultsChan, nil
}

// Stop gracefully stops the watcher.
// It closes the results channel and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	<-w.doneChan // Wait for watchLoop to finish

	_ = w.fsWatcher.Close()
}

// watchLoop is the main loop that monitors for changes.
func (w *Watcher) watchLoop() {
	defer close(w.doneChan)
	defer close(w.resultsChan)

	var pollChan <-chan time.Time
	if w.config.pollInterval > 0 {
		pollTicker := time.NewTicker(w.config.pollInterval)
		defer pollTicker.Stop()
		pollChan = pollTicker.C
	}

	// Debounce timer to prevent rapid successive reloads
	var debounceTimer *time.Timer
	var debounceChan <-chan time.Time

	reload := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.NewTimer(w.config.debounceInterval)
		debounceChan = debounceTimer.C
	}

	target := filepath.Clean(w.path)
	fsEvents := w.fsWatcher.Events
	fsErrors := w.fsWatcher.Errors

	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				reload()
			}

		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			if !w.emit(Result{Err: &WatcherError{Message: "file watcher error", Err: err}}) {
				return
			}

		case <-pollChan:
			reload()

		case <-debounceChan:
			debounceChan = nil
			res, changed := w.reloadIfChanged()
			if changed && !w.emit(res) {
				return
			}
		}
	}
}

// emit sends res unless the watcher is stopping. It reports false when the
// loop should exit.
func (w *Watcher) emit(res Result) bool {
	select {
	case w.resultsChan <- res:
		return true
	case <-w.stopChan:
		return false
	}
}

// reloadIfChanged reloads the descriptor when its content differs from the
// last load.
func (w *Watcher) reloadIfChanged() (Result, bool) {
	content, err := os.ReadFile(w.path)
	if err != nil {
		// A replacing editor may briefly leave no file; the Create event
		// that follows triggers another reload.
		if os.IsNotExist(err) {
			return Result{}, false
		}

		return Result{Err: &WatcherError{Message: "failed to read " + w.path, Err: err}}, true
	}

	if bytes.Equal(content, w.lastContent) {
		return Result{}, false
	}
	w.lastContent = content

	return w.load(content), true
}

// load builds a fresh loader for content and returns its outcome.
func (w *Watcher) load(content []byte) Result {
	builder := envdesc.New().FromBytes(content).WithName(w.path)
	for _, fn := range w.config.apply {
		builder = builder.Apply(fn)
	}

	loader, err := builder.Build()
	if err != nil {
		return Result{Err: err}
	}

	env, err := loader.Load()

	return Result{Environment: env, Err: err}
}

// WatcherError represents a watcher-specific error.
type WatcherError struct {
	Message string
	Err     error
}

func (e *WatcherError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *WatcherError) Unwrap() error {
	return e.Err
}
