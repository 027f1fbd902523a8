// Package watch reports SVG files that appear in a drop folder.
//
// A [Watcher] listens for create and write events with fsnotify, collects
// the paths of .svg files and hands them to a callback once no new event
// has arrived for the debounce interval. Editors and copy tools write a
// file in several steps, so a file is reported once per quiet period
// rather than once per event.
//
//	w, err := watch.New(dir, func(paths []string) {
//	    desktop.OnFilesSubmitted(ctx, surface, convert.Submission{Paths: paths, DPI: "96"})
//	})
//	if err != nil {
//	    return err
//	}
//	w.Start(ctx)
//	defer w.Stop()
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before a batch
// of paths is reported.
const DefaultDebounce = 500 * time.Millisecond

// Callback receives the SVG paths collected during one debounce window,
// sorted. Callbacks never run concurrently.
type Callback func(paths []string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce interval. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used for watcher errors.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher monitors one directory for new or rewritten SVG files.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	callback Callback
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool

	cbMu     sync.Mutex // serializes callbacks
	inflight sync.WaitGroup
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a watcher for dir. The directory must exist.
func New(dir string, callback Callback, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:      dir,
		watcher:  fw,
		callback: callback,
		debounce: DefaultDebounce,
		logger:   log.Default(),
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Start begins delivering events until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", "dir", w.dir, "err", err)
			}
		}
	}()
}

// Stop ends watching. Paths still waiting for their debounce window are
// dropped. Stop blocks until a running callback returns.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.watcher.Close()

	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if w.cancel != nil {
		<-w.done
	}
	w.inflight.Wait()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".svg") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.stopped || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	sort.Strings(paths)
	if w.callback == nil {
		return
	}

	w.cbMu.Lock()
	defer w.cbMu.Unlock()
	w.callback(paths)
}
