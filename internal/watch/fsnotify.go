package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FsnotifyWatcher is the Watcher implementation backed by fsnotify,
// registering every non-ignored directory under the project root (the
// "single observer per project root" of spec.md §4.10: one *fsnotify.Watcher
// instance, recursively seeded, rather than one observer per directory).
type FsnotifyWatcher struct {
	fsw      *fsnotify.Watcher
	deb      *debouncer
	opts     Options
	rootPath string
	events   chan []FileEvent
	errors   chan error
	stopCh   chan struct{}
	mu       sync.Mutex
	stopped  bool
	stopOnce sync.Once
}

var _ Watcher = (*FsnotifyWatcher)(nil)

// New creates an FsnotifyWatcher. The returned watcher is not yet observing
// anything until Start is called.
func New(opts Options) (*FsnotifyWatcher, error) {
	opts = opts.withDefaults()
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &FsnotifyWatcher{
		fsw:    fsw,
		deb:    newDebouncer(opts.DebounceWindow, opts.EventBufferSize),
		opts:   opts,
		events: make(chan []FileEvent, opts.EventBufferSize),
		errors: make(chan error, 16),
		stopCh: make(chan struct{}),
	}, nil
}

// Start registers root and every non-ignored subdirectory, then begins
// forwarding coalesced events. Returns once the initial registration walk
// completes; event processing continues on background goroutines.
func (w *FsnotifyWatcher) Start(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	w.rootPath = abs

	if err := w.addRecursive(abs); err != nil {
		return fmt.Errorf("register watch dirs: %w", err)
	}

	go w.forwardDebounced()
	go w.consumeFsEvents()
	return nil
}

func (w *FsnotifyWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignoredDirNames[d.Name()] {
			if d.Name() == ".indexer" {
				// Watched but not descended, so a change to
				// .indexer/to-index is seen as a config change.
				if err := w.fsw.Add(path); err != nil {
					return err
				}
			}
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *FsnotifyWatcher) consumeFsEvents() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.emitError(err)
		}
	}
}

func (w *FsnotifyWatcher) handleEvent(event fsnotify.Event) {
	relPath, err := filepath.Rel(w.rootPath, event.Name)
	if err != nil {
		relPath = event.Name
	}

	isDir := false
	if info, statErr := os.Stat(event.Name); statErr == nil {
		isDir = info.IsDir()
	}

	base := filepath.Base(event.Name)
	if isConfigFile(base) {
		w.deb.Add(FileEvent{Path: relPath, Operation: OpConfigChange, IsDir: false, Timestamp: time.Now()})
		return
	}
	if ignoredDirNames[base] && isDir {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
		if isDir && !ignoredDirNames[base] {
			_ = w.fsw.Add(event.Name)
		}
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return
	}

	w.deb.Add(FileEvent{Path: relPath, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

func (w *FsnotifyWatcher) forwardDebounced() {
	for {
		select {
		case <-w.stopCh:
			return
		case events, ok := <-w.deb.Output():
			if !ok {
				return
			}
			w.emitEvents(events)
		}
	}
}

func (w *FsnotifyWatcher) emitEvents(events []FileEvent) {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	select {
	case w.events <- events:
	default:
	}
}

func (w *FsnotifyWatcher) emitError(err error) {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
	}
}

// Stop releases the fsnotify watcher and debouncer. Safe to call multiple
// times.
func (w *FsnotifyWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()

		close(w.stopCh)
		w.deb.Stop()
		err = w.fsw.Close()
		close(w.events)
		close(w.errors)
	})
	return err
}

// Events returns the channel of batched, debounced events.
func (w *FsnotifyWatcher) Events() <-chan []FileEvent {
	return w.events
}

// Errors returns the channel of non-fatal watcher errors.
func (w *FsnotifyWatcher) Errors() <-chan error {
	return w.errors
}
