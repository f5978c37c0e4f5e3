// Package watcher reports changes to the files a chart was built from: the
// data file and, optionally, the config or workspace file next to it. It
// uses fsnotify on the containing directories and falls back to polling on
// network filesystems or when PV_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/proteoview/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNoPaths        = errors.New("no paths to watch")
)

// Event reports one debounced change.
type Event struct {
	Path string
	// Err is set when the file disappeared or could not be read.
	Err error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounceDuration = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets a callback invoked with the path that changed, in
// addition to the Events channel.
func WithOnChange(fn func(path string)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

type fileState struct {
	mtime     time.Time
	size      int64
	debouncer *Debouncer
}

// Watcher monitors a fixed set of files.
type Watcher struct {
	paths            []string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func(string)
	forcePoll        bool

	mu        sync.RWMutex
	files     map[string]*fileState
	fsTypes   map[string]FilesystemType
	fsWatcher *fsnotify.Watcher
	polling   bool
	started   bool
	cancel    context.CancelFunc

	events chan Event
}

// New creates a watcher for paths. Relative paths are made absolute and
// duplicates are dropped.
func New(paths []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func(string) {},
		events:           make(chan Event, 8),
	}
	seen := map[string]bool{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		if !seen[abs] {
			seen[abs] = true
			w.paths = append(w.paths, abs)
		}
	}
	if len(w.paths) == 0 {
		return nil, ErrNoPaths
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. Files that do not exist yet are picked up when
// they are created.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	w.files = make(map[string]*fileState, len(w.paths))
	w.fsTypes = make(map[string]FilesystemType, len(w.paths))
	w.polling = w.forcePoll || envBool("PV_FORCE_POLL")

	for _, p := range w.paths {
		st := &fileState{debouncer: NewDebouncer(w.debounceDuration)}
		info, err := os.Stat(p)
		switch {
		case err == nil:
			st.mtime, st.size = info.ModTime(), info.Size()
		case os.IsPermission(err):
			return fmt.Errorf("%w: %s", ErrPermission, p)
		}
		w.files[p] = st

		fsType := DetectFilesystemType(p)
		w.fsTypes[p] = fsType
		if isRemoteFilesystem(fsType) {
			debug.Log("watcher: %s is on %s, polling", p, fsType)
			w.polling = true
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	if !w.polling {
		if err := w.startFsnotify(ctx); err != nil {
			debug.Log("watcher: fsnotify unavailable, polling: %v", err)
			w.polling = true
		}
	}
	if w.polling {
		go w.poll(ctx)
	}

	w.started = true
	return nil
}

// startFsnotify watches each containing directory once. Watching the
// directory rather than the file survives atomic replace-by-rename saves.
func (w *Watcher) startFsnotify(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dirs := map[string]bool{}
	for _, p := range w.paths {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return err
		}
	}
	w.fsWatcher = fsw
	go w.watchFsnotify(ctx, fsw)
	return nil
}

// Stop stops watching. The Events channel stays open so a pending receive
// in the UI never observes a spurious zero Event.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	if w.cancel != nil {
		w.cancel()
	}
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	for _, st := range w.files {
		st.debouncer.Cancel()
	}
	w.started = false
}

// Events delivers debounced changes.
func (w *Watcher) Events() <-chan Event { return w.events }

// Paths returns the watched absolute paths.
func (w *Watcher) Paths() []string { return append([]string(nil), w.paths...) }

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// FilesystemType returns the classification recorded for path at Start.
func (w *Watcher) FilesystemType(path string) FilesystemType {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FSTypeUnknown
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsTypes[abs]
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func (w *Watcher) watchFsnotify(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			w.mu.RLock()
			st, watched := w.files[path]
			w.mu.RUnlock()
			if !watched {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0:
				w.emit(Event{Path: path, Err: ErrFileRemoved})
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				st.debouncer.Trigger(func() { w.changed(path) })
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			debug.Log("watcher: %v", err)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range w.paths {
				w.pollOne(p)
			}
		}
	}
}

func (w *Watcher) pollOne(path string) {
	w.mu.Lock()
	st := w.files[path]
	info, err := os.Stat(path)
	if err != nil {
		existed := !st.mtime.IsZero()
		st.mtime, st.size = time.Time{}, 0
		w.mu.Unlock()
		switch {
		case os.IsNotExist(err):
			if existed {
				w.emit(Event{Path: path, Err: ErrFileRemoved})
			}
		case os.IsPermission(err):
			w.emit(Event{Path: path, Err: ErrPermission})
		default:
			w.emit(Event{Path: path, Err: err})
		}
		return
	}
	changed := !info.ModTime().Equal(st.mtime) || info.Size() != st.size
	if changed {
		st.mtime, st.size = info.ModTime(), info.Size()
	}
	w.mu.Unlock()

	if changed {
		st.debouncer.Trigger(func() { w.changed(path) })
	}
}

func (w *Watcher) changed(path string) {
	if !w.IsStarted() {
		return
	}
	w.onChange(path)
	w.emit(Event{Path: path})
}

// emit never blocks; a full channel means the consumer already has
// pending reloads to process.
func (w *Watcher) emit(e Event) {
	select {
	case w.events <- e:
	default:
		debug.Log("watcher: dropped event for %s", e.Path)
	}
}
