package netstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// ErrObserverRunning is returned by Start on an observer already started.
var ErrObserverRunning = errors.New("observer already running")

var _ types.Connectivity = (*FileObserver)(nil)

// ReadState reads a state file. A missing file means disconnected.
func ReadState(path string) (types.NetState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.NetState{Kind: types.NetKindNone}, nil
	}
	if err != nil {
		return types.NetState{}, fmt.Errorf("read state file: %w", err)
	}
	var st types.NetState
	if err := json.Unmarshal(data, &st); err != nil {
		return types.NetState{}, fmt.Errorf("parse state file %s: %w", path, err)
	}
	return st, nil
}

// WriteState replaces the state file atomically: write to a temp file in the
// same directory, sync, then rename over the target.
func WriteState(path string, state types.NetState) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".netstate-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}
	return nil
}

// FileObserver reports the state held in a JSON file and notifies handlers
// when the file changes to a different state. The parent directory is
// watched so the file may be created, replaced or removed at any time.
type FileObserver struct {
	path   string
	logger *slog.Logger
	subs   handlers

	mu      sync.Mutex
	last    types.NetState
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFileObserver returns an observer for path. Call Start to receive
// change notifications.
func NewFileObserver(path string, opts ...Option) *FileObserver {
	o := buildOptions(opts)
	return &FileObserver{path: path, logger: o.logger}
}

// Path returns the observed state file.
func (f *FileObserver) Path() string { return f.path }

// Current implements types.Connectivity.
func (f *FileObserver) Current(ctx context.Context) (types.NetState, error) {
	return ReadState(f.path)
}

// OnChange implements types.Connectivity.
func (f *FileObserver) OnChange(fn func(types.NetState)) func() {
	return f.subs.add(fn)
}

// Start begins watching the state file's directory, creating it if needed.
func (f *FileObserver) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watcher != nil {
		return ErrObserverRunning
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	last, err := ReadState(f.path)
	if err != nil {
		f.logger.Warn("unreadable state file; assuming offline", "path", f.path, "error", err)
		last = types.NetState{Kind: types.NetKindNone}
	}
	f.last = last
	f.watcher = w
	f.done = make(chan struct{})
	f.wg.Add(1)
	go f.loop(w, f.done)
	return nil
}

// Close stops watching. It is safe to call on an observer never started.
func (f *FileObserver) Close() error {
	f.mu.Lock()
	w := f.watcher
	done := f.done
	f.watcher = nil
	f.mu.Unlock()

	if w == nil {
		return nil
	}
	close(done)
	err := w.Close()
	f.wg.Wait()
	return err
}

func (f *FileObserver) loop(w *fsnotify.Watcher, done chan struct{}) {
	defer f.wg.Done()
	name := filepath.Clean(f.path)

	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			f.reload()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.logger.Warn("state file watcher error", "error", err)
		}
	}
}

// reload re-reads the file and notifies handlers if the state changed.
func (f *FileObserver) reload() {
	st, err := ReadState(f.path)
	if err != nil {
		f.logger.Warn("unreadable state file; ignored", "path", f.path, "error", err)
		return
	}

	f.mu.Lock()
	changed := st != f.last
	f.last = st
	f.mu.Unlock()

	if changed {
		f.logger.Debug("state file changed", "online", st.Online(), "kind", st.KindOrUnknown())
		f.subs.notify(st)
	}
}
