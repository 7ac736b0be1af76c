// Package watch re-runs a callback when a source file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quark-lang/quark/internal/cli"
)

// DefaultDebounce collapses the burst of events editors emit on save
const DefaultDebounce = 100 * time.Millisecond

// Op is the subset of filesystem operations that trigger a rebuild
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRename
)

func (op Op) String() string {
	s := ""
	for _, p := range []struct {
		bit  Op
		name string
	}{{OpCreate, "CREATE"}, {OpWrite, "WRITE"}, {OpRename, "RENAME"}} {
		if op&p.bit == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += p.name
	}
	return s
}

// Event is a debounced change to the watched file
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler is called once per debounced change. Errors are logged, not fatal.
type Handler func(Event) error

// Watcher watches a single file through its parent directory, so that
// editors which save by rename-and-replace keep being observed.
type Watcher struct {
	w        *fsnotify.Watcher
	path     string
	Debounce time.Duration
	Logger   *cli.Logger
}

// New starts watching path
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &Watcher{w: w, path: abs, Debounce: DefaultDebounce}, nil
}

// Path returns the absolute watched path
func (w *Watcher) Path() string { return w.path }

// Close stops the underlying watcher
func (w *Watcher) Close() error { return w.w.Close() }

func translate(op fsnotify.Op) Op {
	var out Op
	if op&fsnotify.Create != 0 {
		out |= OpCreate
	}
	if op&fsnotify.Write != 0 {
		out |= OpWrite
	}
	if op&fsnotify.Rename != 0 {
		out |= OpRename
	}
	return out
}

// Run delivers debounced events to fn until ctx is cancelled or the
// watcher fails. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending Op
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			op := translate(ev.Op)
			if op == 0 {
				continue
			}
			w.Logger.Debug("%s %s", op, ev.Name)
			pending |= op
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			event := Event{Path: w.path, Op: pending, Time: time.Now()}
			pending = 0
			// a rename-and-replace save drops the old inode; re-add the directory
			if event.Op&OpRename != 0 {
				_ = w.w.Add(filepath.Dir(w.path))
			}
			if err := fn(event); err != nil {
				w.Logger.Error("%v", err)
			}

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.path, err)
		}
	}
}
