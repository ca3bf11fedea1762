package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a program file must be quiet after a change
// before it is re-checked.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a fixed set of program files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	logger   *slog.Logger
	Debounce time.Duration
}

// NewWatcher watches the given files. Their directories are watched, so
// editors that replace a file on save are still seen. A nil logger
// discards.
func NewWatcher(paths []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]bool, len(paths)),
		logger:   logger,
		Debounce: DefaultDebounce,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", "dir", dir)
	}
	return w, nil
}

// Run calls onChange with the absolute path of each watched file once it
// has been quiet for Debounce after a write. Calls are made from Run's
// goroutine, one at a time. Run returns when ctx is done and closes the
// watcher.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.watcher.Close()

	d := newDebouncer(ctx, w.Debounce)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path, err := filepath.Abs(event.Name)
			if err != nil || !w.files[path] {
				continue
			}
			d.touch(path)

		case fired := <-d.settled:
			if !d.settle(fired) {
				continue
			}
			w.logger.Debug("program changed", "path", fired.path)
			onChange(fired.path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// timerFire is sent when the timer of generation gen for a path expires.
type timerFire struct {
	path string
	gen  uint64
}

// debouncer keeps one timer per path. Every touch replaces the timer with
// a new generation, so a timer that already fired before being replaced
// is recognized as stale and dropped by settle.
type debouncer struct {
	ctx     context.Context
	delay   time.Duration
	settled chan timerFire
	pending map[string]*pendingTimer
	gen     uint64
}

type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

func newDebouncer(ctx context.Context, delay time.Duration) *debouncer {
	return &debouncer{
		ctx:     ctx,
		delay:   delay,
		settled: make(chan timerFire),
		pending: make(map[string]*pendingTimer),
	}
}

// touch (re)starts the quiet period for path.
func (d *debouncer) touch(p string) {
	if old, ok := d.pending[p]; ok {
		old.timer.Stop()
	}
	d.gen++
	fire := timerFire{path: p, gen: d.gen}
	d.pending[p] = &pendingTimer{
		gen: fire.gen,
		timer: time.AfterFunc(d.delay, func() {
			select {
			case d.settled <- fire:
			case <-d.ctx.Done():
			}
		}),
	}
}

// settle reports whether fire ends the current quiet period of its path.
func (d *debouncer) settle(fire timerFire) bool {
	cur, ok := d.pending[fire.path]
	if !ok || cur.gen != fire.gen {
		return false
	}
	delete(d.pending, fire.path)
	return true
}

func (d *debouncer) stop() {
	for _, p := range d.pending {
		p.timer.Stop()
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
