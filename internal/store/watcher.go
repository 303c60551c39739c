package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"kanban-cli/internal/debounce"
	"kanban-cli/internal/model"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const DefaultWatchDebounce = 200 * time.Millisecond

// WatcherConfig configures a board file watcher.
type WatcherConfig struct {
	File     *File
	Debounce time.Duration
	// OnLoad receives every externally written board that decodes and validates.
	OnLoad func(model.Board)
	Logger logrus.FieldLogger
	// Scheduler overrides the debounce clock (tests).
	Scheduler debounce.Scheduler
}

// Watcher reloads the board file when another process rewrites it. Writes
// made through the same File are ignored.
type Watcher struct {
	cfg     WatcherConfig
	log     logrus.FieldLogger
	fsw     *fsnotify.Watcher
	reloads *debounce.Debouncer
	running atomic.Bool
	done    chan struct{}

	// loadMu serializes OnLoad with Close; closed is set under it.
	loadMu sync.Mutex
	closed bool
}

func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.File == nil || cfg.File.Path == "" {
		return nil, errors.New("watcher: board file path is required")
	}
	if cfg.OnLoad == nil {
		return nil, errors.New("watcher: OnLoad is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultWatchDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "watcher")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors and our own atomic writes replace the file
	// via rename, which drops a watch on the file itself.
	dir := filepath.Dir(cfg.File.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	var opts []debounce.Option
	if cfg.Scheduler != nil {
		opts = append(opts, debounce.WithScheduler(cfg.Scheduler))
	}
	return &Watcher{
		cfg:     cfg,
		log:     log,
		fsw:     fsw,
		reloads: debounce.New(cfg.Debounce, opts...),
		done:    make(chan struct{}),
	}, nil
}

// Run forwards file events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	defer close(w.done)
	target := filepath.Clean(w.cfg.File.Path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.reloads.TryUpdate(w.reload, "reload")
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) reload() {
	b, err := os.ReadFile(w.cfg.File.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.log.WithError(err).Warn("read board file")
		}
		return
	}
	if w.cfg.File.WroteContent(b) {
		return
	}
	board, err := decodeBoard(b)
	if err != nil {
		w.log.WithError(err).Warn("ignoring invalid board file")
		return
	}
	w.loadMu.Lock()
	defer w.loadMu.Unlock()
	if w.closed {
		return
	}
	w.log.Debug("board file changed on disk")
	w.cfg.OnLoad(board)
}

// Flush runs a pending reload now.
func (w *Watcher) Flush() {
	w.reloads.Flush()
}

// Close stops watching and drops any queued reload. Once it returns, OnLoad
// is not called again.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	if w.running.Load() {
		<-w.done
	}
	w.reloads.Stop()

	w.loadMu.Lock()
	w.closed = true
	w.loadMu.Unlock()
	return err
}
