package tui

import (
	"context"

	"kanban-cli/internal/boardstate"
	"kanban-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

type Options struct {
	State *boardstate.State
	// File, when set, is watched for edits made by other processes.
	File   *store.File
	Logger logrus.FieldLogger
}

// Run shows the board until the user quits. Open text bursts are committed
// before it returns.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	feed := newBoardFeed()
	removeBoard := opts.State.OnBoardChanged(feed.publishBoard)
	removeHistory := opts.State.OnHistoryUpdated(feed.publishHistory)
	defer func() {
		removeBoard()
		removeHistory()
		feed.close()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.File != nil {
		w, err := store.NewWatcher(store.WatcherConfig{
			File:   opts.File,
			OnLoad: opts.State.Load,
			Logger: log,
		})
		if err != nil {
			log.WithError(err).Warn("board file watcher disabled")
		} else {
			go w.Run(ctx)
			defer func() { _ = w.Close() }()
		}
	}

	m := newAppModel(opts.State, feed)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	opts.State.Flush()
	return err
}
