// Package boardstate owns the live board and its undo history.
//
// Every change to a board goes through a State so that it can be validated,
// recorded and broadcast. Structural edits are recorded immediately; text edits
// arrive once per keystroke and are coalesced into one history entry per burst.
//
// A State serializes all calls on a single mutex, including the debounced
// commits that run on timer goroutines. Listeners run inside that critical
// section and must not call back into the State.
package boardstate

import (
	"context"
	"sync"
	"time"

	"kanban-cli/internal/debounce"
	"kanban-cli/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	DefaultTaskTextWindow = 3 * time.Second
	DefaultTitleWindow    = time.Second
)

// Saver persists a full board snapshot.
type Saver interface {
	SaveBoard(ctx context.Context, b model.Board) error
}

type SaverFunc func(ctx context.Context, b model.Board) error

func (f SaverFunc) SaveBoard(ctx context.Context, b model.Board) error { return f(ctx, b) }

type Options struct {
	// Board is the initial board. Nil means model.NewBoard().
	Board *model.Board
	// History seeds the undo log (e.g. restored from a previous session).
	History []model.HistoryEntry

	Saver     Saver
	Scheduler debounce.Scheduler

	TaskTextWindow time.Duration
	TitleWindow    time.Duration

	Logger logrus.FieldLogger
}

type State struct {
	mu  sync.Mutex
	log logrus.FieldLogger

	saver   Saver
	board   model.Board
	history []model.HistoryEntry

	// previousText holds the pre-burst value of every text target with an open
	// debounce window, keyed by editTarget.
	previousText map[string]string

	taskText   *debounce.Debouncer
	boardText  *debounce.Debouncer
	columnText *debounce.Debouncer

	nextListenerID   int
	boardListeners   []boardListener
	historyListeners []historyListener
}

type boardListener struct {
	id int
	fn func(model.Board)
}

type historyListener struct {
	id int
	fn func(model.HistoryEntry)
}

func New(opts Options) *State {
	board := model.NewBoard()
	if opts.Board != nil {
		board = opts.Board.Clone()
	}
	taskWindow := opts.TaskTextWindow
	if taskWindow <= 0 {
		taskWindow = DefaultTaskTextWindow
	}
	titleWindow := opts.TitleWindow
	if titleWindow <= 0 {
		titleWindow = DefaultTitleWindow
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	history := make([]model.HistoryEntry, 0, len(opts.History))
	for _, h := range opts.History {
		history = append(history, h.Clone())
	}

	var debounceOpts []debounce.Option
	if opts.Scheduler != nil {
		debounceOpts = append(debounceOpts, debounce.WithScheduler(opts.Scheduler))
	}

	return &State{
		log:          logger.WithField("component", "boardstate"),
		saver:        opts.Saver,
		board:        board,
		history:      history,
		previousText: map[string]string{},
		taskText:     debounce.New(taskWindow, debounceOpts...),
		boardText:    debounce.New(titleWindow, debounceOpts...),
		columnText:   debounce.New(titleWindow, debounceOpts...),
	}
}

// Current returns a copy of the live board.
func (s *State) Current() model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// History returns a copy of the undo log, oldest first.
func (s *State) History() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.HistoryEntry, len(s.history))
	for i := range s.history {
		out[i] = s.history[i].Clone()
	}
	return out
}

func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// OnBoardChanged registers fn to receive the board after every applied change.
// The returned func removes the listener.
func (s *State) OnBoardChanged(fn func(model.Board)) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListenerID++
	id := s.nextListenerID
	s.boardListeners = append(s.boardListeners, boardListener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := s.boardListeners[:0]
		for _, l := range s.boardListeners {
			if l.id != id {
				out = append(out, l)
			}
		}
		s.boardListeners = out
	}
}

// OnHistoryUpdated registers fn to receive the newest history entry whenever one
// is appended: immediately for structural changes, after the debounce window for
// text edits.
func (s *State) OnHistoryUpdated(fn func(model.HistoryEntry)) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListenerID++
	id := s.nextListenerID
	s.historyListeners = append(s.historyListeners, historyListener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := s.historyListeners[:0]
		for _, l := range s.historyListeners {
			if l.id != id {
				out = append(out, l)
			}
		}
		s.historyListeners = out
	}
}

// Refresh re-sends the current board to board-changed listeners.
func (s *State) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyBoardLocked()
}

// Preview sends b to board-changed listeners without touching the live board.
func (s *State) Preview(b model.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.boardListeners {
		l.fn(b.Clone())
	}
}

// PendingEdits returns the number of text bursts whose history entry has not been
// committed yet.
func (s *State) PendingEdits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.previousText)
}

// Flush commits every open text burst now.
func (s *State) Flush() {
	// Debounced actions take s.mu themselves.
	s.taskText.Flush()
	s.boardText.Flush()
	s.columnText.Flush()
}

// Close ends the State's lifecycle: open bursts are committed and the saver is
// detached.
func (s *State) Close() {
	s.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saver = nil
	s.boardListeners = nil
	s.historyListeners = nil
}

// locked wraps fn for use as a debounced action.
func (s *State) locked(fn func()) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn()
	}
}

func (s *State) pushLocked(change model.ChangeKind, snapshot model.Board, details string) {
	s.history = append(s.history, model.HistoryEntry{
		Change:   change,
		Snapshot: snapshot,
		Details:  details,
	})
	s.log.WithFields(logrus.Fields{
		"change":  change.String(),
		"index":   len(s.history) - 1,
		"details": details,
	}).Debug("history entry recorded")
}

func (s *State) notifyBoardLocked() {
	for _, l := range s.boardListeners {
		l.fn(s.board.Clone())
	}
}

func (s *State) notifyHistoryLocked() {
	if len(s.history) == 0 {
		return
	}
	last := s.history[len(s.history)-1]
	for _, l := range s.historyListeners {
		l.fn(last.Clone())
	}
}

func (s *State) saveLocked() error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.SaveBoard(context.Background(), s.board.Clone()); err != nil {
		s.log.WithError(err).Warn("save failed")
		return err
	}
	return nil
}

// endChangeLocked finishes an applied mutation. When updater is set the
// history notification joins the target's debounce window instead of firing now.
func (s *State) endChangeLocked(updateHistory bool, updater *debounce.Debouncer, target string) {
	if updateHistory {
		if updater != nil {
			updater.TryUpdate(s.locked(s.notifyHistoryLocked), "history:"+target)
		} else {
			s.notifyHistoryLocked()
		}
	}
	if s.board.Autosave {
		_ = s.saveLocked()
	}
	s.notifyBoardLocked()
}

func (s *State) declined(op string, fields logrus.Fields) {
	s.log.WithFields(fields).WithField("op", op).Debug("mutation declined")
}
