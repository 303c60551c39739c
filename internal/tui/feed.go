package tui

import (
	"sync"

	"kanban-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// boardFeed carries engine notifications into the program. Engine listeners run
// while the engine is locked, so they must never block on the event loop:
// they only replace the pending board and signal.
type boardFeed struct {
	mu      sync.Mutex
	board   *model.Board
	history bool
	signal  chan struct{}
	closed  bool
}

func newBoardFeed() *boardFeed {
	return &boardFeed{signal: make(chan struct{}, 1)}
}

func (f *boardFeed) publishBoard(b model.Board) {
	f.mu.Lock()
	f.board = &b
	f.mu.Unlock()
	f.poke()
}

func (f *boardFeed) publishHistory(model.HistoryEntry) {
	f.mu.Lock()
	f.history = true
	f.mu.Unlock()
	f.poke()
}

func (f *boardFeed) poke() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.signal <- struct{}{}:
	default:
	}
}

func (f *boardFeed) take() feedMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := feedMsg{board: f.board, history: f.history}
	f.board = nil
	f.history = false
	return msg
}

func (f *boardFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.signal)
	}
}

// feedMsg is what the engine changed since the last message.
type feedMsg struct {
	board   *model.Board
	history bool
}

type feedClosedMsg struct{}

func (f *boardFeed) wait() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-f.signal; !ok {
			return feedClosedMsg{}
		}
		return f.take()
	}
}
