package tui

import (
	"kanban-cli/internal/boardstate"
	"kanban-cli/internal/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type mode int

const (
	modeBoard mode = iota
	modeEditTask
	modeEditColumn
	modeEditTitle
	modeHistory
)

type appModel struct {
	state *boardstate.State
	feed  *boardFeed

	keys keyMap
	help help.Model

	board   model.Board
	history []model.HistoryEntry

	width  int
	height int

	mode mode
	col  int
	task int

	editTaskID   string
	editColumnID string
	editor       textarea.Model
	line         textinput.Model

	histCursor int
	status     string

	externalEditorPath   string
	externalEditorBefore string
	externalEditorTaskID string
}

func newAppModel(state *boardstate.State, feed *boardFeed) appModel {
	ed := textarea.New()
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.Placeholder = "Task text (markdown)"
	ed.SetHeight(4)

	ln := textinput.New()
	ln.Prompt = "> "

	m := appModel{
		state:  state,
		feed:   feed,
		keys:   defaultKeyMap(),
		help:   help.New(),
		editor: ed,
		line:   ln,
	}
	m.sync()
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return m.feed.wait()
}

// sync pulls the live board (and history, when shown) from the engine.
func (m *appModel) sync() {
	m.board = m.state.Current()
	if m.mode == modeHistory {
		m.history = m.state.History()
	}
	m.clampSelection()
}

func (m *appModel) clampSelection() {
	if m.col >= len(m.board.Columns) {
		m.col = len(m.board.Columns) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	if c, ok := m.selectedColumn(); ok {
		if m.task >= len(c.Tasks) {
			m.task = len(c.Tasks) - 1
		}
	}
	if m.task < 0 {
		m.task = 0
	}
}

func (m appModel) selectedColumn() (model.Column, bool) {
	if m.col < 0 || m.col >= len(m.board.Columns) {
		return model.Column{}, false
	}
	return m.board.Columns[m.col], true
}

func (m appModel) selectedTask() (model.Column, model.Task, bool) {
	c, ok := m.selectedColumn()
	if !ok || m.task < 0 || m.task >= len(c.Tasks) {
		return model.Column{}, model.Task{}, false
	}
	return c, c.Tasks[m.task], true
}

// selectTask points the selection at taskID wherever it is now.
func (m *appModel) selectTask(taskID string) {
	for ci, c := range m.board.Columns {
		if ti := c.TaskIndex(taskID); ti >= 0 {
			m.col, m.task = ci, ti
			return
		}
	}
}

func (m *appModel) selectColumn(columnID string) {
	if i := m.board.ColumnIndex(columnID); i >= 0 {
		m.col = i
		m.task = 0
	}
}
