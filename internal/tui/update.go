package tui

import (
	"fmt"

	"kanban-cli/internal/boardstate"
	"kanban-cli/internal/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(m.columnWidth() - 4)
		m.help.Width = msg.Width
		return m, nil

	case feedMsg:
		if msg.board != nil {
			m.board = *msg.board
			m.clampSelection()
		}
		if msg.history && m.mode == modeHistory {
			m.history = m.state.History()
		}
		return m, m.feed.wait()

	case feedClosedMsg:
		return m, nil

	case externalEditorDoneMsg:
		m.applyExternalEditorResult(msg)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEditTask:
			return m.updateEditTask(msg)
		case modeEditColumn, modeEditTitle:
			return m.updateEditLine(msg)
		case modeHistory:
			return m.updateHistory(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m appModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
			m.task = 0
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < len(m.board.Columns)-1 {
			m.col++
			m.task = 0
		}
	case key.Matches(msg, m.keys.Up):
		if m.task > 0 {
			m.task--
		}
	case key.Matches(msg, m.keys.Down):
		if c, ok := m.selectedColumn(); ok && m.task < len(c.Tasks)-1 {
			m.task++
		}

	case key.Matches(msg, m.keys.NewTask):
		c, ok := m.selectedColumn()
		if !ok {
			return m, nil
		}
		id, ok := m.state.AddTask(c.ID)
		if !ok {
			return m, nil
		}
		m.sync()
		m.selectTask(id)
		return m.startTaskEdit()

	case key.Matches(msg, m.keys.EditTask):
		return m.startTaskEdit()
	case key.Matches(msg, m.keys.ExternalEdit):
		return m.startExternalEdit()
	case key.Matches(msg, m.keys.CopyTask):
		m.copySelectedTask()

	case key.Matches(msg, m.keys.DeleteTask):
		if c, t, ok := m.selectedTask(); ok {
			m.state.RemoveTask(c.ID, t.ID)
			m.sync()
		}

	case key.Matches(msg, m.keys.TaskLeft):
		m.moveTaskAcross(-1)
	case key.Matches(msg, m.keys.TaskRight):
		m.moveTaskAcross(1)
	case key.Matches(msg, m.keys.TaskUp):
		m.moveTaskWithin(-1)
	case key.Matches(msg, m.keys.TaskDown):
		m.moveTaskWithin(1)

	case key.Matches(msg, m.keys.NewColumn):
		id := m.state.AddColumn()
		m.sync()
		m.selectColumn(id)
		return m.startColumnEdit()
	case key.Matches(msg, m.keys.RenameColumn):
		return m.startColumnEdit()
	case key.Matches(msg, m.keys.ColorColumn):
		if c, ok := m.selectedColumn(); ok {
			m.state.ChangeColumnColor(c.ID, model.NextColor(c.Color))
			m.sync()
		}
	case key.Matches(msg, m.keys.DeleteColumn):
		if c, ok := m.selectedColumn(); ok {
			m.state.RemoveColumn(c.ID)
			m.sync()
		}
	case key.Matches(msg, m.keys.ColumnLeft):
		m.moveColumn(-1)
	case key.Matches(msg, m.keys.ColumnRight):
		m.moveColumn(1)

	case key.Matches(msg, m.keys.EditTitle):
		return m.startTitleEdit()
	case key.Matches(msg, m.keys.History):
		m.mode = modeHistory
		m.history = m.state.History()
		m.histCursor = len(m.history) - 1
		m.previewHistory()

	case key.Matches(msg, m.keys.Autosave):
		m.state.ChangeAutosave(!m.board.Autosave)
		m.sync()
		m.status = "autosave " + onOff(m.board.Autosave)
	case key.Matches(msg, m.keys.SaveFile):
		m.state.ChangeSaveToFile(!m.board.SaveToFile)
		m.sync()
		m.status = "save to file " + onOff(m.board.SaveToFile)
	case key.Matches(msg, m.keys.Save):
		m.save()
	}
	return m, nil
}

func (m *appModel) save() {
	m.state.Flush()
	if err := m.state.Save(nil); err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.sync()
	m.status = "saved"
}

func (m *appModel) moveTaskAcross(delta int) {
	src, t, ok := m.selectedTask()
	if !ok {
		return
	}
	to := m.col + delta
	if to < 0 || to >= len(m.board.Columns) {
		return
	}
	dst := m.board.Columns[to]
	idx := m.task
	if idx > len(dst.Tasks) {
		idx = len(dst.Tasks)
	}
	m.state.DragTask(boardstate.DropResult{
		Source:      boardstate.Location{ColumnID: src.ID, Index: m.task},
		Destination: &boardstate.Location{ColumnID: dst.ID, Index: idx},
	})
	m.sync()
	m.selectTask(t.ID)
}

func (m *appModel) moveTaskWithin(delta int) {
	c, t, ok := m.selectedTask()
	if !ok {
		return
	}
	to := m.task + delta
	if to < 0 || to >= len(c.Tasks) {
		return
	}
	m.state.DragTask(boardstate.DropResult{
		Source:      boardstate.Location{ColumnID: c.ID, Index: m.task},
		Destination: &boardstate.Location{ColumnID: c.ID, Index: to},
	})
	m.sync()
	m.selectTask(t.ID)
}

func (m *appModel) moveColumn(delta int) {
	c, ok := m.selectedColumn()
	if !ok {
		return
	}
	to := m.col + delta
	if to < 0 || to >= len(m.board.Columns) {
		return
	}
	m.state.DragColumn(c.ID, boardstate.DropResult{
		Source:      boardstate.Location{Index: m.col},
		Destination: &boardstate.Location{Index: to},
	})
	m.sync()
	m.selectColumn(c.ID)
}

func (m appModel) startTaskEdit() (tea.Model, tea.Cmd) {
	_, t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	m.mode = modeEditTask
	m.editTaskID = t.ID
	m.editor.SetValue(t.Text)
	m.editor.SetWidth(m.columnWidth() - 4)
	cmd := m.editor.Focus()
	return m, cmd
}

func (m appModel) startExternalEdit() (tea.Model, tea.Cmd) {
	cmd, err := m.openExternalEditor()
	if err != nil {
		m.status = "editor failed: " + err.Error()
		return m, nil
	}
	return m, cmd
}

func (m appModel) startColumnEdit() (tea.Model, tea.Cmd) {
	c, ok := m.selectedColumn()
	if !ok {
		return m, nil
	}
	m.mode = modeEditColumn
	m.editColumnID = c.ID
	m.line.CharLimit = model.MaxColumnTitleLen
	m.line.Placeholder = "Column title"
	m.line.SetValue(c.Title)
	m.line.CursorEnd()
	cmd := m.line.Focus()
	return m, cmd
}

func (m appModel) startTitleEdit() (tea.Model, tea.Cmd) {
	m.mode = modeEditTitle
	m.line.CharLimit = 0
	m.line.Placeholder = "Board title"
	m.line.SetValue(m.board.Title)
	m.line.CursorEnd()
	cmd := m.line.Focus()
	return m, cmd
}

func (m appModel) finishEdit() appModel {
	m.mode = modeBoard
	m.editor.Blur()
	m.line.Blur()
	m.editTaskID = ""
	m.editColumnID = ""
	m.sync()
	return m
}

// updateEditTask forwards keys to the editor; every change to its value is sent
// to the engine, which folds the keystrokes into one history entry.
func (m appModel) updateEditTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Done):
		return m.finishEdit(), nil
	case key.Matches(msg, m.keys.Save):
		m.save()
		return m, nil
	case msg.Type == tea.KeyCtrlG:
		return m.startExternalEdit()
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		for _, c := range m.board.Columns {
			if c.TaskIndex(m.editTaskID) >= 0 {
				m.state.ChangeTaskText(c.ID, m.editTaskID, after)
				break
			}
		}
		m.sync()
		m.selectTask(m.editTaskID)
	}
	return m, cmd
}

func (m appModel) updateEditLine(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Done), msg.Type == tea.KeyEnter:
		return m.finishEdit(), nil
	case key.Matches(msg, m.keys.Save):
		m.save()
		return m, nil
	}

	before := m.line.Value()
	var cmd tea.Cmd
	m.line, cmd = m.line.Update(msg)
	if after := m.line.Value(); after != before {
		if m.mode == modeEditColumn {
			m.state.ChangeColumnTitle(m.editColumnID, after)
		} else {
			m.state.ChangeBoardTitle(after)
		}
		m.sync()
	}
	return m, cmd
}

func (m appModel) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Done), key.Matches(msg, m.keys.History):
		m.mode = modeBoard
		m.state.Refresh()
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.histCursor > 0 {
			m.histCursor--
			m.previewHistory()
		}
	case key.Matches(msg, m.keys.Down):
		if m.histCursor < len(m.history)-1 {
			m.histCursor++
			m.previewHistory()
		}
	case msg.Type == tea.KeyEnter:
		if m.histCursor >= 0 && m.histCursor < len(m.history) {
			target := m.histCursor
			m.mode = modeBoard
			if m.state.UndoChange(target) {
				m.status = fmt.Sprintf("restored history item %d", target+1)
			}
			m.sync()
		}
	}
	return m, nil
}

// previewHistory shows the selected entry's snapshot without changing the board.
func (m *appModel) previewHistory() {
	if m.histCursor < 0 || m.histCursor >= len(m.history) {
		return
	}
	snap := m.history[m.histCursor].Snapshot
	m.state.Preview(snap)
	m.board = snap.Clone()
	m.clampSelection()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
