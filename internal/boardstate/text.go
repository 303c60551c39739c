package boardstate

import (
	"fmt"

	"kanban-cli/internal/model"

	"github.com/sirupsen/logrus"
)

const boardTarget = "board"

func columnTarget(id string) string { return "column:" + id }

func taskTarget(id string) string { return "task:" + id }

// rememberPreviousLocked returns the value target had when its current burst
// began, recording current as that value if no burst is open.
func (s *State) rememberPreviousLocked(target, current string) string {
	old, ok := s.previousText[target]
	if !ok {
		old = current
		s.previousText[target] = old
	}
	return old
}

// ChangeBoardTitle sets the board title. The history entry is recorded once the
// title has been left alone for the title window.
func (s *State) ChangeBoardTitle(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.rememberPreviousLocked(boardTarget, s.board.Title)
	s.boardText.TryUpdate(s.locked(func() {
		snap := s.board.Clone()
		snap.Title = old
		s.pushLocked(model.ChangeBoardTitle, snap, fmt.Sprintf("From %q to %q", old, title))
		delete(s.previousText, boardTarget)
	}), "history-push:"+boardTarget)

	s.board.Title = title
	s.endChangeLocked(true, s.boardText, boardTarget)
	return true
}

// ChangeColumnTitle renames a column, coalescing a burst of renames into one
// history entry.
func (s *State) ChangeColumnTitle(id, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.board.ColumnIndex(id)
	if idx < 0 {
		s.declined("change-column-title", logrus.Fields{"column": id})
		return false
	}
	title = model.ClampColumnTitle(title)
	target := columnTarget(id)

	old := s.rememberPreviousLocked(target, s.board.Columns[idx].Title)
	s.columnText.TryUpdate(s.locked(func() {
		snap := s.board.Clone()
		if col, ok := snap.FindColumn(id); ok {
			col.Title = old
		}
		s.pushLocked(model.ChangeColumnTitle, snap, fmt.Sprintf("From %q to %q", old, title))
		delete(s.previousText, target)
	}), "history-push:"+target)

	s.board.Columns[idx].Title = title
	s.endChangeLocked(true, s.columnText, target)
	return true
}

// ChangeTaskText sets a task's text, coalescing a burst of keystrokes into one
// history entry whose snapshot holds the text from before the burst.
func (s *State) ChangeTaskText(columnID, taskID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	colIdx := s.board.ColumnIndex(columnID)
	if colIdx < 0 {
		s.declined("change-task-text", logrus.Fields{"column": columnID, "task": taskID})
		return false
	}
	taskIdx := s.board.Columns[colIdx].TaskIndex(taskID)
	if taskIdx < 0 {
		s.declined("change-task-text", logrus.Fields{"column": columnID, "task": taskID})
		return false
	}
	target := taskTarget(taskID)

	old := s.rememberPreviousLocked(target, s.board.Columns[colIdx].Tasks[taskIdx].Text)
	s.taskText.TryUpdate(s.locked(func() {
		// The task may have been dragged to another column while the window was open.
		snap := s.board.Clone()
		if ci, ti, ok := findTask(snap, taskID); ok {
			snap.Columns[ci].Tasks[ti].Text = old
		}
		s.pushLocked(model.ChangeTaskText, snap, fmt.Sprintf("%q changed to %q", old, text))
		delete(s.previousText, target)
	}), "history-push:"+target)

	s.board.Columns[colIdx].Tasks[taskIdx].Text = text
	s.endChangeLocked(true, s.taskText, target)
	return true
}

func findTask(b model.Board, taskID string) (int, int, bool) {
	for ci := range b.Columns {
		if ti := b.Columns[ci].TaskIndex(taskID); ti >= 0 {
			return ci, ti, true
		}
	}
	return 0, 0, false
}
