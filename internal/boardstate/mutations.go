package boardstate

import (
	"fmt"

	"kanban-cli/internal/model"

	"github.com/sirupsen/logrus"
)

// ChangeAutosave sets the board's autosave flag. Settings are not undoable.
func (s *State) ChangeAutosave(autosave bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Autosave = autosave
	s.endChangeLocked(false, nil, "")
}

// ChangeSaveToFile sets whether the board is persisted to a file next to the
// workspace rather than to the workspace backend. Not undoable.
func (s *State) ChangeSaveToFile(saveToFile bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.SaveToFile = saveToFile
	s.endChangeLocked(false, nil, "")
}

// AddColumn appends a column titled "Column N" and returns its id.
func (s *State) AddColumn() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := model.NewColumn(fmt.Sprintf("Column %d", len(s.board.Columns)+1))
	s.pushLocked(model.ChangeColumnAdded, s.board.Clone(), fmt.Sprintf("Added %q", col.Title))
	s.board.Columns = append(s.board.Columns, col)
	s.endChangeLocked(true, nil, "")
	return col.ID
}

func (s *State) RemoveColumn(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.board.ColumnIndex(id)
	if idx < 0 {
		s.declined("remove-column", logrus.Fields{"column": id})
		return false
	}

	s.pushLocked(model.ChangeColumnDeleted, s.board.Clone(), fmt.Sprintf("Deleted %q", s.board.Columns[idx].Title))
	s.board.Columns = append(s.board.Columns[:idx], s.board.Columns[idx+1:]...)
	s.endChangeLocked(true, nil, "")
	return true
}

func (s *State) ChangeColumnColor(id, color string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.board.ColumnIndex(id)
	if idx < 0 {
		s.declined("change-column-color", logrus.Fields{"column": id})
		return false
	}
	col := &s.board.Columns[idx]
	if col.Color == color {
		return false
	}

	s.pushLocked(model.ChangeColumnColor, s.board.Clone(), fmt.Sprintf("%q color changed", col.Title))
	col.Color = color
	s.endChangeLocked(true, nil, "")
	return true
}

// MoveColumn moves the column with id to toIndex, shifting the others.
func (s *State) MoveColumn(id string, toIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveColumnLocked(id, toIndex)
}

func (s *State) moveColumnLocked(id string, toIndex int) bool {
	if toIndex < 0 || toIndex >= len(s.board.Columns) {
		s.declined("move-column", logrus.Fields{"column": id, "to": toIndex})
		return false
	}
	idx := s.board.ColumnIndex(id)
	if idx < 0 {
		s.declined("move-column", logrus.Fields{"column": id, "to": toIndex})
		return false
	}

	s.pushLocked(model.ChangeColumnMoved, s.board.Clone(), fmt.Sprintf("%q moved", s.board.Columns[idx].Title))
	s.board.Columns = moveWithin(s.board.Columns, idx, toIndex)
	s.endChangeLocked(true, nil, "")
	return true
}

// AddTask puts a new empty task at the front of the column and returns its id.
// Empty tasks are cheap to delete again, so this is not recorded in history.
func (s *State) AddTask(columnID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.board.ColumnIndex(columnID)
	if idx < 0 {
		s.declined("add-task", logrus.Fields{"column": columnID})
		return "", false
	}

	task := model.NewTask()
	col := &s.board.Columns[idx]
	col.Tasks = append([]model.Task{task}, col.Tasks...)
	s.endChangeLocked(false, nil, "")
	return task.ID, true
}

// RemoveTask deletes a task. Only tasks with content produce a history entry.
func (s *State) RemoveTask(columnID, taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.board.ColumnIndex(columnID)
	if idx < 0 {
		s.declined("remove-task", logrus.Fields{"column": columnID, "task": taskID})
		return false
	}
	col := &s.board.Columns[idx]
	taskIdx := col.TaskIndex(taskID)
	if taskIdx < 0 {
		s.declined("remove-task", logrus.Fields{"column": columnID, "task": taskID})
		return false
	}

	task := col.Tasks[taskIdx]
	recorded := task.Text != ""
	if recorded {
		s.pushLocked(model.ChangeTaskDeleted, s.board.Clone(), fmt.Sprintf("%q removed from %q", task.Text, col.Title))
	}
	col.Tasks = append(col.Tasks[:taskIdx], col.Tasks[taskIdx+1:]...)
	s.endChangeLocked(recorded, nil, "")
	return true
}

// MoveTask moves the task at sourceIndex of sourceCol to destIndex of destCol.
// sourceCol may equal destCol. destIndex is interpreted after the task has been
// removed from its source, so within one column the largest valid destIndex is
// len-1, while across columns it is len (append).
//
// Card moves are never recorded: a drag produces many intermediate drops.
func (s *State) MoveTask(sourceCol, destCol string, sourceIndex, destIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := logrus.Fields{"from": sourceCol, "to": destCol, "fromIndex": sourceIndex, "toIndex": destIndex}
	srcIdx := s.board.ColumnIndex(sourceCol)
	dstIdx := s.board.ColumnIndex(destCol)
	if srcIdx < 0 || dstIdx < 0 {
		s.declined("move-task", fields)
		return false
	}

	numSource := len(s.board.Columns[srcIdx].Tasks)
	numDest := len(s.board.Columns[dstIdx].Tasks)
	destTooBig := destIndex > numDest
	if srcIdx == dstIdx {
		destTooBig = destIndex >= numDest
	}
	if sourceIndex < 0 || sourceIndex >= numSource || destIndex < 0 || destTooBig {
		s.declined("move-task", fields)
		return false
	}

	if srcIdx == dstIdx {
		col := &s.board.Columns[srcIdx]
		col.Tasks = moveWithin(col.Tasks, sourceIndex, destIndex)
	} else {
		src := &s.board.Columns[srcIdx]
		task := src.Tasks[sourceIndex]
		src.Tasks = append(src.Tasks[:sourceIndex], src.Tasks[sourceIndex+1:]...)

		dst := &s.board.Columns[dstIdx]
		dst.Tasks = insertAt(dst.Tasks, destIndex, task)
	}
	s.endChangeLocked(false, nil, "")
	return true
}

// UndoChange rolls the board back to history[index]. The rollback is itself
// recorded, so it can be undone too.
func (s *State) UndoChange(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.history) {
		s.declined("undo", logrus.Fields{"index": index, "historyLen": len(s.history)})
		return false
	}

	s.pushLocked(model.ChangeHistoryReversed, s.board.Clone(), fmt.Sprintf("Changes reversed to item %d", index+1))
	s.board = s.history[index].Snapshot.Clone()
	s.endChangeLocked(true, nil, "")
	return true
}

// Save persists the current board. Given a board, it first replaces the current
// one with it (recorded as a load, so the previous board can be restored).
func (s *State) Save(b *model.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b != nil {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("load board: %w", err)
		}
		s.pushLocked(model.ChangeBoardLoaded, s.board.Clone(), "")
		s.board = b.Clone()
		s.notifyHistoryLocked()
		s.notifyBoardLocked()
	}
	return s.saveLocked()
}

// Load is the entry point for boards pushed by the persistence layer (startup,
// external file change). It behaves like Save(&b).
func (s *State) Load(b model.Board) {
	if err := s.Save(&b); err != nil {
		s.log.WithError(err).Warn("load failed")
	}
}

// moveWithin removes the element at from and reinserts it at to, where to is an
// index into the slice after removal.
func moveWithin[T any](xs []T, from, to int) []T {
	if from == to {
		return xs
	}
	v := xs[from]
	xs = append(xs[:from], xs[from+1:]...)
	return insertAt(xs, to, v)
}

func insertAt[T any](xs []T, at int, v T) []T {
	var zero T
	xs = append(xs, zero)
	copy(xs[at+1:], xs[at:])
	xs[at] = v
	return xs
}
