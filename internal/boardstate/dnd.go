package boardstate

import "github.com/sirupsen/logrus"

// Location is a position in a column's task list (or, for column drags, in the
// board's column list, with ColumnID unused).
type Location struct {
	ColumnID string
	Index    int
}

// DropResult is what a drag gesture ends with. Destination is nil when the item
// was dropped outside any list.
type DropResult struct {
	Source      Location
	Destination *Location
}

// DragTask applies a card drop. Dropping a card where it started is a no-op.
func (s *State) DragTask(res DropResult) bool {
	if res.Destination == nil {
		return false
	}
	src, dst := res.Source, *res.Destination
	if src.ColumnID == dst.ColumnID && src.Index == dst.Index {
		return false
	}
	return s.MoveTask(src.ColumnID, dst.ColumnID, src.Index, dst.Index)
}

// DragColumn applies a column drop; Index fields address the column list. A
// drop whose source slot no longer holds columnID is stale and declined.
func (s *State) DragColumn(columnID string, res DropResult) bool {
	if res.Destination == nil || res.Source.Index == res.Destination.Index {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src := res.Source.Index
	if src < 0 || src >= len(s.board.Columns) || s.board.Columns[src].ID != columnID {
		s.declined("drag-column", logrus.Fields{"column": columnID, "from": src, "to": res.Destination.Index})
		return false
	}
	return s.moveColumnLocked(columnID, res.Destination.Index)
}
