package model

import "fmt"

// ChangeKind identifies what kind of edit produced a history entry.
type ChangeKind int

const (
	// Board settings
	ChangeAutosave ChangeKind = iota
	ChangeSaveToFile
	ChangeBoardTitle

	// Columns
	ChangeColumnAdded
	ChangeColumnDeleted
	ChangeColumnTitle
	ChangeColumnColor
	ChangeColumnMoved

	// Tasks
	ChangeTaskAdded
	ChangeTaskDeleted
	ChangeTaskMoved
	ChangeTaskText

	// Whole board
	ChangeHistoryReversed
	ChangeBoardLoaded
)

var changeKindNames = [...]string{
	ChangeAutosave:        "autosave",
	ChangeSaveToFile:      "save-to-file",
	ChangeBoardTitle:      "board-title",
	ChangeColumnAdded:     "column-added",
	ChangeColumnDeleted:   "column-deleted",
	ChangeColumnTitle:     "column-title",
	ChangeColumnColor:     "column-color",
	ChangeColumnMoved:     "column-moved",
	ChangeTaskAdded:       "task-added",
	ChangeTaskDeleted:     "task-deleted",
	ChangeTaskMoved:       "task-moved",
	ChangeTaskText:        "task-text",
	ChangeHistoryReversed: "history-reversed",
	ChangeBoardLoaded:     "board-loaded",
}

func (k ChangeKind) String() string {
	if k < 0 || int(k) >= len(changeKindNames) {
		return fmt.Sprintf("change(%d)", int(k))
	}
	return changeKindNames[k]
}

func (k ChangeKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(changeKindNames) {
		return nil, fmt.Errorf("unknown change kind: %d", int(k))
	}
	return []byte(changeKindNames[k]), nil
}

func (k *ChangeKind) UnmarshalText(b []byte) error {
	parsed, err := ParseChangeKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func ParseChangeKind(s string) (ChangeKind, error) {
	for i, name := range changeKindNames {
		if name == s {
			return ChangeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown change kind: %q", s)
}
