package model

import (
	"fmt"
	"strings"
)

// MaxColumnTitleLen bounds column titles (in runes). Longer titles are truncated by the engine.
const MaxColumnTitleLen = 18

type Board struct {
	Title      string   `json:"title"`
	Autosave   bool     `json:"autosave"`
	SaveToFile bool     `json:"saveToFile"`
	Columns    []Column `json:"cols"`
}

type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
	Tasks []Task `json:"tasks"`
}

type Task struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// HistoryEntry is one undoable step. Snapshot is the board as it was immediately
// before the change described by Change/Details.
type HistoryEntry struct {
	Change   ChangeKind `json:"change"`
	Snapshot Board      `json:"data"`
	Details  string     `json:"details"`
}

// NewBoard returns a default board: untitled, autosave on, one empty column.
func NewBoard() Board {
	return Board{
		Title:    "",
		Autosave: true,
		Columns:  []Column{NewColumn("Column 1")},
	}
}

func NewColumn(title string) Column {
	return Column{
		ID:    NewColumnID(),
		Title: ClampColumnTitle(title),
		Color: DefaultColumnColor,
		Tasks: []Task{},
	}
}

func NewTask() Task {
	return Task{ID: NewTaskID()}
}

// ClampColumnTitle truncates title to MaxColumnTitleLen runes.
func ClampColumnTitle(title string) string {
	r := []rune(title)
	if len(r) <= MaxColumnTitleLen {
		return title
	}
	return string(r[:MaxColumnTitleLen])
}

// Clone returns a structurally independent copy of b.
func (b Board) Clone() Board {
	out := b
	if b.Columns != nil {
		out.Columns = make([]Column, len(b.Columns))
		for i := range b.Columns {
			out.Columns[i] = b.Columns[i].Clone()
		}
	}
	return out
}

func (c Column) Clone() Column {
	out := c
	if c.Tasks != nil {
		// Keep empty lists non-nil so they stay "tasks": [] on the wire.
		out.Tasks = make([]Task, len(c.Tasks))
		copy(out.Tasks, c.Tasks)
	}
	return out
}

func (h HistoryEntry) Clone() HistoryEntry {
	h.Snapshot = h.Snapshot.Clone()
	return h
}

// ColumnIndex returns the index of the column with id, or -1.
func (b Board) ColumnIndex(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return i
		}
	}
	return -1
}

// TaskIndex returns the index of the task with id, or -1.
func (c Column) TaskIndex(id string) int {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// FindColumn returns a pointer into b.Columns.
func (b *Board) FindColumn(id string) (*Column, bool) {
	idx := b.ColumnIndex(id)
	if idx < 0 {
		return nil, false
	}
	return &b.Columns[idx], true
}

type DuplicateIDError struct {
	Kind string
	ID   string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id: %s", e.Kind, e.ID)
}

// Validate reports id collisions: column ids must be unique within the board and
// task ids unique within their column.
func (b Board) Validate() error {
	cols := make(map[string]bool, len(b.Columns))
	for _, c := range b.Columns {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("column %q has an empty id", c.Title)
		}
		if cols[c.ID] {
			return DuplicateIDError{Kind: "column", ID: c.ID}
		}
		cols[c.ID] = true

		tasks := make(map[string]bool, len(c.Tasks))
		for _, t := range c.Tasks {
			if strings.TrimSpace(t.ID) == "" {
				return fmt.Errorf("task in column %s has an empty id", c.ID)
			}
			if tasks[t.ID] {
				return DuplicateIDError{Kind: "task", ID: t.ID}
			}
			tasks[t.ID] = true
		}
	}
	return nil
}
