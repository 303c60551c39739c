package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left, Right, Up, Down key.Binding

	NewTask      key.Binding
	EditTask     key.Binding
	ExternalEdit key.Binding
	CopyTask     key.Binding
	DeleteTask   key.Binding

	TaskLeft, TaskRight, TaskUp, TaskDown key.Binding

	NewColumn    key.Binding
	RenameColumn key.Binding
	ColorColumn  key.Binding
	DeleteColumn key.Binding
	ColumnLeft   key.Binding
	ColumnRight  key.Binding

	EditTitle key.Binding
	History   key.Binding
	Autosave  key.Binding
	SaveFile  key.Binding
	Save      key.Binding

	Done key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "task")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "task")),

		NewTask:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		EditTask:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		ExternalEdit: key.NewBinding(key.WithKeys("E", "ctrl+g"), key.WithHelp("E", "edit in $EDITOR")),
		CopyTask:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
		DeleteTask:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete task")),

		TaskLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "move task ←")),
		TaskRight: key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "move task →")),
		TaskUp:    key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move task ↑")),
		TaskDown:  key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move task ↓")),

		NewColumn:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "new column")),
		RenameColumn: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename column")),
		ColorColumn:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "color")),
		DeleteColumn: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete column")),
		ColumnLeft:   key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "column ←")),
		ColumnRight:  key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "column →")),

		EditTitle: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "title")),
		History:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "history")),
		Autosave:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "autosave")),
		SaveFile:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "save to file")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),

		Done: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewTask, k.EditTask, k.TaskRight, k.NewColumn, k.History, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.NewTask, k.EditTask, k.ExternalEdit, k.CopyTask, k.DeleteTask, k.TaskLeft, k.TaskRight, k.TaskUp, k.TaskDown},
		{k.NewColumn, k.RenameColumn, k.ColorColumn, k.DeleteColumn, k.ColumnLeft, k.ColumnRight},
		{k.EditTitle, k.History, k.Autosave, k.SaveFile, k.Save, k.Quit},
	}
}
