package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type externalEditorDoneMsg struct {
	err error
}

func externalEditorName() string {
	if v := strings.TrimSpace(os.Getenv("VISUAL")); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("EDITOR")); v != "" {
		return v
	}
	return "vi"
}

// editorCommand builds the editor invocation for path.
func editorCommand(path string) *exec.Cmd {
	args := splitShellWords(externalEditorName())
	if len(args) == 0 || args[0] == "" {
		args = []string{"vi"}
	}
	return exec.Command(args[0], append(args[1:], path)...)
}

// openExternalEditor hands the selected task's text to $VISUAL/$EDITOR. The
// program is suspended until the editor exits.
func (m *appModel) openExternalEditor() (tea.Cmd, error) {
	_, t, ok := m.selectedTask()
	if !ok {
		return nil, nil
	}
	text := t.Text
	if m.mode == modeEditTask && m.editTaskID == t.ID {
		text = m.editor.Value()
	}

	f, err := os.CreateTemp("", "kanban-task-*.md")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	_ = f.Close()

	m.externalEditorPath = path
	m.externalEditorBefore = text
	m.externalEditorTaskID = t.ID

	return tea.ExecProcess(editorCommand(path), func(err error) tea.Msg {
		return externalEditorDoneMsg{err: err}
	}), nil
}

// applyExternalEditorResult sends the edited text to the engine as one task
// text change and removes the temp file.
func (m *appModel) applyExternalEditorResult(msg externalEditorDoneMsg) {
	path := m.externalEditorPath
	before := m.externalEditorBefore
	taskID := m.externalEditorTaskID

	m.externalEditorPath = ""
	m.externalEditorBefore = ""
	m.externalEditorTaskID = ""

	if strings.TrimSpace(path) == "" {
		return
	}
	defer func() { _ = os.Remove(path) }()

	if msg.err != nil {
		m.status = "editor failed: " + msg.err.Error()
		return
	}
	b, err := os.ReadFile(path)
	if err != nil {
		m.status = "editor read failed: " + err.Error()
		return
	}

	// Editors usually append a final newline; it is not part of the task.
	after := strings.TrimSuffix(string(b), "\n")
	if after == before {
		m.status = fmt.Sprintf("no changes from %s", externalEditorName())
		return
	}

	var columnID string
	for _, c := range m.board.Columns {
		if c.TaskIndex(taskID) >= 0 {
			columnID = c.ID
			break
		}
	}
	if columnID == "" {
		m.status = "task was removed while editing"
		return
	}
	m.state.ChangeTaskText(columnID, taskID, after)
	m.sync()
	m.selectTask(taskID)
	if m.mode == modeEditTask && m.editTaskID == taskID {
		m.editor.SetValue(after)
	}
	m.status = fmt.Sprintf("updated from %s", externalEditorName())
}
