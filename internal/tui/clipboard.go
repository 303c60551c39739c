package tui

import (
	"strings"

	"github.com/atotto/clipboard"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func copyToClipboard(s string) error {
	return writeClipboard(strings.ReplaceAll(s, "\r\n", "\n"))
}

func (m *appModel) copySelectedTask() {
	_, t, ok := m.selectedTask()
	if !ok {
		return
	}
	if err := copyToClipboard(t.Text); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied task text"
}
