package tui

import (
	"fmt"
	"strings"

	"kanban-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	minColumnWidth = model.MaxColumnTitleLen + 6
	maxCardLines   = 4
	columnGap      = 1
)

func (m appModel) View() string {
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	board := m.viewBoard()
	if m.mode == modeHistory {
		board = lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", m.viewHistory())
	}
	b.WriteString(board)
	b.WriteString("\n\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m appModel) viewHeader() string {
	title := m.board.Title
	if m.mode == modeEditTitle {
		title = m.line.View()
	} else if strings.TrimSpace(title) == "" {
		title = styleMuted().Render("(untitled board)")
	} else {
		title = lipgloss.NewStyle().Bold(true).Render(title)
	}
	flags := fmt.Sprintf("autosave %s · save to file %s", onOff(m.board.Autosave), onOff(m.board.SaveToFile))
	if n := m.state.PendingEdits(); n > 0 {
		flags += fmt.Sprintf(" · %d pending", n)
	}
	return title + "  " + styleMuted().Render(flags)
}

func (m appModel) columnWidth() int {
	n := len(m.board.Columns)
	if n == 0 || m.width <= 0 {
		return minColumnWidth
	}
	w := (m.width - columnGap*(n-1)) / n
	if w < minColumnWidth {
		w = minColumnWidth
	}
	return w
}

func (m appModel) viewBoard() string {
	if len(m.board.Columns) == 0 {
		return styleMuted().Render("No columns. Press C to add one.")
	}
	colW := m.columnWidth()
	cols := make([]string, 0, len(m.board.Columns)*2)
	for i, c := range m.board.Columns {
		if i > 0 {
			cols = append(cols, strings.Repeat(" ", columnGap))
		}
		cols = append(cols, m.viewColumn(i, c, colW))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m appModel) viewColumn(ci int, c model.Column, width int) string {
	selectedCol := ci == m.col && m.mode != modeHistory

	title := c.Title
	if m.mode == modeEditColumn && c.ID == m.editColumnID {
		title = m.line.View()
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(columnColor(c.Color)).Render(title)
	count := styleMuted().Render(fmt.Sprintf("(%d)", len(c.Tasks)))
	marker := "  "
	if selectedCol {
		marker = "▸ "
	}
	lines := []string{xansi.Truncate(marker+header+" "+count, width, "…")}

	innerW := width - 4 // border + padding
	if innerW < 1 {
		innerW = 1
	}
	for ti, t := range c.Tasks {
		selected := selectedCol && ti == m.task
		lines = append(lines, m.viewCard(t, selected, innerW))
	}
	if len(c.Tasks) == 0 {
		lines = append(lines, styleMuted().Render("  (no tasks)"))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m appModel) viewCard(t model.Task, selected bool, innerW int) string {
	var body string
	switch {
	case m.mode == modeEditTask && t.ID == m.editTaskID:
		body = m.editor.View()
	case strings.TrimSpace(t.Text) == "":
		body = styleMuted().Render("(empty)")
	default:
		body = cardText(t.Text, innerW)
	}

	border := colorCardBorder
	if selected {
		border = colorSelectedBorder
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(innerW + 2).
		Render(body)
}

// cardText renders markdown and keeps at most maxCardLines lines of it.
func cardText(text string, width int) string {
	rendered := renderCardMarkdown(text, width)
	lines := strings.Split(rendered, "\n")
	out := make([]string, 0, maxCardLines)
	for _, ln := range lines {
		if strings.TrimSpace(xansi.Strip(ln)) == "" && len(out) == 0 {
			continue
		}
		out = append(out, xansi.Truncate(strings.TrimRight(ln, " "), width, "…"))
		if len(out) == maxCardLines {
			break
		}
	}
	if len(out) == maxCardLines && len(lines) > maxCardLines {
		out[maxCardLines-1] = xansi.Truncate(out[maxCardLines-1], width-1, "") + "…"
	}
	return strings.Join(out, "\n")
}

func (m appModel) viewHistory() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("History")
	lines := []string{title}
	if len(m.history) == 0 {
		lines = append(lines, styleMuted().Render("(no changes yet)"))
	}
	for i, e := range m.history {
		row := fmt.Sprintf("%3d %s", i+1, e.Change)
		if e.Details != "" {
			row += " " + e.Details
		}
		row = xansi.Truncate(row, 48, "…")
		if i == m.histCursor {
			row = lipgloss.NewStyle().Reverse(true).Render(row)
		}
		lines = append(lines, row)
	}
	lines = append(lines, "", styleMuted().Render("enter undo to here · esc back"))
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (m appModel) viewFooter() string {
	status := ""
	if m.status != "" {
		status = lipgloss.NewStyle().Foreground(colorStatus).Render(m.status) + "  "
	}
	switch m.mode {
	case modeEditTask:
		return status + styleMuted().Render("editing task · esc done · ctrl+g $EDITOR · ctrl+s save")
	case modeEditColumn, modeEditTitle:
		return status + styleMuted().Render("enter/esc done · ctrl+s save")
	case modeHistory:
		return status + styleMuted().Render("↑/↓ preview · enter undo · esc back")
	}
	return status + m.help.View(m.keys)
}
