package format

import (
	"fmt"
	"io"
	"strings"

	"kanban-cli/internal/model"

	"github.com/fatih/color"
)

var (
	dim    = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	header = color.New(color.Bold, color.Underline).SprintFunc()
)

var columnColors = map[string]*color.Color{
	"white":  color.New(color.FgWhite, color.Bold),
	"red":    color.New(color.FgRed, color.Bold),
	"orange": color.New(color.FgHiRed, color.Bold),
	"yellow": color.New(color.FgYellow, color.Bold),
	"green":  color.New(color.FgGreen, color.Bold),
	"blue":   color.New(color.FgBlue, color.Bold),
	"purple": color.New(color.FgMagenta, color.Bold),
}

// ColumnColor returns the terminal color used for a column color name.
func ColumnColor(name string) *color.Color {
	if c, ok := columnColors[name]; ok {
		return c
	}
	return columnColors[model.DefaultColumnColor]
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func writeBoard(w io.Writer, b model.Board) error {
	title := b.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	if _, err := fmt.Fprintf(w, "%s  %s\n", header(title), dim(fmt.Sprintf("autosave: %s, save to file: %s", onOff(b.Autosave), onOff(b.SaveToFile)))); err != nil {
		return err
	}
	for _, c := range b.Columns {
		label := ColumnColor(c.Color).Sprint(c.Title)
		if _, err := fmt.Fprintf(w, "\n%s %s %s\n", label, dim("["+c.ID+"]"), dim(fmt.Sprintf("%d", len(c.Tasks)))); err != nil {
			return err
		}
		if len(c.Tasks) == 0 {
			if _, err := fmt.Fprintf(w, "  %s\n", dim("(empty)")); err != nil {
				return err
			}
			continue
		}
		for i, t := range c.Tasks {
			text := firstLine(t.Text)
			if text == "" {
				text = dim("(empty)")
			}
			if _, err := fmt.Fprintf(w, "  %2d  %s  %s\n", i, text, dim(t.ID)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHistory(w io.Writer, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, dim("(no history)"))
		return err
	}
	for i, e := range entries {
		line := fmt.Sprintf("%3d  %-16s", i, bold(e.Change.String()))
		if e.Details != "" {
			line += "  " + e.Details
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
