package tui

import (
	"kanban-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted          lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBorder lipgloss.TerminalColor = ac("232", "255")
	colorCardBorder     lipgloss.TerminalColor = ac("250", "243")
	colorAccent         lipgloss.TerminalColor = ac("27", "62")
	colorStatus         lipgloss.TerminalColor = ac("28", "78")
)

// Column color names map to ANSI palette entries readable on both backgrounds.
var columnPalette = map[string]lipgloss.TerminalColor{
	"white":  ac("235", "255"),
	"red":    ac("160", "203"),
	"orange": ac("166", "215"),
	"yellow": ac("136", "227"),
	"green":  ac("28", "114"),
	"blue":   ac("26", "75"),
	"purple": ac("91", "177"),
}

func columnColor(name string) lipgloss.TerminalColor {
	if c, ok := columnPalette[name]; ok {
		return c
	}
	return columnPalette[model.DefaultColumnColor]
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}
