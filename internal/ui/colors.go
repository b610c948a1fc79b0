package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is the stylesheet for the sync workflow views.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
}

var styles = Palette{
	title: NewBold("#7D56F4").MarginBottom(1),
	ok:    NewBold("#04B575"),
	err:   NewBold("#FF0000"),
	warn:  NewStyle("#FFA500"),
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}
