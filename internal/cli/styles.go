package cli

import (
	"charm.land/lipgloss/v2"
)

// Styles holds the terminal styles of diagnostic output.
type Styles struct {
	Title   lipgloss.Style
	Group   lipgloss.Style
	Error   lipgloss.Style
	Break   lipgloss.Style
	NoBreak lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns the default diagnostic styles.
func NewStyles() *Styles {
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Group:   lipgloss.NewStyle().Bold(true).PaddingLeft(2),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).PaddingLeft(4),
		Break:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		NoBreak: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Muted:   lipgloss.NewStyle().Faint(true),
	}
}
