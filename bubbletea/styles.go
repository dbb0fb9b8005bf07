package bubbletea

import (
	"strconv"

	"github.com/ateneo-app/ateneo"
	"github.com/charmbracelet/lipgloss"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Question  lipgloss.Style
	Reasoning lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t ateneo.Theme) Styles {
	return Styles{
		Question:  lipgloss.NewStyle().Foreground(ansiColor(t.Question)).Bold(true),
		Reasoning: lipgloss.NewStyle().Foreground(ansiColor(t.Reasoning)).Faint(true),
		Error:     lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:   lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:     lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:    lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
