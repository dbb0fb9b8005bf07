package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*ReasoningBlock)(nil)

// ToggleMsg asks a collapsible block to flip between collapsed and expanded.
// The root model sends it to the focused block on the toggle key.
type ToggleMsg struct{}

// ReasoningBlock renders the assistant's reasoning trace with a collapsible
// toggle. Reasoning updates replace the previous trace rather than append.
type ReasoningBlock struct {
	text      string
	collapsed bool
	styles    Styles
}

// NewReasoningBlock creates a ReasoningBlock that starts collapsed.
func NewReasoningBlock(styles Styles) *ReasoningBlock {
	return &ReasoningBlock{collapsed: true, styles: styles}
}

// SetText replaces the reasoning trace.
func (b *ReasoningBlock) SetText(text string) {
	b.text = text
}

func (b *ReasoningBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ReasoningBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	header := b.styles.Reasoning.Render(wrap.Render(indicator + " Reasoning"))
	if b.collapsed {
		return header
	}
	content := b.styles.Reasoning.Render(wrap.Render(b.text))
	return header + "\n" + content
}
