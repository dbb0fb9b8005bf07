package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock records a failed turn in the transcript. The failure stays
// visible so the user can see which question never got an answer and retry
// it.
type ErrorBlock struct {
	msg    string
	styles Styles
}

// NewErrorBlock creates an ErrorBlock from the turn's error.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{msg: err.Error(), styles: styles}
}

func (b *ErrorBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	line := b.styles.Error.Render("✗ Error: " + b.msg)
	return lipgloss.NewStyle().Width(width).Render(line)
}
