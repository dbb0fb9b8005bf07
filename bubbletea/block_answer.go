package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*AnswerBlock)(nil)

// AnswerBlock renders the assistant's answer. While the turn is streaming
// the accumulated text is shown as plain wrapped text so every delta is
// cheap to display; when the turn finishes the full answer is rendered as
// markdown and cached per width.
type AnswerBlock struct {
	text    string
	done    bool
	byWidth map[int]string
}

// NewAnswerBlock creates a new block for a streaming answer.
func NewAnswerBlock() *AnswerBlock {
	return &AnswerBlock{byWidth: make(map[int]string)}
}

// SetText replaces the accumulated answer text. Snapshots carry the full
// text so far, not deltas.
func (b *AnswerBlock) SetText(text string) {
	if text == b.text {
		return
	}
	b.text = text
	clear(b.byWidth)
}

// Finish marks the answer complete, switching the view to markdown.
func (b *AnswerBlock) Finish() {
	b.done = true
	clear(b.byWidth)
}

func (b *AnswerBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AnswerBlock) View(width int) string {
	if b.text == "" {
		return ""
	}
	if !b.done {
		return lipgloss.NewStyle().Width(width).Render(b.text)
	}
	if cached, ok := b.byWidth[width]; ok {
		return cached
	}
	rendered := renderMarkdown(b.text, width)
	b.byWidth[width] = rendered
	return rendered
}
