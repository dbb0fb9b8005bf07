package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// MessageBlock is one entry in the transcript: a question, an answer, a
// reasoning trace, or a failure. Rendering takes an explicit width instead of
// implementing tea.Model in full, so the root model owns layout and each
// block stays testable on its own.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}
