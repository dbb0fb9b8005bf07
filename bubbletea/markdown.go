package bubbletea

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders markdown text for terminal display at the given
// width. On renderer failure the raw text is returned so content is never
// lost to a formatting problem.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		return text
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
