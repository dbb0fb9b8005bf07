package bubbletea_test

import (
	"errors"
	"testing"

	"github.com/ateneo-app/ateneo"
	bt "github.com/ateneo-app/ateneo/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestErrorBlock_View(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(ateneo.DefaultTheme())
	block := bt.NewErrorBlock(errors.New("backend unavailable"), styles)
	view := block.View(80)
	assert.Contains(t, view, "✗ Error:")
	assert.Contains(t, view, "backend unavailable")
}
