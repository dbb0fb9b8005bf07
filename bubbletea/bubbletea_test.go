package bubbletea_test

import (
	"context"
	"testing"

	"github.com/ateneo-app/ateneo"
	bt "github.com/ateneo-app/ateneo/bubbletea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, turn bt.TurnFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, turn, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, turn bt.TurnFunc, width, height int) bt.Model {
	t.Helper()
	m := bt.New(turn, nil, nil, nil, "", ateneo.DefaultTheme())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// runCmd executes a command, expanding batches, and discards the messages.
func runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(c)
		}
	}
}

// nopTurn is a turn function that completes immediately.
func nopTurn(_ context.Context, _ string, _ func(ateneo.Snapshot)) (ateneo.Snapshot, error) {
	return ateneo.Snapshot{Status: ateneo.StatusComplete}, nil
}
