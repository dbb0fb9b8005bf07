// Package bubbletea provides a Bubble Tea TUI for the ateneo chat client.
package bubbletea

import (
	"context"

	"github.com/ateneo-app/ateneo"
	tea "github.com/charmbracelet/bubbletea"
)

// TurnFunc runs one question/answer turn against the assistant backend. The
// onSnapshot callback is called with the accumulated turn state after each
// streaming event. The function blocks until the turn reaches a terminal
// state or the context is cancelled, and returns the final snapshot.
type TurnFunc func(ctx context.Context, prompt string, onSnapshot func(ateneo.Snapshot)) (ateneo.Snapshot, error)

// StopFunc asks the backend to stop the generation that is currently in
// flight. It must be safe to call while a TurnFunc is running.
type StopFunc func(ctx context.Context) error

// ResetFunc clears the conversation on the backend and locally.
type ResetFunc func(ctx context.Context)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown — when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// SnapshotMsg wraps an accumulated turn snapshot for delivery to the model.
// Seq identifies the turn it came from; the model drops messages whose turn
// was superseded by a reset.
type SnapshotMsg struct {
	Seq      int
	Snapshot ateneo.Snapshot
}

// TurnDoneMsg signals that the turn identified by Seq has completed.
type TurnDoneMsg struct {
	Seq      int
	Snapshot ateneo.Snapshot
	Err      error
}
