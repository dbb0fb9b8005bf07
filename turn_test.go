package ateneo_test

import (
	"testing"

	"github.com/ateneo-app/ateneo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurn_AppendOnlyAccumulation(t *testing.T) {
	t.Parallel()
	turn := ateneo.NewTurn()

	turn.Apply(ateneo.EventToken{Text: "Cia"})
	turn.Apply(ateneo.EventToken{Text: "o"})
	turn.Apply(ateneo.EventToken{Text: ", mondo"})

	snap := turn.Snapshot()
	assert.Equal(t, "Ciao, mondo", snap.Text)
	assert.Equal(t, ateneo.StatusStreaming, snap.Status)
}

func TestTurn_WarningBetweenTokens(t *testing.T) {
	t.Parallel()
	turn := ateneo.NewTurn()

	turn.Apply(ateneo.EventToken{Text: "A"})
	turn.Apply(ateneo.EventError{Message: "slow shard", Severity: ateneo.SeverityWarning, Recoverable: true})
	turn.Apply(ateneo.EventToken{Text: "B"})
	turn.Apply(ateneo.EventComplete{Fields: map[string]any{"chosen": "RAG"}})

	snap := turn.Snapshot()
	assert.Equal(t, "AB", snap.Text)
	assert.Equal(t, ateneo.StatusComplete, snap.Status)
	assert.Equal(t, "RAG", snap.Metadata["chosen"])
}

func TestTurn_ReasoningReplacesNotAppends(t *testing.T) {
	t.Parallel()
	turn := ateneo.NewTurn()

	turn.Apply(ateneo.EventReasoning{Text: "first pass"})
	turn.Apply(ateneo.EventReasoning{Text: "second pass"})

	assert.Equal(t, "second pass", turn.Snapshot().Reasoning)
}

func TestTurn_SessionIDFirstWriteWins(t *testing.T) {
	t.Parallel()
	turn := ateneo.NewTurn()

	turn.Apply(ateneo.EventSessionID{ID: "req-1"})
	turn.Apply(ateneo.EventSessionID{ID: "req-2"})

	assert.Equal(t, "req-1", turn.SessionID())
	assert.Equal(t, "req-1", turn.Snapshot().SessionID)
}

func TestTurn_CancelledAppendsMarker(t *testing.T) {
	t.Parallel()
	turn := ateneo.NewTurn()

	turn.Apply(ateneo.EventToken{Text: "Parziale"})
	turn.Apply(ateneo.EventCancelled{})

	snap := turn.Snapshot()
	assert.Equal(t, ateneo.StatusCancelled, snap.Status)
	assert.Equal(t, "Parziale"+ateneo.MarkerCancelled, snap.Text)
}

func TestTurn_FatalErrorPreservesPartialText(t *testing.T) {
	t.Parallel()
	turn := ateneo.NewTurn()

	turn.Apply(ateneo.EventToken{Text: "Partial"})
	turn.Apply(ateneo.EventError{Message: "model crashed", Severity: ateneo.SeverityFatal})

	snap := turn.Snapshot()
	assert.Equal(t, ateneo.StatusFailed, snap.Status)
	assert.Equal(t, "Partial"+ateneo.MarkerFailed, snap.Text)
}

func TestTurn_AtMostOneTerminalEvent(t *testing.T) {
	t.Parallel()
	turn := ateneo.NewTurn()

	turn.Apply(ateneo.EventToken{Text: "done"})
	turn.Apply(ateneo.EventMetadata{Fields: map[string]any{"chosen": "RAG"}})
	before := turn.Snapshot()

	// Late arrivals after the terminal event must change nothing.
	turn.Apply(ateneo.EventToken{Text: "ignored"})
	turn.Apply(ateneo.EventCancelled{})
	turn.Apply(ateneo.EventError{Severity: ateneo.SeverityFatal})
	turn.Apply(ateneo.EventReasoning{Text: "ignored"})

	after := turn.Snapshot()
	assert.Equal(t, before, after)
}

func TestTurn_UnknownEventIgnored(t *testing.T) {
	t.Parallel()
	turn := ateneo.NewTurn()

	turn.Apply(ateneo.EventUnknown{Type: "telemetry"})

	snap := turn.Snapshot()
	assert.Equal(t, ateneo.StatusPending, snap.Status)
	assert.Empty(t, snap.Text)
}

func TestTurn_FinishIncomplete(t *testing.T) {
	t.Parallel()

	t.Run("annotates partial text", func(t *testing.T) {
		t.Parallel()
		turn := ateneo.NewTurn()
		turn.Apply(ateneo.EventToken{Text: "Partial"})

		turn.FinishIncomplete()

		snap := turn.Snapshot()
		assert.Equal(t, ateneo.StatusComplete, snap.Status)
		assert.Equal(t, "Partial"+ateneo.MarkerIncomplete, snap.Text)
	})

	t.Run("empty turn gets no marker", func(t *testing.T) {
		t.Parallel()
		turn := ateneo.NewTurn()

		turn.FinishIncomplete()

		snap := turn.Snapshot()
		assert.Equal(t, ateneo.StatusComplete, snap.Status)
		assert.Empty(t, snap.Text)
	})

	t.Run("no-op after terminal", func(t *testing.T) {
		t.Parallel()
		turn := ateneo.NewTurn()
		turn.Apply(ateneo.EventToken{Text: "x"})
		turn.Apply(ateneo.EventCancelled{})

		turn.FinishIncomplete()

		assert.Equal(t, ateneo.StatusCancelled, turn.Snapshot().Status)
	})
}

func TestTurn_SnapshotMetadataIsACopy(t *testing.T) {
	t.Parallel()
	turn := ateneo.NewTurn()
	turn.Apply(ateneo.EventComplete{Fields: map[string]any{"chosen": "RAG"}})

	snap := turn.Snapshot()
	require.NotNil(t, snap.Metadata)
	snap.Metadata["chosen"] = "mutated"

	assert.Equal(t, "RAG", turn.Snapshot().Metadata["chosen"])
}

func TestSnapshot_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, ateneo.Snapshot{Status: ateneo.StatusPending}.Terminal())
	assert.False(t, ateneo.Snapshot{Status: ateneo.StatusStreaming}.Terminal())
	assert.True(t, ateneo.Snapshot{Status: ateneo.StatusComplete}.Terminal())
	assert.True(t, ateneo.Snapshot{Status: ateneo.StatusCancelled}.Terminal())
	assert.True(t, ateneo.Snapshot{Status: ateneo.StatusFailed}.Terminal())
}
