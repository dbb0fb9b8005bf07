package ateneo_test

import (
	"testing"
	"time"

	"github.com/ateneo-app/ateneo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_Append(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	conv := ateneo.Conversation{
		ID:        "conv-1",
		CourseID:  "cs-101",
		CreatedAt: created,
		UpdatedAt: created,
	}

	conv.Append(ateneo.TurnRecord{
		Prompt: "Cos'è un semaforo?",
		Answer: "Un contatore con attese.",
		Status: ateneo.StatusComplete,
	})

	require.Len(t, conv.Turns, 1)
	assert.Equal(t, "Cos'è un semaforo?", conv.Turns[0].Prompt)
	assert.True(t, conv.UpdatedAt.After(created))
	assert.Equal(t, created, conv.CreatedAt)
}

func TestConversation_AppendPreservesOrder(t *testing.T) {
	t.Parallel()

	var conv ateneo.Conversation
	conv.Append(ateneo.TurnRecord{Prompt: "prima", Status: ateneo.StatusComplete})
	conv.Append(ateneo.TurnRecord{Prompt: "seconda", Status: ateneo.StatusCancelled})
	conv.Append(ateneo.TurnRecord{Prompt: "terza", Status: ateneo.StatusFailed})

	require.Len(t, conv.Turns, 3)
	assert.Equal(t, "prima", conv.Turns[0].Prompt)
	assert.Equal(t, "seconda", conv.Turns[1].Prompt)
	assert.Equal(t, "terza", conv.Turns[2].Prompt)
}

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, ateneo.StatusPending.Terminal())
	assert.False(t, ateneo.StatusStreaming.Terminal())
	assert.True(t, ateneo.StatusComplete.Terminal())
	assert.True(t, ateneo.StatusCancelled.Terminal())
	assert.True(t, ateneo.StatusFailed.Terminal())
}
