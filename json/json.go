// Package json persists conversation transcripts as versioned JSON files.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ateneo-app/ateneo"
)

// envelope is the v1 wire format for a persisted conversation.
type envelope struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Turns     []turnDTO `json:"turns"`
}

// turnDTO is the JSON representation of a finished turn.
type turnDTO struct {
	Prompt    string         `json:"prompt"`
	Answer    string         `json:"answer"`
	Reasoning string         `json:"reasoning,omitempty"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// MarshalConversation serializes a Conversation to JSON in v1 envelope format.
func MarshalConversation(c ateneo.Conversation) ([]byte, error) {
	env := envelope{
		Version:   1,
		ID:        c.ID,
		CourseID:  c.CourseID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Turns:     make([]turnDTO, len(c.Turns)),
	}
	for i, turn := range c.Turns {
		env.Turns[i] = turnDTO{
			Prompt:    turn.Prompt,
			Answer:    turn.Answer,
			Reasoning: turn.Reasoning,
			Status:    turn.Status.String(),
			Metadata:  turn.Metadata,
			Timestamp: turn.Timestamp,
		}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalConversation deserializes a Conversation from v1 envelope format.
func UnmarshalConversation(data []byte) (ateneo.Conversation, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ateneo.Conversation{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return ateneo.Conversation{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	turns := make([]ateneo.TurnRecord, len(env.Turns))
	for i, dto := range env.Turns {
		status, err := parseStatus(dto.Status)
		if err != nil {
			return ateneo.Conversation{}, fmt.Errorf("turn %d: %w", i, err)
		}
		turns[i] = ateneo.TurnRecord{
			Prompt:    dto.Prompt,
			Answer:    dto.Answer,
			Reasoning: dto.Reasoning,
			Status:    status,
			Metadata:  dto.Metadata,
			Timestamp: dto.Timestamp,
		}
	}
	return ateneo.Conversation{
		ID:        env.ID,
		CourseID:  env.CourseID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Turns:     turns,
	}, nil
}

// Save writes a Conversation to a JSON file, creating parent directories as
// needed. The write is atomic: temp file then rename.
func Save(path string, c ateneo.Conversation) error {
	data, err := MarshalConversation(c)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Conversation from a JSON file.
func Load(path string) (ateneo.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ateneo.Conversation{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalConversation(data)
}

func parseStatus(s string) (ateneo.Status, error) {
	switch s {
	case "pending":
		return ateneo.StatusPending, nil
	case "streaming":
		return ateneo.StatusStreaming, nil
	case "complete":
		return ateneo.StatusComplete, nil
	case "cancelled":
		return ateneo.StatusCancelled, nil
	case "failed":
		return ateneo.StatusFailed, nil
	default:
		return 0, fmt.Errorf("unknown status %q", s)
	}
}
