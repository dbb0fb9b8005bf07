package ateneo

import "time"

// Conversation is the persisted transcript of one chat thread.
type Conversation struct {
	ID        string
	CourseID  string
	Turns     []TurnRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TurnRecord is one finished user turn: the prompt and the answer the turn
// ended with, however it ended.
type TurnRecord struct {
	Prompt    string
	Answer    string
	Reasoning string
	Status    Status
	Metadata  map[string]any
	Timestamp time.Time
}

// Append records a finished turn and bumps UpdatedAt.
func (c *Conversation) Append(rec TurnRecord) {
	c.Turns = append(c.Turns, rec)
	c.UpdatedAt = time.Now()
}
