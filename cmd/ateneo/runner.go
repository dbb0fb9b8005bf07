package main

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ateneo-app/ateneo"
	"github.com/ateneo-app/ateneo/chat"
)

// runner bridges the TUI's turn/stop/reset callbacks to chat sessions. Each
// turn gets a fresh session; the runner tracks the in-flight one so the side
// channel can reach it.
type runner struct {
	streamer   ateneo.Streamer
	completer  ateneo.Completer
	controller ateneo.Controller
	logger     *log.Logger
	timeout    time.Duration

	mu      sync.Mutex
	conv    *ateneo.Conversation
	current *chat.Session
	gen     int // bumped by Reset; a turn started under an older gen is not recorded
}

func newRunner(streamer ateneo.Streamer, completer ateneo.Completer, controller ateneo.Controller, conv *ateneo.Conversation, logger *log.Logger, timeout time.Duration) *runner {
	return &runner{
		streamer:   streamer,
		completer:  completer,
		controller: controller,
		conv:       conv,
		logger:     logger,
		timeout:    timeout,
	}
}

// Turn runs one question against the backend and records the finished turn
// in the conversation.
func (r *runner) Turn(ctx context.Context, prompt string, onSnapshot func(ateneo.Snapshot)) (ateneo.Snapshot, error) {
	opts := []chat.SessionOption{
		chat.WithObserver(chat.Observer(onSnapshot)),
	}
	if r.logger != nil {
		opts = append(opts, chat.WithLogger(r.logger))
	}
	if r.timeout > 0 {
		opts = append(opts, chat.WithTimeout(r.timeout))
	}
	session := chat.NewSession(r.streamer, r.completer, r.controller, opts...)

	r.mu.Lock()
	req := ateneo.Request{
		ConversationID: r.conv.ID,
		CourseID:       r.conv.CourseID,
		Prompt:         prompt,
		History:        append([]ateneo.TurnRecord(nil), r.conv.Turns...),
	}
	r.current = session
	gen := r.gen
	r.mu.Unlock()

	snap, err := session.Run(ctx, req)

	r.mu.Lock()
	if r.current == session {
		r.current = nil
	}
	// A reset while the turn ran replaced the conversation; the stale
	// turn must not leak into the fresh transcript.
	if r.gen == gen && snap.Terminal() {
		r.conv.Append(ateneo.TurnRecord{
			Prompt:    prompt,
			Answer:    snap.Text,
			Reasoning: snap.Reasoning,
			Status:    snap.Status,
			Metadata:  snap.Metadata,
			Timestamp: time.Now(),
		})
	}
	r.mu.Unlock()

	return snap, err
}

// Stop asks the in-flight session to stop. A no-op when no turn is running.
func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	session := r.current
	r.mu.Unlock()
	if session == nil {
		return nil
	}
	return session.Stop(ctx)
}

// Reset clears the conversation locally and on the backend. The transcript
// starts over under a fresh conversation ID.
func (r *runner) Reset(ctx context.Context) {
	r.mu.Lock()
	session := r.current
	r.current = nil
	r.gen++
	r.conv.ID = uuid.NewString()
	r.conv.Turns = nil
	r.conv.UpdatedAt = time.Now()
	r.mu.Unlock()

	chat.Reset(ctx, r.controller, session, r.logger)
}

// Conversation returns a copy of the transcript for saving.
func (r *runner) Conversation() ateneo.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *r.conv
	c.Turns = append([]ateneo.TurnRecord(nil), r.conv.Turns...)
	return c
}
