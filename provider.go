package ateneo

import "context"

// Request carries one user turn to the generation backend.
type Request struct {
	ConversationID string // opaque client-side conversation identifier
	CourseID       string // optional course scope for retrieval; empty = all
	Prompt         string
	History        []TurnRecord // prior turns, oldest first
}

// Answer is the result of the synchronous fallback endpoint: one complete
// answer plus the same metadata fields carried by the terminal streaming
// event.
type Answer struct {
	Text      string
	Reasoning string
	Metadata  map[string]any
}

// StopResult is the backend's response to a side-channel call.
type StopResult struct {
	Success bool
	Message string
}

// Streamer opens a streaming generation request.
type Streamer interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Completer issues the synchronous equivalent of a streaming request. Used
// only when streaming could not be established.
type Completer interface {
	Complete(ctx context.Context, req Request) (Answer, error)
}

// Controller exposes the out-of-band operations that affect an in-flight
// session: stop one generation by its correlation token, or reset any
// server-side stuck state unconditionally.
type Controller interface {
	Stop(ctx context.Context, sessionID string) (StopResult, error)
	Reset(ctx context.Context) (StopResult, error)
}
