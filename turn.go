package ateneo

import "strings"

// Status is the lifecycle state of a Turn.
type Status int

const (
	StatusPending   Status = iota // Turn created, no event applied yet.
	StatusStreaming               // At least one token received.
	StatusComplete                // Terminal metadata/complete received, or soft finish.
	StatusCancelled               // Stopped by the user.
	StatusFailed                  // Fatal error event received.
)

// Terminal reports whether the status is one of the final states.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusCancelled || s == StatusFailed
}

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusStreaming:
		return "streaming"
	case StatusComplete:
		return "complete"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// User-visible markers appended to the answer when a turn ends abnormally.
// The answer area always shows whatever text accumulated, never a blank
// screen after any amount of streaming occurred.
const (
	MarkerCancelled  = "\n\n*Generation stopped by user.*"
	MarkerIncomplete = "\n\n*Response ended without explicit completion.*"
	MarkerFailed     = "\n\n*Generation failed.*"
)

// Turn accumulates one assistant answer from a stream of events. It is the
// single source of truth for the in-progress turn: exactly one goroutine (the
// session's event pump) calls Apply; observers only ever see value copies via
// Snapshot.
type Turn struct {
	text      strings.Builder
	reasoning string
	sessionID string
	status    Status
	metadata  map[string]any
}

// Snapshot is an immutable view of a Turn, safe to hand to observers.
type Snapshot struct {
	Text      string
	Reasoning string
	SessionID string
	Status    Status
	Metadata  map[string]any
}

// Terminal reports whether the turn has reached a terminal status.
func (s Snapshot) Terminal() bool {
	return s.Status.Terminal()
}

// NewTurn creates an empty Turn in StatusPending.
func NewTurn() *Turn {
	return &Turn{status: StatusPending}
}

// Apply folds one event into the turn. It is the sole mutator. Once a
// terminal event has been applied every subsequent call is a no-op: a backend
// that keeps producing bytes past logical completion cannot corrupt the
// finished answer.
func (t *Turn) Apply(evt Event) {
	if t.terminal() {
		return
	}

	switch e := evt.(type) {
	case EventToken:
		t.text.WriteString(e.Text)
		t.status = StatusStreaming
	case EventReasoning:
		t.reasoning = e.Text
	case EventSessionID:
		// First write wins. A second session ID is a protocol anomaly,
		// not an error.
		if t.sessionID == "" {
			t.sessionID = e.ID
		}
	case EventMetadata:
		t.metadata = e.Fields
		t.status = StatusComplete
	case EventComplete:
		t.metadata = e.Fields
		t.status = StatusComplete
	case EventCancelled:
		t.text.WriteString(MarkerCancelled)
		t.status = StatusCancelled
	case EventError:
		if e.Fatal() {
			t.text.WriteString(MarkerFailed)
			t.status = StatusFailed
		}
		// Recoverable warnings are transient notes; the session logs them.
	case EventUnknown:
		// Forward-compatible: unknown tags are ignored.
	}
}

// FinishIncomplete marks a turn whose transport ended without any terminal
// event. Partial progress is preserved and annotated, not thrown away: the
// turn finishes as a success-with-a-note.
func (t *Turn) FinishIncomplete() {
	if t.terminal() {
		return
	}
	if t.text.Len() > 0 {
		t.text.WriteString(MarkerIncomplete)
	}
	t.status = StatusComplete
}

// SessionID returns the correlation token received mid-stream, or "" if none
// has arrived yet.
func (t *Turn) SessionID() string {
	return t.sessionID
}

// Snapshot returns an immutable copy of the current state.
func (t *Turn) Snapshot() Snapshot {
	var meta map[string]any
	if t.metadata != nil {
		meta = make(map[string]any, len(t.metadata))
		for k, v := range t.metadata {
			meta[k] = v
		}
	}
	return Snapshot{
		Text:      t.text.String(),
		Reasoning: t.reasoning,
		SessionID: t.sessionID,
		Status:    t.status,
		Metadata:  meta,
	}
}

func (t *Turn) terminal() bool {
	return t.status == StatusComplete || t.status == StatusCancelled || t.status == StatusFailed
}
