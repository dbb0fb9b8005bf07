package ateneo

// Severity classifies an EventError.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Event is a sealed interface representing a decoded streaming event.
// Events are purely semantic. Transport/protocol errors come from
// Stream.Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventToken is an incremental fragment of the answer text.
// Order-significant: fragments are appended, never reordered.
type EventToken struct {
	Text string
}

func (EventToken) event() {}

// EventReasoning is a snapshot of the auxiliary "thinking" text.
// Each snapshot replaces the previous one; only the latest matters.
type EventReasoning struct {
	Text string
}

func (EventReasoning) event() {}

// EventSessionID carries the opaque correlation token for the side channel.
// Issued at most once per session, before any token.
type EventSessionID struct {
	ID string
}

func (EventSessionID) event() {}

// EventMetadata is the terminal descriptive payload (confidence, verification
// flags, chosen strategy). Its receipt means generation is complete.
type EventMetadata struct {
	Fields map[string]any
}

func (EventMetadata) event() {}

// EventComplete is the explicit terminal signal, equivalent in finality
// to EventMetadata.
type EventComplete struct {
	Fields map[string]any
}

func (EventComplete) event() {}

// EventCancelled is the terminal signal produced in response to a prior
// stop request.
type EventCancelled struct{}

func (EventCancelled) event() {}

// EventError reports a backend-side error. A warning that is recoverable is a
// transient note and does not end the session; a fatal error is terminal.
type EventError struct {
	Message     string
	Severity    Severity
	Recoverable bool
}

func (EventError) event() {}

// Fatal reports whether the error ends the session.
func (e EventError) Fatal() bool {
	return e.Severity == SeverityFatal || !e.Recoverable
}

// EventUnknown is produced for event type tags this client does not know.
// It is ignored by Turn.Apply, keeping the protocol forward-compatible.
type EventUnknown struct {
	Type string
}

func (EventUnknown) event() {}

// Terminal reports whether evt ends a session: EventMetadata, EventComplete,
// EventCancelled, or a fatal EventError.
func Terminal(evt Event) bool {
	switch e := evt.(type) {
	case EventMetadata, EventComplete, EventCancelled:
		return true
	case EventError:
		return e.Fatal()
	default:
		return false
	}
}

// Interface compliance checks.
var (
	_ Event = EventToken{}
	_ Event = EventReasoning{}
	_ Event = EventSessionID{}
	_ Event = EventMetadata{}
	_ Event = EventComplete{}
	_ Event = EventCancelled{}
	_ Event = EventError{}
	_ Event = EventUnknown{}
)
