package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ateneo-app/ateneo"
)

const dataPrefix = "data: "

// doneSentinel is the payload value that signals explicit stream end.
const doneSentinel = "[DONE]"

// ErrDone is returned by Decode when the frame carries the explicit
// end-of-stream sentinel. The pump terminates exactly as it would on a
// terminal event.
var ErrDone = errors.New("sse: stream done")

// wireEvent is the JSON shape of a frame's data payload.
type wireEvent struct {
	Type        string `json:"type"`
	Token       string `json:"token"`
	Reasoning   string `json:"reasoning"`
	SessionID   string `json:"session_id"`
	Message     string `json:"message"`
	Severity    string `json:"severity"`
	Recoverable bool   `json:"recoverable"`
}

// Decode extracts the data payload from one complete frame and parses it into
// an event. Returns (nil, nil) for frames with no data line (comments,
// keep-alives). A malformed payload returns an error; callers log it and
// continue with the next frame rather than aborting the stream.
func Decode(frame []byte) (ateneo.Event, error) {
	payload, ok := extractData(frame)
	if !ok {
		return nil, nil
	}
	if payload == doneSentinel {
		return nil, ErrDone
	}

	var we wireEvent
	if err := json.Unmarshal([]byte(payload), &we); err != nil {
		return nil, fmt.Errorf("sse: malformed payload %q: %w", payload, err)
	}

	switch we.Type {
	case "token":
		return ateneo.EventToken{Text: we.Token}, nil
	case "reasoning":
		return ateneo.EventReasoning{Text: we.Reasoning}, nil
	case "session":
		return ateneo.EventSessionID{ID: we.SessionID}, nil
	case "metadata":
		return ateneo.EventMetadata{Fields: extraFields(payload)}, nil
	case "complete":
		return ateneo.EventComplete{Fields: extraFields(payload)}, nil
	case "cancelled":
		return ateneo.EventCancelled{}, nil
	case "error":
		sev := ateneo.Severity(we.Severity)
		if sev != ateneo.SeverityWarning {
			sev = ateneo.SeverityFatal
		}
		return ateneo.EventError{Message: we.Message, Severity: sev, Recoverable: we.Recoverable}, nil
	default:
		return ateneo.EventUnknown{Type: we.Type}, nil
	}
}

// extractData collects the frame's data lines, joined with newlines when a
// payload spans several data lines. Comment lines and unknown fields are
// ignored.
func extractData(frame []byte) (string, bool) {
	var buf strings.Builder
	for _, line := range strings.Split(string(frame), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(strings.TrimPrefix(line, dataPrefix))
	}
	if buf.Len() == 0 {
		return "", false
	}
	return buf.String(), true
}

// extraFields re-parses the payload as a generic object and strips the type
// discriminator, leaving the descriptive fields (confidence, verification
// flags, chosen strategy) exactly as sent.
func extraFields(payload string) map[string]any {
	fields := map[string]any{}
	// The payload already parsed as wireEvent, so this cannot fail.
	_ = json.Unmarshal([]byte(payload), &fields)
	delete(fields, "type")
	if len(fields) == 0 {
		return nil
	}
	return fields
}
