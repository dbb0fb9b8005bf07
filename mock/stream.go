package mock

import (
	"io"

	"github.com/ateneo-app/ateneo"
)

// Stream is a test double for ateneo.Stream.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe (no-op)
// because test code commonly calls defer stream.Close().
type Stream struct {
	NextFn  func() (ateneo.Event, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (ateneo.Event, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Events returns a Stream that replays the given events in order and then
// returns io.EOF forever.
func Events(events ...ateneo.Event) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (ateneo.Event, error) {
			if i >= len(events) {
				return nil, io.EOF
			}
			evt := events[i]
			i++
			return evt, nil
		},
	}
}
