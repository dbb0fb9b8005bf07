package chatapi

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ateneo-app/ateneo"
	"github.com/ateneo-app/ateneo/sse"
	"github.com/charmbracelet/log"
)

// Interface compliance check.
var _ ateneo.Stream = (*stream)(nil)

// stream implements [ateneo.Stream] over an HTTP response body. Raw chunks
// are reassembled into frames by an sse.Assembler and decoded one event per
// Next call. Malformed frames are logged and skipped so one corrupted frame
// never kills a long-lived session.
type stream struct {
	ctx     context.Context
	body    io.ReadCloser
	logger  *log.Logger
	asm     sse.Assembler
	frames  [][]byte
	buf     []byte
	eof     bool  // transport delivered its last byte
	readErr error // non-EOF transport failure, surfaced after pending frames
	done    bool  // terminal: Next returns io.EOF (or readErr) forever
}

func newStream(ctx context.Context, body io.ReadCloser, logger *log.Logger) *stream {
	return &stream{
		ctx:    ctx,
		body:   body,
		logger: logger,
		buf:    make([]byte, 4096),
	}
}

// Next returns the next decoded event, io.EOF on explicit or transport end of
// stream, or the transport error. Frames already assembled before a transport
// failure are still decoded and returned first: partial progress is never
// thrown away.
func (s *stream) Next() (ateneo.Event, error) {
	if s.done {
		if s.readErr != nil {
			return nil, s.readErr
		}
		return nil, io.EOF
	}

	for {
		for len(s.frames) > 0 {
			frame := s.frames[0]
			s.frames = s.frames[1:]

			evt, err := sse.Decode(frame)
			if err != nil {
				if errors.Is(err, sse.ErrDone) {
					s.done = true
					return nil, io.EOF
				}
				s.logger.Warn("skipping malformed frame", "err", err)
				continue
			}
			if evt == nil {
				continue
			}
			// A terminal event ends iteration: whatever the backend
			// sends after it is not part of this turn.
			if ateneo.Terminal(evt) {
				s.done = true
				s.readErr = nil
			}
			return evt, nil
		}

		if s.eof {
			// Any unterminated remainder in the assembler is not a
			// frame and is discarded.
			s.done = true
			if s.readErr != nil {
				return nil, s.readErr
			}
			return nil, io.EOF
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.frames = append(s.frames, s.asm.Feed(s.buf[:n])...)
		}
		if err != nil {
			s.eof = true
			if err != io.EOF {
				if ctxErr := s.ctx.Err(); ctxErr != nil {
					s.readErr = ctxErr
				} else {
					s.readErr = fmt.Errorf("chatapi: read stream: %w", err)
				}
			}
		}
	}
}

// Close releases the underlying response body. Safe on every exit path.
func (s *stream) Close() error {
	s.done = true
	return s.body.Close()
}
