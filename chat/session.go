// Package chat orchestrates one user turn against the generation backend:
// it opens the streaming request, pumps decoded events into the turn state,
// falls back to a synchronous request when streaming never starts, and
// exposes the stop/reset side channel.
package chat

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/ateneo-app/ateneo"
	"github.com/charmbracelet/log"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateOpening    State = iota // Request issued, headers awaited.
	StateActive                  // Events are being pumped.
	StateFinalizing              // Terminal event applied, releasing transport.
	StateClosed                  // Terminal. The session is never reused.
)

// DefaultTimeout bounds one whole session so the pump cannot await a chunk
// indefinitely. A timeout behaves exactly like a transport failure.
const DefaultTimeout = 3 * time.Minute

// Observer receives an immutable snapshot after every state mutation.
// It is called synchronously from the event pump and must not block.
type Observer func(ateneo.Snapshot)

// Session drives a single user turn. It owns the transport handle and the
// turn state exclusively; the pump goroutine is the only writer. A Session is
// created per turn and never reused. The caller must not start a second
// session for the same conversation until Run returns, which keeps the
// at-most-one-active-session invariant.
type Session struct {
	streamer   ateneo.Streamer
	completer  ateneo.Completer
	controller ateneo.Controller
	logger     *log.Logger
	timeout    time.Duration
	observer   Observer

	mu            sync.Mutex
	state         State
	turn          *ateneo.Turn
	cancel        context.CancelFunc
	stopRequested bool
	started       bool
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithObserver sets the snapshot observer.
func WithObserver(o Observer) SessionOption {
	return func(s *Session) { s.observer = o }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithTimeout sets the overall session deadline. Zero disables it.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

// NewSession creates a Session for one turn.
func NewSession(streamer ateneo.Streamer, completer ateneo.Completer, controller ateneo.Controller, opts ...SessionOption) *Session {
	s := &Session{
		streamer:   streamer,
		completer:  completer,
		controller: controller,
		logger:     log.Default(),
		timeout:    DefaultTimeout,
		turn:       ateneo.NewTurn(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the latest turn snapshot.
func (s *Session) Snapshot() ateneo.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn.Snapshot()
}

// Run executes the turn to completion and returns the final snapshot. It
// blocks until a terminal event arrives, the transport ends, the deadline
// fires, or the turn is stopped. Run may be called once per session.
func (s *Session) Run(ctx context.Context, req ateneo.Request) (ateneo.Snapshot, error) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ateneo.Snapshot{}, ateneo.ErrSessionActive
	}
	s.started = true

	if err := req.Validate(); err != nil {
		s.state = StateClosed
		snap := s.turn.Snapshot()
		s.mu.Unlock()
		return snap, err
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	stream, err := s.streamer.Stream(runCtx, req)
	if err != nil {
		if s.stopped() || ctx.Err() != nil {
			return s.finishCancelled(), nil
		}
		// Streaming could not even start: the one place the
		// synchronous fallback is allowed.
		s.logger.Info("streaming unavailable, falling back to synchronous request", "err", err)
		return s.fallback(ctx, req)
	}
	defer stream.Close()

	s.setState(StateActive)
	return s.pump(ctx, req, stream)
}

// pump drives the event loop. Events are applied strictly in arrival order;
// the observer sees a snapshot after every mutation.
func (s *Session) pump(parent context.Context, req ateneo.Request, stream ateneo.Stream) (ateneo.Snapshot, error) {
	eventsSeen := 0

	for {
		evt, err := stream.Next()
		if err != nil {
			if err == io.EOF {
				// Stream ended without a terminal event.
				if s.stopped() {
					return s.finishCancelled(), nil
				}
				return s.finishIncomplete(), nil
			}
			if s.stopped() {
				return s.finishCancelled(), nil
			}
			if eventsSeen == 0 && parent.Err() == nil {
				// Transport failed before the stream ever became
				// active. One fallback request, on the caller's
				// context, not the expired stream context.
				s.logger.Info("stream failed before any event, falling back", "err", err)
				return s.fallback(parent, req)
			}
			// Ambiguous end-of-stream: keep the partial answer.
			s.logger.Warn("stream ended abnormally, keeping partial answer", "err", err)
			return s.finishIncomplete(), nil
		}

		eventsSeen++
		snap := s.apply(evt)
		if e, ok := evt.(ateneo.EventError); ok && !e.Fatal() {
			s.logger.Warn("transient backend notice", "message", e.Message)
		}
		s.notify(snap)

		if ateneo.Terminal(evt) {
			s.setState(StateFinalizing)
			s.setState(StateClosed)
			return snap, nil
		}
	}
}

// fallback maps one synchronous answer into the turn in a single shot.
// It is never invoked twice for the same turn.
func (s *Session) fallback(ctx context.Context, req ateneo.Request) (ateneo.Snapshot, error) {
	ans, err := s.completer.Complete(ctx, req)
	if err != nil {
		snap := s.apply(ateneo.EventError{Message: err.Error(), Severity: ateneo.SeverityFatal})
		s.notify(snap)
		s.setState(StateClosed)
		return snap, err
	}

	if ans.Reasoning != "" {
		s.apply(ateneo.EventReasoning{Text: ans.Reasoning})
	}
	s.apply(ateneo.EventToken{Text: ans.Text})
	snap := s.apply(ateneo.EventComplete{Fields: ans.Metadata})
	s.notify(snap)
	s.setState(StateClosed)
	return snap, nil
}

// Stop asks the backend to cancel generation via the side channel. When the
// backend honors it, the stream delivers a cancelled event; when the call
// fails, no correlation token exists yet, or the transport is already gone,
// the session is forced to a cancelled end locally. Either way the user's
// intent wins.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ateneo.ErrSessionClosed
	}
	s.stopRequested = true
	id := s.turn.SessionID()
	cancel := s.cancel
	s.mu.Unlock()

	if id == "" {
		if cancel != nil {
			cancel()
		}
		return nil
	}

	res, err := s.controller.Stop(ctx, id)
	if err != nil || !res.Success {
		s.logger.Warn("stop request failed, cancelling locally", "err", err, "message", res.Message)
		if cancel != nil {
			cancel()
		}
	}
	return nil
}

// ForceClose ends the session locally without waiting for the backend,
// used by the reset path. Safe to call at any time.
func (s *Session) ForceClose() {
	s.mu.Lock()
	s.stopRequested = true
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) apply(evt ateneo.Event) ateneo.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turn.Apply(evt)
	return s.turn.Snapshot()
}

func (s *Session) notify(snap ateneo.Snapshot) {
	if s.observer != nil {
		s.observer(snap)
	}
}

func (s *Session) finishCancelled() ateneo.Snapshot {
	snap := s.apply(ateneo.EventCancelled{})
	s.notify(snap)
	s.setState(StateClosed)
	return snap
}

func (s *Session) finishIncomplete() ateneo.Snapshot {
	s.mu.Lock()
	s.turn.FinishIncomplete()
	snap := s.turn.Snapshot()
	s.mu.Unlock()
	s.notify(snap)
	s.setState(StateClosed)
	return snap
}

func (s *Session) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopRequested
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Reset clears server-side stuck state and forces the session closed locally
// regardless of the call's outcome: getting unstuck must not depend on the
// network call succeeding.
func Reset(ctx context.Context, controller ateneo.Controller, session *Session, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	if res, err := controller.Reset(ctx); err != nil {
		logger.Warn("reset request failed, clearing local state anyway", "err", err)
	} else if !res.Success {
		logger.Warn("reset request rejected, clearing local state anyway", "message", res.Message)
	}
	if session != nil {
		session.ForceClose()
	}
}
