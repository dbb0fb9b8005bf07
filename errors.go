package ateneo

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrSessionClosed indicates an operation on a session that already
	// reached its terminal state.
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionActive indicates an attempt to start a second session for
	// a conversation that already has one in flight.
	ErrSessionActive = errors.New("session already active")

	// ErrNoSessionID indicates a stop request before the backend handed
	// out a correlation token.
	ErrNoSessionID = errors.New("no session id received yet")

	// ErrValidation indicates a malformed request. Use errors.Is to detect.
	ErrValidation = errors.New("validation error")
)
