// Package mock provides test doubles for ateneo interfaces using function fields.
package mock

import (
	"context"

	"github.com/ateneo-app/ateneo"
)

// Interface compliance checks.
var (
	_ ateneo.Streamer   = (*Streamer)(nil)
	_ ateneo.Completer  = (*Completer)(nil)
	_ ateneo.Controller = (*Controller)(nil)
	_ ateneo.Stream     = (*Stream)(nil)
)

// Streamer is a test double for ateneo.Streamer.
// Set StreamFn before calling Stream.
type Streamer struct {
	StreamFn func(ctx context.Context, req ateneo.Request) (ateneo.Stream, error)
}

// Stream delegates to StreamFn.
func (s *Streamer) Stream(ctx context.Context, req ateneo.Request) (ateneo.Stream, error) {
	return s.StreamFn(ctx, req)
}

// Completer is a test double for ateneo.Completer.
// Set CompleteFn before calling Complete.
type Completer struct {
	CompleteFn func(ctx context.Context, req ateneo.Request) (ateneo.Answer, error)
}

// Complete delegates to CompleteFn.
func (c *Completer) Complete(ctx context.Context, req ateneo.Request) (ateneo.Answer, error) {
	return c.CompleteFn(ctx, req)
}

// Controller is a test double for ateneo.Controller. StopFn and ResetFn are
// nil-safe (success, no error) because most tests never exercise the side
// channel.
type Controller struct {
	StopFn  func(ctx context.Context, sessionID string) (ateneo.StopResult, error)
	ResetFn func(ctx context.Context) (ateneo.StopResult, error)
}

// Stop delegates to StopFn. Returns success when StopFn is nil.
func (c *Controller) Stop(ctx context.Context, sessionID string) (ateneo.StopResult, error) {
	if c.StopFn == nil {
		return ateneo.StopResult{Success: true}, nil
	}
	return c.StopFn(ctx, sessionID)
}

// Reset delegates to ResetFn. Returns success when ResetFn is nil.
func (c *Controller) Reset(ctx context.Context) (ateneo.StopResult, error) {
	if c.ResetFn == nil {
		return ateneo.StopResult{Success: true}, nil
	}
	return c.ResetFn(ctx)
}
