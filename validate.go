package ateneo

import (
	"fmt"
	"strings"
)

// Validate checks universal constraints on Request.
// Backend clients may apply additional transport-specific validation.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt must not be empty: %w", ErrValidation)
	}
	for i, rec := range r.History {
		if rec.Prompt == "" {
			return fmt.Errorf("history[%d] has empty prompt: %w", i, ErrValidation)
		}
		if !rec.Status.Terminal() {
			return fmt.Errorf("history[%d] has non-terminal status %s: %w", i, rec.Status, ErrValidation)
		}
	}
	return nil
}
