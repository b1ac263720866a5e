package send

import (
	"errors"
	"fmt"
)

// genericDispatchMessage is shown when the engine error carries no
// usable text.
const genericDispatchMessage = "payment failed, please try again"

// ErrConfirmationRejected is returned when Confirm is called with a
// missing or invalid amount or an unrecognized destination. The
// rejection is local and does not change state.
var ErrConfirmationRejected = errors.New("confirmation rejected")

// TransitionError reports an event that is not allowed in the current
// state. The attempt is left unchanged.
type TransitionError struct {
	State State
	Event string
}

// Error implements error.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Event, e.State)
}

// DispatchError wraps the raw error returned by the external wallet
// engine. It is terminal for the attempt.
type DispatchError struct {
	Rail Rail
	Err  error
}

// Error implements error.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s dispatch failed: %v", e.Rail, e.Err)
}

// Unwrap exposes the raw engine error.
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// UserMessage derives the message surfaced to the user: the engine's
// own text when it has any, otherwise a generic fallback.
func (e *DispatchError) UserMessage() string {
	if e.Err != nil && e.Err.Error() != "" {
		return e.Err.Error()
	}
	return genericDispatchMessage
}

// NormalizationError reports an engine result the normalizer cannot
// map. It indicates a programming error and is never silently coerced
// into a default record.
type NormalizationError struct {
	Rail   Rail
	Reason string
}

// Error implements error.
func (e *NormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize %s result: %s", e.Rail,
		e.Reason)
}
