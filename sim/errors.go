package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start while an acquisition is in progress.
	ErrAlreadyRunning = errors.New("acquisition already running")
	// ErrNotRunning is returned by Tick and Stop outside the Running state.
	ErrNotRunning = errors.New("acquisition not running")
	// ErrNotStopped is returned by Resume unless the acquisition was stopped manually.
	ErrNotStopped = errors.New("acquisition not stopped")
	// ErrProtectedEvent is returned when deleting or retyping the start or end event.
	ErrProtectedEvent = errors.New("start and end events cannot be removed")
	// ErrEventNotFound is returned when an update or delete names an unknown event.
	ErrEventNotFound = errors.New("event not found")
	// ErrInvalidCut is returned for a cut outside the fiber.
	ErrInvalidCut = errors.New("invalid cut distance")
)

// ConfigurationError reports an instrument setting that cannot be synthesized.
// Configurations are rejected before any shot runs; they are never coerced.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// ValidationError reports a rejected topology mutation.
type ValidationError struct {
	Op      string // "add", "update", "delete", "build"
	EventID string
	Reason  string
	Err     error // optional sentinel, exposed through Unwrap
}

func (e *ValidationError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("%s event: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s event %s: %s", e.Op, e.EventID, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
