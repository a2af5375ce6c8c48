package domain

import (
	"errors"
	"strings"
)

// Error classes surfaced by a scheduling run. Concrete errors wrap one of these.
var (
	// ErrConfiguration covers bad input: unknown procedures, malformed slots,
	// missing date or group keys and roster problems.
	ErrConfiguration = errors.New("configuration error")
	// ErrResourceExhausted is returned when no staff can be found for a slot.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrValidationFailed is returned when the final conflict check fails.
	ErrValidationFailed = errors.New("schedule conflicts detected")
)

// ValidationError carries the conflicts found by the final validation pass.
type ValidationError struct {
	Conflicts []Conflict
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		msgs = append(msgs, c.Message())
	}
	return ErrValidationFailed.Error() + ":\n" + strings.Join(msgs, "\n\n")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
