package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("satellite not found")
	ErrMalformedTLE     = errors.New("malformed TLE")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrDuplicateID      = errors.New("duplicate id")
)

// MalformedTLEError describes why a TLE pair could not be derived.
// Line is 1 or 2, or 0 when the problem spans both lines.
type MalformedTLEError struct {
	Line   int
	Reason string
}

func (e *MalformedTLEError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedTLE, e.Reason)
	}
	return fmt.Sprintf("%s: line %d: %s", ErrMalformedTLE, e.Line, e.Reason)
}

func (e *MalformedTLEError) Unwrap() error { return ErrMalformedTLE }

func InvalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
