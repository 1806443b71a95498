package service

import (
	"errors"
	"fmt"
)

// ErrNoSuggestion indicates the provider answered without any candidate text.
var ErrNoSuggestion = errors.New("no suggestion available")

// ErrNotFound indicates the store has no task with the requested ID.
var ErrNotFound = errors.New("not found")

// NetworkError is a transport or HTTP-level failure of a store or provider call.
type NetworkError struct {
	// Op names the failed operation, e.g. "list tasks" or "generate".
	Op string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	Err error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is or wraps a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
