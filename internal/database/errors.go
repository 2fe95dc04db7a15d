package database

import "errors"

var (
	// ErrNotFound is returned when a referenced task, note or version does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoActiveTimer is returned by Stop when the task has no open time
	// log entry. This is an expected outcome, not a fault: callers report
	// it as a negative result rather than an error response.
	ErrNoActiveTimer = errors.New("no active timer")

	// ErrInvalidInput is returned when a required field is missing or
	// malformed.
	ErrInvalidInput = errors.New("invalid input")
)
