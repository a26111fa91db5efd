package session

import "errors"

var (
	// ErrNilBackend is returned when a store is created without a backend.
	ErrNilBackend = errors.New("nil session backend")
	// ErrLoginInProgress is returned when a foreground fetch is skipped
	// because a credential submission is active.
	ErrLoginInProgress = errors.New("login submission in progress")
)
