package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateBoard  = errors.New("duplicate board name")
	ErrUnknownStatus   = errors.New("unknown task status")
	ErrStaleLocator    = errors.New("task locator does not match task")
	ErrNoActiveBoard   = errors.New("no active board")
	ErrInvalidAction   = errors.New("invalid action")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrStaleState      = errors.New("stored state changed since last load")
)
