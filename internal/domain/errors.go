package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrTooManyColumns  = errors.New("too many columns")
	ErrDuplicateColumn = errors.New("duplicate column status")
	ErrDuplicateID     = errors.New("duplicate id")
)
