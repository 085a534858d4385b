package domain

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	// ErrLocked is returned when another worker already holds the dispatch key.
	ErrLocked = errors.New("dispatch key locked")
)
