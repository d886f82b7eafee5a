package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrReadOnly is returned when a mutating operation runs in read-only mode.
	ErrReadOnly = errors.New("read-only mode")
	// ErrCancelled is returned when the user cancels an interactive step.
	ErrCancelled = errors.New("cancelled")
)
