package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrSetup is returned when a run precondition fails before the monitor
	// could be invoked (missing base dir, missing venv, missing runner).
	ErrSetup = errors.New("setup failed")
)
