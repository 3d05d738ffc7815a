// Package apperr holds the sentinel errors shared across the HUD core.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrFocusLocked is the expected outcome of opening a new panel while focus lock is on.
	ErrFocusLocked = errors.New("focus lock active")

	// ErrBusy is returned when an input surface already has a command in flight.
	ErrBusy = errors.New("command already in progress")

	ErrNotModifiable = errors.New("action cannot be modified")
	ErrNoHistory     = errors.New("no history available")
	ErrInvalid       = errors.New("invalid input")
)
