package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusChanged means the conditional transition matched nothing: the
	// booking left the pending state after the caller read it.
	ErrStatusChanged = errors.New("booking status changed")
)
