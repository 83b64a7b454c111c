package errors

import "errors"

var (
	ErrNotFound = errors.New("service not found")

	ErrInvalidID = errors.New("invalid service ID format")

	// ErrVersionMismatch means the service exists but was changed since the
	// caller loaded it.
	ErrVersionMismatch = errors.New("service version mismatch")

	// ErrHasBookings blocks deleting a service that bookings still reference.
	ErrHasBookings = errors.New("service has bookings")

	// ErrNotBookable means the service was deactivated or removed before the
	// booking could be attached to it.
	ErrNotBookable = errors.New("service is not accepting bookings")
)
