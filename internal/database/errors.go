package database

import "errors"

var (
	// ErrSlotUnavailable is returned when the atomic overlap check at commit
	// time finds a conflicting active booking. The caller should re-query
	// slots; the write left no partial state.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrInvalidTransition is returned for an illegal booking status change.
	// The booking is not mutated.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrConcurrentModification is returned when an optimistic version check
	// fails.
	ErrConcurrentModification = errors.New("booking was modified concurrently")

	// ErrNotFound is returned for unknown walker/booking/event/series ids.
	ErrNotFound = errors.New("not found")

	// ErrPastDate rejects bookings that start in the past.
	ErrPastDate = errors.New("booking date is in the past")

	// ErrDateTooFar rejects bookings beyond the configured horizon.
	ErrDateTooFar = errors.New("booking date is too far in the future")
)
