package service

import "errors"

var (
	// ErrUnknownService is returned when a requested service id is not in
	// the catalog.
	ErrUnknownService = errors.New("unknown service")

	// ErrWalkerNotEligible is returned when a walker is not listed for the
	// requested service.
	ErrWalkerNotEligible = errors.New("walker not eligible for service")

	// ErrInvalidInterval rejects bookings whose end does not follow start.
	ErrInvalidInterval = errors.New("booking end must be after start")

	// ErrInvalidWorkingHours rejects malformed working hours rules.
	ErrInvalidWorkingHours = errors.New("invalid working hours rule")

	// ErrInvalidCalendarEvent rejects malformed calendar events.
	ErrInvalidCalendarEvent = errors.New("invalid calendar event")

	// ErrWalkerRequired is returned when an availability query names no
	// walker and the service has no roster to enumerate.
	ErrWalkerRequired = errors.New("walker_id is required for this service")

	// ErrInvalidDateRange rejects inverted or oversized availability ranges.
	ErrInvalidDateRange = errors.New("invalid date range")
)
