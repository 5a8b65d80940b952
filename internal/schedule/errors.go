package schedule

import "errors"

var (
	// ErrInvalidRecurrenceRule is returned before any occurrence is created
	// when a series' frequency or end condition is malformed.
	ErrInvalidRecurrenceRule = errors.New("invalid recurrence rule")
)
