package models

import "time"

// CalendarEvent is an ad-hoc walker calendar entry. Blocking events remove
// availability; non-blocking ones are informational overlays (for example a
// booking mirrored into the calendar) and never subtract availability.
type CalendarEvent struct {
	ID         int64     `json:"id"`
	Reference  string    `json:"reference"`
	OrgID      string    `json:"org_id"`
	WalkerID   string    `json:"walker_id"`
	Title      string    `json:"title"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	IsBlocking bool      `json:"is_blocking"`

	// Recurrence, optional. Empty RecurFrequency means a one-off event.
	RecurFrequency string     `json:"recur_frequency,omitempty"` // daily, weekly, biweekly, monthly
	RecurUntil     *time.Time `json:"recur_until,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *CalendarEvent) Interval() TimeInterval {
	return TimeInterval{Start: e.StartAt, End: e.EndAt}
}

// IsRecurring reports whether the event expands into multiple occurrences.
func (e *CalendarEvent) IsRecurring() bool {
	return e.RecurFrequency != ""
}

// EventException marks a single deleted occurrence of a recurring event.
type EventException struct {
	ID      int64     `json:"id"`
	EventID int64     `json:"event_id"`
	Date    time.Time `json:"date"`
}
