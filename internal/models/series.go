package models

import "time"

// RecurringBookingSeries generates Booking occurrences on a fixed cadence.
// Exactly one of OccurrenceCount / UntilDate terminates the series.
type RecurringBookingSeries struct {
	ID              int64      `json:"id"`
	Reference       string     `json:"reference"`
	OrgID           string     `json:"org_id"`
	CustomerID      string     `json:"customer_id"`
	WalkerID        string     `json:"walker_id"`
	ServiceID       string     `json:"service_id"`
	LocationID      string     `json:"location_id"`
	Frequency       string     `json:"frequency"` // daily, weekly, biweekly, monthly
	StartAt         time.Time  `json:"start_at"`  // anchor occurrence start
	DurationMinutes int        `json:"duration_minutes"`
	OccurrenceCount int        `json:"occurrence_count,omitempty"`
	UntilDate       *time.Time `json:"until_date,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SeriesExpansion is the result of expanding a series: the occurrences that
// were free of conflicts and the ones skipped because of them.
type SeriesExpansion struct {
	Created []*Booking `json:"created"`
	Skipped []*Booking `json:"skipped"`
}
