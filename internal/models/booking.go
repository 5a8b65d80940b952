package models

import "time"

type Booking struct {
	ID               int64     `json:"id"`
	Reference        string    `json:"reference"`
	OrgID            string    `json:"org_id"`
	WalkerID         string    `json:"walker_id"`
	CustomerID       string    `json:"customer_id"`
	ServiceID        string    `json:"service_id"`
	LocationID       string    `json:"location_id"`
	StartAt          time.Time `json:"start_at"`
	EndAt            time.Time `json:"end_at"`
	Status           string    `json:"status"` // pending, confirmed, in_progress, completed, cancelled
	PriceCents       int64     `json:"price_cents"`
	Notes            string    `json:"notes,omitempty"`
	SeriesID         int64     `json:"series_id,omitempty"`
	OccurrenceNumber int       `json:"occurrence_number,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int64     `json:"version"`
}

// Interval returns the booking's scheduled window.
func (b *Booking) Interval() TimeInterval {
	return TimeInterval{Start: b.StartAt, End: b.EndAt}
}

// IsActive reports whether the booking occupies the walker's time.
func (b *Booking) IsActive() bool {
	switch b.Status {
	case StatusPending, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// bookingTransitions is the status state machine. Completed and cancelled
// are terminal.
var bookingTransitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reports whether a status change is legal.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
