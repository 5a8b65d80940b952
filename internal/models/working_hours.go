package models

import "time"

// WorkingHoursRule is a per-weekday open window for one walker.
// StartTime/EndTime are "HH:MM" in the rule's Timezone; at most one active
// rule per (walker, weekday) is enforced by the storage layer.
type WorkingHoursRule struct {
	ID        int64     `json:"id"`
	OrgID     string    `json:"org_id"`
	WalkerID  string    `json:"walker_id"`
	DayOfWeek int       `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Timezone  string    `json:"timezone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location resolves the rule's IANA timezone, defaulting to UTC.
func (r *WorkingHoursRule) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
