package models

// Service is a catalog entry resolved from the services config file.
// WalkerIDs lists the walkers eligible to perform the service.
type Service struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	DurationMinutes int      `yaml:"duration_minutes" json:"duration_minutes"`
	PriceCents      int64    `yaml:"price_cents" json:"price_cents"`
	WalkerIDs       []string `yaml:"walker_ids" json:"walker_ids"`
	IsActive        bool     `yaml:"is_active" json:"is_active"`
	SortOrder       int      `yaml:"sort_order" json:"sort_order"`
}

// Slot is one bookable window offered to the booking flow.
type Slot struct {
	WalkerID   string       `json:"walker_id"`
	StartTime  string       `json:"start_time"`
	EndTime    string       `json:"end_time"`
	Confidence string       `json:"confidence"`
	Interval   TimeInterval `json:"-"`
}
