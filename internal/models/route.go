package models

import "time"

// RouteStop is one leg of a walker's day, derived from a booking. Advisory
// only: the booking's own start/end remain the contract with the customer.
type RouteStop struct {
	Sequence                  int       `json:"sequence"`
	BookingID                 int64     `json:"booking_id"`
	LocationID                string    `json:"location_id"`
	ArrivalTime               time.Time `json:"arrival_time"`
	DepartureTime             time.Time `json:"departure_time"`
	TravelFromPreviousMinutes *int64    `json:"travel_from_previous_minutes"` // nil when the provider was unavailable
}

// RoutePlan is the computed visiting order for one walker and date.
// Recomputed on demand, never persisted.
type RoutePlan struct {
	WalkerID           string      `json:"walker_id"`
	Date               time.Time   `json:"date"`
	IsOptimized        bool        `json:"is_optimized"`
	Stops              []RouteStop `json:"stops"`
	TotalTravelMinutes int64       `json:"total_travel_minutes"`
	SavingsMinutes     int64       `json:"savings_minutes"`
}
