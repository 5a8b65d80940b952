package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

// CostFunc is the external travel-time provider: minutes from one location
// to another. Errors degrade the route to unannotated chronological order.
type CostFunc func(ctx context.Context, fromLocationID, toLocationID string) (int64, error)

// BuildRoutePlan computes the visiting order for one walker's day. Booking
// start times are contractual, so stops stay in chronological order; the
// plan annotates each consecutive leg with travel minutes and reports the
// savings against a naive creation-order visit.
//
// With the same bookings and cost function the result is deterministic, so
// repeated calls yield identical plans.
func BuildRoutePlan(ctx context.Context, walkerID string, date time.Time, bookings []*models.Booking, cost CostFunc) models.RoutePlan {
	plan := models.RoutePlan{
		WalkerID:    walkerID,
		Date:        date,
		IsOptimized: true,
	}
	if len(bookings) == 0 {
		return plan
	}

	ordered := make([]*models.Booking, len(bookings))
	copy(ordered, bookings)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].StartAt.Equal(ordered[j].StartAt) {
			return ordered[i].StartAt.Before(ordered[j].StartAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	plan.Stops = make([]models.RouteStop, len(ordered))
	degraded := false
	for i, b := range ordered {
		stop := models.RouteStop{
			Sequence:      i + 1,
			BookingID:     b.ID,
			LocationID:    b.LocationID,
			ArrivalTime:   b.StartAt,
			DepartureTime: b.EndAt,
		}
		if i > 0 && cost != nil {
			minutes, err := cost(ctx, ordered[i-1].LocationID, b.LocationID)
			if err != nil {
				degraded = true
			} else {
				stop.TravelFromPreviousMinutes = &minutes
				plan.TotalTravelMinutes += minutes
			}
		}
		plan.Stops[i] = stop
	}
	if cost == nil {
		degraded = len(ordered) > 1
	}

	if degraded {
		plan.IsOptimized = false
		return plan
	}

	plan.SavingsMinutes = savings(ctx, ordered, plan.TotalTravelMinutes, cost)
	return plan
}

// savings compares the chronological travel total against visiting stops in
// the order the bookings were created. Negative savings are reported as zero.
func savings(ctx context.Context, chronological []*models.Booking, chronoTotal int64, cost CostFunc) int64 {
	if len(chronological) < 2 {
		return 0
	}

	byCreation := make([]*models.Booking, len(chronological))
	copy(byCreation, chronological)
	sort.SliceStable(byCreation, func(i, j int) bool {
		if !byCreation[i].CreatedAt.Equal(byCreation[j].CreatedAt) {
			return byCreation[i].CreatedAt.Before(byCreation[j].CreatedAt)
		}
		return byCreation[i].ID < byCreation[j].ID
	})

	var baseline int64
	for i := 1; i < len(byCreation); i++ {
		minutes, err := cost(ctx, byCreation[i-1].LocationID, byCreation[i].LocationID)
		if err != nil {
			return 0
		}
		baseline += minutes
	}

	if baseline <= chronoTotal {
		return 0
	}
	return baseline - chronoTotal
}
