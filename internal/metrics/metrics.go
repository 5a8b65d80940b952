package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "offleash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "offleash",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted by the overlap guard.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "offleash",
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken.",
		},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "offleash",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"to_status"},
	)

	slotQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "offleash",
			Name:      "slot_queries_total",
			Help:      "Availability slot computations.",
		},
	)

	routePlans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "offleash",
			Name:      "route_plans_total",
			Help:      "Route plans by mode (optimized or degraded).",
		},
		[]string{"mode"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			bookingConflicts,
			bookingTransitions,
			slotQueries,
			routePlans,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncBookingTransition(toStatus string) {
	bookingTransitions.WithLabelValues(toStatus).Inc()
}

func IncSlotQuery() {
	slotQueries.Inc()
}

// IncRoutePlan records a route computation; optimized is false when the
// travel provider was unavailable and the plan degraded to bare ordering.
func IncRoutePlan(optimized bool) {
	mode := "optimized"
	if !optimized {
		mode = "degraded"
	}
	routePlans.WithLabelValues(mode).Inc()
}
