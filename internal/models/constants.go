package models

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

const (
	CancelScopeAllFuture    = "all_future"
	CancelScopeEntireSeries = "entire_series"
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

const (
	// DefaultSlotGranularityMinutes is the slot alignment boundary.
	DefaultSlotGranularityMinutes = 30

	// DefaultTravelBufferMinutes is applied around existing stops when the
	// travel provider cannot give a real estimate.
	DefaultTravelBufferMinutes = 15

	// MaxSeriesOccurrences caps recurring series expansion.
	MaxSeriesOccurrences = 104

	// DefaultMaxBookingDays is the booking horizon.
	DefaultMaxBookingDays = 365

	// WorkerQueueSize is the sync worker in-memory queue size.
	WorkerQueueSize = 1000

	// TravelCacheTTL is the redis TTL for cached travel minutes (seconds).
	TravelCacheTTL = 60 * 60

	// RateLimitRPS is the default per-client request rate.
	RateLimitRPS = 20
)

// ActiveBookingStatuses are the statuses that occupy a walker's time.
var ActiveBookingStatuses = []string{StatusPending, StatusConfirmed, StatusInProgress}

// ValidFrequencies enumerates supported recurrence frequencies.
var ValidFrequencies = map[string]bool{
	FrequencyDaily:    true,
	FrequencyWeekly:   true,
	FrequencyBiweekly: true,
	FrequencyMonthly:  true,
}
