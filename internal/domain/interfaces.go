package domain

import (
	"context"
	"time"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

type Repository interface {
	UpsertWorkingHoursRule(ctx context.Context, rule *models.WorkingHoursRule) error
	ReplaceWorkingHours(ctx context.Context, orgID, walkerID string, rules []models.WorkingHoursRule) error
	GetWorkingHours(ctx context.Context, orgID, walkerID string) ([]models.WorkingHoursRule, error)

	CreateCalendarEvent(ctx context.Context, ev *models.CalendarEvent) error
	GetCalendarEvent(ctx context.Context, orgID string, id int64) (*models.CalendarEvent, error)
	GetCalendarEvents(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]models.CalendarEvent, error)
	DeleteCalendarEvent(ctx context.Context, orgID string, id int64) error
	DeleteEventOccurrence(ctx context.Context, orgID string, id int64, date time.Time) error
	GetEventExceptions(ctx context.Context, orgID, walkerID string) ([]models.EventException, error)

	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, orgID string, id int64) (*models.Booking, error)
	TransitionBookingStatus(ctx context.Context, orgID string, id, fromVersion int64, toStatus string) (*models.Booking, error)
	GetWalkerBookings(ctx context.Context, orgID, walkerID string, date time.Time) ([]*models.Booking, error)
	GetWalkerBookingsInRange(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]*models.Booking, error)
	GetOccupiedIntervals(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]models.TimeInterval, error)
	GetBookingsByDateRange(ctx context.Context, orgID string, from, to time.Time) ([]*models.Booking, error)

	CreateSeriesWithBookings(ctx context.Context, series *models.RecurringBookingSeries, occurrences []*models.Booking) (*models.SeriesExpansion, error)
	GetSeries(ctx context.Context, orgID string, id int64) (*models.RecurringBookingSeries, error)
	GetSeriesBookings(ctx context.Context, orgID string, seriesID int64) ([]*models.Booking, error)
	CancelSeries(ctx context.Context, orgID string, seriesID int64, scope string, now time.Time) (int64, error)

	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// TravelEstimator answers how long a walker travels between two stops.
type TravelEstimator interface {
	EstimateMinutes(ctx context.Context, fromLocationID, toLocationID string) (int64, error)
}

// TravelCache stores resolved travel estimates keyed by location pair.
type TravelCache interface {
	Get(ctx context.Context, fromLocationID, toLocationID string) (int64, bool, error)
	Set(ctx context.Context, fromLocationID, toLocationID string, minutes int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SheetsWriter interface {
	UpdateScheduleSheet(ctx context.Context, date time.Time, bookings []*models.Booking) error
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, booking *models.Booking) error
	EnqueueScheduleMirror(ctx context.Context, orgID, walkerID string, date time.Time) error
}

type AvailabilityService interface {
	GetAvailableSlots(ctx context.Context, orgID, walkerID, serviceID string, date time.Time) ([]models.Slot, error)
	GetAvailableSlotsRange(ctx context.Context, orgID, walkerID, serviceID string, startDate, endDate time.Time) ([]models.Slot, error)
}

type BookingOperations interface {
	ValidateBookingDate(date time.Time) error
	CreateBooking(ctx context.Context, booking *models.Booking) error
	TransitionBooking(ctx context.Context, orgID string, id, version int64, toStatus string) (*models.Booking, error)
	GetBooking(ctx context.Context, orgID string, id int64) (*models.Booking, error)
}

type RouteOperations interface {
	GetRoute(ctx context.Context, orgID, walkerID string, date time.Time) (*models.RoutePlan, error)
	OptimizeRoute(ctx context.Context, orgID, walkerID string, date time.Time) (*models.RoutePlan, error)
}

type SeriesOperations interface {
	CreateSeries(ctx context.Context, series *models.RecurringBookingSeries) (*models.SeriesExpansion, error)
	CancelSeries(ctx context.Context, orgID string, seriesID int64, scope string) (int64, error)
	GetSeriesBookings(ctx context.Context, orgID string, seriesID int64) ([]*models.Booking, error)
}

type CalendarOperations interface {
	SetWorkingHours(ctx context.Context, orgID, walkerID string, rules []models.WorkingHoursRule) error
	GetWorkingHours(ctx context.Context, orgID, walkerID string) ([]models.WorkingHoursRule, error)
	CreateEvent(ctx context.Context, ev *models.CalendarEvent) error
	ListEvents(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]models.CalendarEvent, error)
	DeleteEvent(ctx context.Context, orgID string, id int64, occurrenceDate *time.Time) error
}
