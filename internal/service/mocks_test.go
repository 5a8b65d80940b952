package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) UpsertWorkingHoursRule(ctx context.Context, rule *models.WorkingHoursRule) error {
	return m.Called(ctx, rule).Error(0)
}
func (m *mockRepo) ReplaceWorkingHours(ctx context.Context, orgID, walkerID string, rules []models.WorkingHoursRule) error {
	return m.Called(ctx, orgID, walkerID, rules).Error(0)
}
func (m *mockRepo) GetWorkingHours(ctx context.Context, orgID, walkerID string) ([]models.WorkingHoursRule, error) {
	args := m.Called(ctx, orgID, walkerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WorkingHoursRule), args.Error(1)
}
func (m *mockRepo) CreateCalendarEvent(ctx context.Context, ev *models.CalendarEvent) error {
	return m.Called(ctx, ev).Error(0)
}
func (m *mockRepo) GetCalendarEvent(ctx context.Context, orgID string, id int64) (*models.CalendarEvent, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarEvent), args.Error(1)
}
func (m *mockRepo) GetCalendarEvents(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]models.CalendarEvent, error) {
	args := m.Called(ctx, orgID, walkerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CalendarEvent), args.Error(1)
}
func (m *mockRepo) DeleteCalendarEvent(ctx context.Context, orgID string, id int64) error {
	return m.Called(ctx, orgID, id).Error(0)
}
func (m *mockRepo) DeleteEventOccurrence(ctx context.Context, orgID string, id int64, date time.Time) error {
	return m.Called(ctx, orgID, id, date).Error(0)
}
func (m *mockRepo) GetEventExceptions(ctx context.Context, orgID, walkerID string) ([]models.EventException, error) {
	args := m.Called(ctx, orgID, walkerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventException), args.Error(1)
}
func (m *mockRepo) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, orgID string, id int64) (*models.Booking, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) TransitionBookingStatus(ctx context.Context, orgID string, id, fromVersion int64, toStatus string) (*models.Booking, error) {
	args := m.Called(ctx, orgID, id, fromVersion, toStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) GetWalkerBookings(ctx context.Context, orgID, walkerID string, date time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, orgID, walkerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetWalkerBookingsInRange(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, orgID, walkerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetOccupiedIntervals(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]models.TimeInterval, error) {
	args := m.Called(ctx, orgID, walkerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TimeInterval), args.Error(1)
}
func (m *mockRepo) GetBookingsByDateRange(ctx context.Context, orgID string, from, to time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, orgID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) CreateSeriesWithBookings(ctx context.Context, series *models.RecurringBookingSeries, occurrences []*models.Booking) (*models.SeriesExpansion, error) {
	args := m.Called(ctx, series, occurrences)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SeriesExpansion), args.Error(1)
}
func (m *mockRepo) GetSeries(ctx context.Context, orgID string, id int64) (*models.RecurringBookingSeries, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecurringBookingSeries), args.Error(1)
}
func (m *mockRepo) GetSeriesBookings(ctx context.Context, orgID string, seriesID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, orgID, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) CancelSeries(ctx context.Context, orgID string, seriesID int64, scope string, now time.Time) (int64, error) {
	args := m.Called(ctx, orgID, seriesID, scope, now)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRepo) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	return m.Called(ctx, task).Error(0)
}
func (m *mockRepo) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyncTask), args.Error(1)
}
func (m *mockRepo) UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	return m.Called(ctx, id, status, errMsg, nextRetryAt).Error(0)
}

type mockEstimator struct {
	mock.Mock
}

func (m *mockEstimator) EstimateMinutes(ctx context.Context, from, to string) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) EnqueueTask(ctx context.Context, taskType string, booking *models.Booking) error {
	return m.Called(ctx, taskType, booking).Error(0)
}
func (m *mockSyncWorker) EnqueueScheduleMirror(ctx context.Context, orgID, walkerID string, date time.Time) error {
	return m.Called(ctx, orgID, walkerID, date).Error(0)
}

func testCatalog() *Catalog {
	return NewCatalog([]models.Service{
		{ID: "walk-30", Name: "30 Minute Walk", DurationMinutes: 30, PriceCents: 2500, IsActive: true, SortOrder: 1},
		{ID: "walk-60", Name: "60 Minute Walk", DurationMinutes: 60, PriceCents: 4500, IsActive: true, SortOrder: 2},
		{ID: "grooming", Name: "Grooming", DurationMinutes: 45, PriceCents: 6000, WalkerIDs: []string{"walker-2"}, IsActive: true, SortOrder: 3},
	})
}
