package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
	"github.com/kcirtapfromspace/offleash-sub004/internal/travel"
)

func routeBooking(id int64, loc string, start time.Time) *models.Booking {
	return &models.Booking{
		ID: id, OrgID: "org-1", WalkerID: "walker-1", LocationID: loc,
		StartAt: start, EndAt: start.Add(30 * time.Minute),
		Status: models.StatusConfirmed, CreatedAt: start.Add(-time.Duration(id) * time.Hour),
	}
}

func TestGetRoute(t *testing.T) {
	repo := &mockRepo{}
	estimator := &mockEstimator{}
	svc := NewRouteService(repo, estimator, nil, testLogger())

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	bookings := []*models.Booking{
		routeBooking(1, "loc-a", date.Add(9*time.Hour)),
		routeBooking(2, "loc-b", date.Add(11*time.Hour)),
	}
	repo.On("GetWalkerBookings", mock.Anything, "org-1", "walker-1", date).Return(bookings, nil)
	estimator.On("EstimateMinutes", mock.Anything, "loc-a", "loc-b").Return(int64(12), nil)

	plan, err := svc.GetRoute(context.Background(), "org-1", "walker-1", date)
	require.NoError(t, err)

	assert.True(t, plan.IsOptimized)
	require.Len(t, plan.Stops, 2)
	assert.Equal(t, int64(1), plan.Stops[0].BookingID)
	assert.Nil(t, plan.Stops[0].TravelFromPreviousMinutes)
	require.NotNil(t, plan.Stops[1].TravelFromPreviousMinutes)
	assert.Equal(t, int64(12), *plan.Stops[1].TravelFromPreviousMinutes)
	assert.Equal(t, int64(12), plan.TotalTravelMinutes)
}

func TestGetRouteDegradedOnProviderFailure(t *testing.T) {
	repo := &mockRepo{}
	estimator := &mockEstimator{}
	svc := NewRouteService(repo, estimator, nil, testLogger())

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	bookings := []*models.Booking{
		routeBooking(1, "loc-a", date.Add(9*time.Hour)),
		routeBooking(2, "loc-b", date.Add(11*time.Hour)),
	}
	repo.On("GetWalkerBookings", mock.Anything, "org-1", "walker-1", date).Return(bookings, nil)
	estimator.On("EstimateMinutes", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), travel.ErrProviderUnavailable)

	plan, err := svc.GetRoute(context.Background(), "org-1", "walker-1", date)
	require.NoError(t, err)

	// The route is still served in stop order, just without annotations.
	assert.False(t, plan.IsOptimized)
	require.Len(t, plan.Stops, 2)
	assert.Equal(t, int64(1), plan.Stops[0].BookingID)
	assert.Equal(t, int64(2), plan.Stops[1].BookingID)
	assert.Nil(t, plan.Stops[1].TravelFromPreviousMinutes)
}

func TestGetRouteEmptyDay(t *testing.T) {
	repo := &mockRepo{}
	svc := NewRouteService(repo, &mockEstimator{}, nil, testLogger())

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	repo.On("GetWalkerBookings", mock.Anything, "org-1", "walker-1", date).Return([]*models.Booking{}, nil)

	plan, err := svc.GetRoute(context.Background(), "org-1", "walker-1", date)
	require.NoError(t, err)
	assert.Empty(t, plan.Stops)
	assert.Zero(t, plan.TotalTravelMinutes)
}

func TestOptimizeRouteEnqueuesMirror(t *testing.T) {
	repo := &mockRepo{}
	estimator := &mockEstimator{}
	worker := &mockSyncWorker{}
	svc := NewRouteService(repo, estimator, worker, testLogger())

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	bookings := []*models.Booking{routeBooking(1, "loc-a", date.Add(9*time.Hour))}
	repo.On("GetWalkerBookings", mock.Anything, "org-1", "walker-1", date).Return(bookings, nil)
	worker.On("EnqueueScheduleMirror", mock.Anything, "org-1", "walker-1", date).Return(nil)

	plan, err := svc.OptimizeRoute(context.Background(), "org-1", "walker-1", date)
	require.NoError(t, err)
	assert.Len(t, plan.Stops, 1)

	worker.AssertExpectations(t)
}
