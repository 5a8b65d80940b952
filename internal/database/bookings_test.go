package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testBooking(walkerID string, start time.Time, minutes int) *models.Booking {
	return &models.Booking{
		OrgID:      "org-1",
		WalkerID:   walkerID,
		CustomerID: "cust-1",
		ServiceID:  "walk-30",
		LocationID: "loc-1",
		StartAt:    start,
		EndAt:      start.Add(time.Duration(minutes) * time.Minute),
		Status:     models.StatusPending,
		PriceCents: 2500,
	}
}

func TestCreateBookingWithLock(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

	booking := testBooking("walker-1", start, 30)
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))
	assert.NotZero(t, booking.ID)
	assert.NotEmpty(t, booking.Reference)
	assert.Equal(t, int64(1), booking.Version)

	got, err := db.GetBooking(ctx, "org-1", booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.Reference, got.Reference)
	assert.True(t, got.StartAt.Equal(start))
	assert.True(t, got.EndAt.Equal(start.Add(30*time.Minute)))
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestCreateBookingWithLockRejectsOverlap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", start, 30)))

	// Partial overlap with the active booking.
	err := db.CreateBookingWithLock(ctx, testBooking("walker-1", start.Add(15*time.Minute), 30))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Same window, different walker is fine.
	assert.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-2", start, 30)))
}

func TestCreateBookingWithLockAdjacentWindows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", start, 30)))

	// [14:30, 15:00) touches [14:00, 14:30) only at the boundary.
	assert.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", start.Add(30*time.Minute), 30)))
	// [13:30, 14:00) touches on the other side.
	assert.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", start.Add(-30*time.Minute), 30)))
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

	first := testBooking("walker-1", start, 30)
	require.NoError(t, db.CreateBookingWithLock(ctx, first))

	_, err := db.TransitionBookingStatus(ctx, "org-1", first.ID, 0, models.StatusCancelled)
	require.NoError(t, err)

	// The window is free again once the holder is cancelled.
	assert.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", start, 30)))
}

func TestTransitionBookingStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	booking := testBooking("walker-1", start, 60)
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))

	got, err := db.TransitionBookingStatus(ctx, "org-1", booking.ID, 0, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, int64(2), got.Version)

	got, err = db.TransitionBookingStatus(ctx, "org-1", booking.ID, got.Version, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	got, err = db.TransitionBookingStatus(ctx, "org-1", booking.ID, got.Version, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	// Completed is terminal.
	_, err = db.TransitionBookingStatus(ctx, "org-1", booking.ID, 0, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionBookingStatusInvalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	booking := testBooking("walker-1", start, 30)
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))

	// Pending cannot jump straight to in_progress.
	_, err := db.TransitionBookingStatus(ctx, "org-1", booking.ID, 0, models.StatusInProgress)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// The row is untouched after the failed transition.
	got, err := db.GetBooking(ctx, "org-1", booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, int64(1), got.Version)
}

func TestTransitionBookingStatusVersionConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	booking := testBooking("walker-1", start, 30)
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))

	_, err := db.TransitionBookingStatus(ctx, "org-1", booking.ID, 0, models.StatusConfirmed)
	require.NoError(t, err)

	// Stale version from before the confirm.
	_, err = db.TransitionBookingStatus(ctx, "org-1", booking.ID, 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestTransitionBookingStatusNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.TransitionBookingStatus(ctx, "org-1", 9999, 0, models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetBookingScopedToOrg(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	booking := testBooking("walker-1", start, 30)
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))

	_, err := db.GetBooking(ctx, "other-org", booking.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetWalkerBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// Out of order inserts; reads must come back sorted by start time.
	require.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", day.Add(15*time.Hour), 30)))
	require.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", day.Add(9*time.Hour), 30)))
	require.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", day.Add(12*time.Hour), 30)))
	// Next day, excluded.
	require.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", day.AddDate(0, 0, 1).Add(9*time.Hour), 30)))
	// Other walker, excluded.
	require.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-2", day.Add(9*time.Hour), 30)))

	bookings, err := db.GetWalkerBookings(ctx, "org-1", "walker-1", day)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	assert.True(t, bookings[0].StartAt.Equal(day.Add(9*time.Hour)))
	assert.True(t, bookings[1].StartAt.Equal(day.Add(12*time.Hour)))
	assert.True(t, bookings[2].StartAt.Equal(day.Add(15*time.Hour)))
}

func TestGetOccupiedIntervalsExcludesInactive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	active := testBooking("walker-1", day.Add(9*time.Hour), 30)
	require.NoError(t, db.CreateBookingWithLock(ctx, active))

	cancelled := testBooking("walker-1", day.Add(11*time.Hour), 30)
	require.NoError(t, db.CreateBookingWithLock(ctx, cancelled))
	_, err := db.TransitionBookingStatus(ctx, "org-1", cancelled.ID, 0, models.StatusCancelled)
	require.NoError(t, err)

	intervals, err := db.GetOccupiedIntervals(ctx, "org-1", "walker-1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Start.Equal(active.StartAt))
}

func TestGetBookingsByDateRangeIncludesAllStatuses(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	active := testBooking("walker-1", day.Add(9*time.Hour), 30)
	require.NoError(t, db.CreateBookingWithLock(ctx, active))

	cancelled := testBooking("walker-1", day.Add(11*time.Hour), 30)
	require.NoError(t, db.CreateBookingWithLock(ctx, cancelled))
	_, err := db.TransitionBookingStatus(ctx, "org-1", cancelled.ID, 0, models.StatusCancelled)
	require.NoError(t, err)

	bookings, err := db.GetBookingsByDateRange(ctx, "org-1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}

func TestGetWalkerBookingsUsesRuleTimezone(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertWorkingHoursRule(ctx, &models.WorkingHoursRule{
		OrgID: "org-1", WalkerID: "walker-1", DayOfWeek: 1,
		StartTime: "09:00", EndTime: "23:30",
		Timezone: "America/Denver", IsActive: true,
	}))

	denver, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)

	// 2026-09-07 is a Monday. 23:00 in Denver is already Tuesday in UTC.
	lateMonday := time.Date(2026, 9, 7, 23, 0, 0, 0, denver)
	require.NoError(t, db.CreateBookingWithLock(ctx, testBooking("walker-1", lateMonday, 30)))

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	bookings, err := db.GetWalkerBookings(ctx, "org-1", "walker-1", monday)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.True(t, bookings[0].StartAt.Equal(lateMonday))

	tuesday := monday.AddDate(0, 0, 1)
	bookings, err = db.GetWalkerBookings(ctx, "org-1", "walker-1", tuesday)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}
