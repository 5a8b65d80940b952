package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

func weeklySeries() *models.RecurringBookingSeries {
	return &models.RecurringBookingSeries{
		ID:              42,
		OrgID:           "org-1",
		CustomerID:      "cust-1",
		WalkerID:        "walker-1",
		ServiceID:       "svc-walk-30",
		LocationID:      "loc-a",
		Frequency:       models.FrequencyWeekly,
		StartAt:         at(9, 0),
		DurationMinutes: 30,
		OccurrenceCount: 4,
		IsActive:        true,
	}
}

func TestExpandSeriesOccurrenceCount(t *testing.T) {
	bookings, err := ExpandSeries(weeklySeries())
	require.NoError(t, err)
	require.Len(t, bookings, 4)

	for i, b := range bookings {
		assert.Equal(t, i+1, b.OccurrenceNumber)
		assert.Equal(t, at(9, 0).AddDate(0, 0, 7*i), b.StartAt)
		assert.Equal(t, 30*time.Minute, b.Interval().Duration())
		assert.Equal(t, models.StatusPending, b.Status)
		assert.Equal(t, int64(42), b.SeriesID)
		assert.NotEmpty(t, b.Reference)
	}
}

func TestExpandSeriesUntilDate(t *testing.T) {
	s := weeklySeries()
	s.OccurrenceCount = 0
	until := at(9, 0).AddDate(0, 0, 15)
	s.UntilDate = &until

	bookings, err := ExpandSeries(s)
	require.NoError(t, err)
	// Anchor + two weekly steps fit inside 15 days.
	assert.Len(t, bookings, 3)
}

func TestExpandSeriesBiweeklySpacing(t *testing.T) {
	s := weeklySeries()
	s.Frequency = models.FrequencyBiweekly
	s.OccurrenceCount = 3

	bookings, err := ExpandSeries(s)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	assert.Equal(t, 14*24*time.Hour, bookings[1].StartAt.Sub(bookings[0].StartAt))
	assert.Equal(t, 14*24*time.Hour, bookings[2].StartAt.Sub(bookings[1].StartAt))
}

func TestExpandSeriesMonthly(t *testing.T) {
	s := weeklySeries()
	s.Frequency = models.FrequencyMonthly
	s.OccurrenceCount = 2

	bookings, err := ExpandSeries(s)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, at(9, 0).AddDate(0, 1, 0), bookings[1].StartAt)
}

func TestValidateSeriesRejections(t *testing.T) {
	until := at(9, 0).AddDate(0, 0, 30)

	tests := []struct {
		name   string
		mutate func(*models.RecurringBookingSeries)
	}{
		{"unknown frequency", func(s *models.RecurringBookingSeries) { s.Frequency = "fortnightly" }},
		{"zero duration", func(s *models.RecurringBookingSeries) { s.DurationMinutes = 0 }},
		{"no end condition", func(s *models.RecurringBookingSeries) { s.OccurrenceCount = 0 }},
		{"both end conditions", func(s *models.RecurringBookingSeries) { s.UntilDate = &until }},
		{"count over cap", func(s *models.RecurringBookingSeries) { s.OccurrenceCount = models.MaxSeriesOccurrences + 1 }},
		{"until before anchor", func(s *models.RecurringBookingSeries) {
			s.OccurrenceCount = 0
			past := s.StartAt.AddDate(0, 0, -1)
			s.UntilDate = &past
		}},
		{"zero start", func(s *models.RecurringBookingSeries) { s.StartAt = time.Time{} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := weeklySeries()
			tc.mutate(s)
			err := ValidateSeries(s)
			assert.ErrorIs(t, err, ErrInvalidRecurrenceRule)

			_, err = ExpandSeries(s)
			assert.ErrorIs(t, err, ErrInvalidRecurrenceRule)
		})
	}
}
