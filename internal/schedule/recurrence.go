package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

// ValidateSeries rejects malformed recurrence rules before any occurrence is
// created.
func ValidateSeries(s *models.RecurringBookingSeries) error {
	if !models.ValidFrequencies[s.Frequency] {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrenceRule, s.Frequency)
	}
	if s.StartAt.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidRecurrenceRule)
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidRecurrenceRule)
	}

	hasCount := s.OccurrenceCount > 0
	hasUntil := s.UntilDate != nil
	if hasCount == hasUntil {
		return fmt.Errorf("%w: exactly one of occurrence_count or until_date is required", ErrInvalidRecurrenceRule)
	}
	if hasCount && s.OccurrenceCount > models.MaxSeriesOccurrences {
		return fmt.Errorf("%w: occurrence_count exceeds maximum %d", ErrInvalidRecurrenceRule, models.MaxSeriesOccurrences)
	}
	if hasUntil && s.UntilDate.Before(s.StartAt) {
		return fmt.Errorf("%w: until_date precedes the first occurrence", ErrInvalidRecurrenceRule)
	}
	return nil
}

// ExpandSeries materializes the series into concrete bookings, one per
// occurrence, numbered from 1. The expansion is pure: conflict checking
// against the ledger happens when the occurrences are written.
func ExpandSeries(s *models.RecurringBookingSeries) ([]*models.Booking, error) {
	if err := ValidateSeries(s); err != nil {
		return nil, err
	}

	duration := time.Duration(s.DurationMinutes) * time.Minute
	var bookings []*models.Booking
	for n := 0; n < models.MaxSeriesOccurrences; n++ {
		if s.OccurrenceCount > 0 && n >= s.OccurrenceCount {
			break
		}
		start := StepOccurrence(s.StartAt, s.Frequency, n)
		if s.UntilDate != nil && start.After(*s.UntilDate) {
			break
		}

		bookings = append(bookings, &models.Booking{
			Reference:        uuid.NewString(),
			OrgID:            s.OrgID,
			WalkerID:         s.WalkerID,
			CustomerID:       s.CustomerID,
			ServiceID:        s.ServiceID,
			LocationID:       s.LocationID,
			StartAt:          start.UTC(),
			EndAt:            start.Add(duration).UTC(),
			Status:           models.StatusPending,
			SeriesID:         s.ID,
			OccurrenceNumber: n + 1,
		})
	}
	return bookings, nil
}
