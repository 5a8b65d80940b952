package schedule

import (
	"strconv"
	"time"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

// BlockingIntervals expands the walker's blocking calendar events inside
// [from, to) into concrete intervals and coalesces them. Non-blocking events
// are informational and excluded. Exceptions suppress single occurrences of
// recurring events.
func BlockingIntervals(events []models.CalendarEvent, exceptions []models.EventException, from, to time.Time) []models.TimeInterval {
	excluded := make(map[string]bool, len(exceptions))
	for _, ex := range exceptions {
		excluded[exceptionKey(ex.EventID, ex.Date)] = true
	}

	var intervals []models.TimeInterval
	for i := range events {
		ev := &events[i]
		if !ev.IsBlocking {
			continue
		}
		for _, occ := range expandEvent(ev, from, to) {
			if excluded[exceptionKey(ev.ID, occ.Start)] {
				continue
			}
			intervals = append(intervals, occ)
		}
	}
	return Merge(intervals)
}

// expandEvent materializes an event's occurrences overlapping [from, to).
func expandEvent(ev *models.CalendarEvent, from, to time.Time) []models.TimeInterval {
	base := ev.Interval()
	if !base.IsValid() {
		return nil
	}
	if !ev.IsRecurring() {
		if base.Overlaps(models.TimeInterval{Start: from, End: to}) {
			return []models.TimeInterval{base}
		}
		return nil
	}

	window := models.TimeInterval{Start: from, End: to}
	var occurrences []models.TimeInterval
	for n := 0; n < models.MaxSeriesOccurrences; n++ {
		start := StepOccurrence(base.Start, ev.RecurFrequency, n)
		occ := models.TimeInterval{Start: start, End: start.Add(base.Duration())}
		if ev.RecurUntil != nil && occ.Start.After(*ev.RecurUntil) {
			break
		}
		if !occ.Start.Before(to) {
			break
		}
		if occ.Overlaps(window) {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences
}

// StepOccurrence returns the n-th occurrence start (0-based) for an anchor
// and frequency. Monthly steps follow time.AddDate normalization.
func StepOccurrence(anchor time.Time, frequency string, n int) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return anchor.AddDate(0, 0, n)
	case models.FrequencyWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case models.FrequencyBiweekly:
		return anchor.AddDate(0, 0, 14*n)
	case models.FrequencyMonthly:
		return anchor.AddDate(0, n, 0)
	}
	return anchor
}

func exceptionKey(eventID int64, start time.Time) string {
	return strconv.FormatInt(eventID, 10) + "#" + start.UTC().Format("2006-01-02")
}
