package schedule

import (
	"fmt"
	"time"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

// WorkingHoursCalendar answers "when is this walker open on a given date"
// from the walker's per-weekday rules. The storage layer guarantees at most
// one active rule per weekday.
type WorkingHoursCalendar struct {
	byWeekday map[int]models.WorkingHoursRule
}

func NewWorkingHoursCalendar(rules []models.WorkingHoursRule) *WorkingHoursCalendar {
	byDay := make(map[int]models.WorkingHoursRule, len(rules))
	for _, r := range rules {
		if r.IsActive {
			byDay[r.DayOfWeek] = r
		}
	}
	return &WorkingHoursCalendar{byWeekday: byDay}
}

// IntervalsFor returns the open intervals for a civil date, in UTC. An empty
// result means the walker is unavailable that day; it is not an error.
func (c *WorkingHoursCalendar) IntervalsFor(year int, month time.Month, day int) []models.TimeInterval {
	// Weekday is evaluated per-rule in the rule's own timezone so that a
	// walker in Denver gets Denver's Monday, not UTC's.
	for weekday, rule := range c.byWeekday {
		loc := rule.Location()
		midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
		if int(midnight.Weekday()) != weekday {
			continue
		}

		startH, startM, err := parseHHMM(rule.StartTime)
		if err != nil {
			continue
		}
		endH, endM, err := parseHHMM(rule.EndTime)
		if err != nil {
			continue
		}

		iv := models.NewInterval(
			time.Date(year, month, day, startH, startM, 0, 0, loc),
			time.Date(year, month, day, endH, endM, 0, 0, loc),
		)
		if !iv.IsValid() {
			return nil
		}
		return []models.TimeInterval{iv}
	}
	return nil
}

// parseHHMM parses "HH:MM" (a longer "HH:MM:SS…" suffix is tolerated).
func parseHHMM(s string) (hour, minute int, err error) {
	if len(s) > 5 {
		s = s[:5]
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
