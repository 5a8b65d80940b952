package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	a := NewInterval(ts(10, 0), ts(10, 30))

	assert.True(t, a.Overlaps(NewInterval(ts(10, 15), ts(10, 45))))
	assert.True(t, a.Overlaps(NewInterval(ts(9, 45), ts(10, 15))))
	assert.True(t, a.Overlaps(NewInterval(ts(9, 0), ts(11, 0))))

	// Half-open: touching endpoints do not overlap.
	assert.False(t, a.Overlaps(NewInterval(ts(10, 30), ts(11, 0))))
	assert.False(t, a.Overlaps(NewInterval(ts(9, 30), ts(10, 0))))
}

func TestIntervalContains(t *testing.T) {
	outer := NewInterval(ts(8, 0), ts(18, 0))
	assert.True(t, outer.Contains(NewInterval(ts(8, 0), ts(9, 0))))
	assert.True(t, outer.Contains(outer))
	assert.False(t, outer.Contains(NewInterval(ts(17, 30), ts(18, 30))))
}

func TestIntervalValidity(t *testing.T) {
	assert.True(t, NewInterval(ts(9, 0), ts(9, 30)).IsValid())
	assert.False(t, NewInterval(ts(9, 30), ts(9, 30)).IsValid())
	assert.False(t, NewInterval(ts(10, 0), ts(9, 0)).IsValid())
}

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, StatusCompleted, false},
		{StatusInProgress, StatusCancelled, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestBookingIsActive(t *testing.T) {
	for _, status := range []string{StatusPending, StatusConfirmed, StatusInProgress} {
		b := Booking{Status: status}
		assert.True(t, b.IsActive(), status)
	}
	for _, status := range []string{StatusCompleted, StatusCancelled} {
		b := Booking{Status: status}
		assert.False(t, b.IsActive(), status)
	}
}

func TestWorkingHoursRuleLocation(t *testing.T) {
	rule := WorkingHoursRule{Timezone: "America/Denver"}
	assert.Equal(t, "America/Denver", rule.Location().String())

	rule = WorkingHoursRule{}
	assert.Equal(t, time.UTC, rule.Location())

	rule = WorkingHoursRule{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, rule.Location())
}
