package schedule

import (
	"context"
	"time"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

// TravelEstimateFunc returns travel minutes between two locations. It may
// fail; slot generation then falls back to the configured default buffer.
type TravelEstimateFunc func(ctx context.Context, fromLocationID, toLocationID string) (int64, error)

// SlotConfig tunes slot generation.
type SlotConfig struct {
	Granularity      time.Duration
	TravelBuffer     time.Duration // fallback buffer around existing stops
	HighSlackRatio   float64       // slack/buffer at or above which confidence is high
	MediumSlackRatio float64
}

func (c SlotConfig) withDefaults() SlotConfig {
	if c.Granularity <= 0 {
		c.Granularity = time.Duration(models.DefaultSlotGranularityMinutes) * time.Minute
	}
	if c.TravelBuffer < 0 {
		c.TravelBuffer = 0
	}
	if c.HighSlackRatio <= 0 {
		c.HighSlackRatio = 1.5
	}
	if c.MediumSlackRatio <= 0 {
		c.MediumSlackRatio = 1.0
	}
	return c
}

// DaySchedule is the availability snapshot for one walker and date.
type DaySchedule struct {
	WalkerID string
	Working  []models.TimeInterval
	Blocking []models.TimeInterval
	Bookings []*models.Booking // active bookings only
}

// SlotGenerator turns day schedules into bookable slots.
type SlotGenerator struct {
	cfg      SlotConfig
	estimate TravelEstimateFunc // optional
}

func NewSlotGenerator(cfg SlotConfig, estimate TravelEstimateFunc) *SlotGenerator {
	return &SlotGenerator{cfg: cfg.withDefaults(), estimate: estimate}
}

// SlotsForDay computes every bookable slot of serviceDuration for the day:
// working hours minus blocking events minus travel-buffered bookings, emitted
// on granularity boundaries. Each slot carries a confidence label reflecting
// how much slack remains toward the neighboring stops.
func (g *SlotGenerator) SlotsForDay(ctx context.Context, day DaySchedule, serviceDuration time.Duration) []models.Slot {
	if serviceDuration <= 0 || len(day.Working) == 0 {
		return nil
	}

	occupied := make([]models.TimeInterval, 0, len(day.Bookings))
	padded := make([]models.TimeInterval, 0, len(day.Bookings))
	for i, b := range day.Bookings {
		iv := b.Interval()
		occupied = append(occupied, iv)
		buffer := g.bufferFor(ctx, day.Bookings, i)
		padded = append(padded, iv.Pad(buffer, buffer))
	}

	removals := append(append([]models.TimeInterval{}, day.Blocking...), padded...)
	free := Subtract(day.Working, removals)

	busy := Merge(occupied)
	var slots []models.Slot
	for _, iv := range free {
		for _, slot := range AlignedSlots(iv, serviceDuration, g.cfg.Granularity) {
			slots = append(slots, models.Slot{
				WalkerID:   day.WalkerID,
				StartTime:  slot.Start.Format(time.RFC3339),
				EndTime:    slot.End.Format(time.RFC3339),
				Confidence: g.confidence(slot, busy),
				Interval:   slot,
			})
		}
	}
	return slots
}

// bufferFor picks the travel padding for one booking: the larger estimated
// leg toward its chronological neighbors when the provider answers, the
// configured default otherwise.
func (g *SlotGenerator) bufferFor(ctx context.Context, bookings []*models.Booking, idx int) time.Duration {
	if g.cfg.TravelBuffer == 0 {
		return 0
	}
	if g.estimate == nil {
		return g.cfg.TravelBuffer
	}

	var maxMinutes int64 = -1
	cur := bookings[idx]
	for _, neighborIdx := range []int{idx - 1, idx + 1} {
		if neighborIdx < 0 || neighborIdx >= len(bookings) {
			continue
		}
		minutes, err := g.estimate(ctx, cur.LocationID, bookings[neighborIdx].LocationID)
		if err != nil {
			continue
		}
		if minutes > maxMinutes {
			maxMinutes = minutes
		}
	}
	if maxMinutes < 0 {
		return g.cfg.TravelBuffer
	}
	return time.Duration(maxMinutes) * time.Minute
}

// confidence buckets the free slack between a slot and its nearest occupied
// neighbor against the required travel buffer.
func (g *SlotGenerator) confidence(slot models.TimeInterval, busy []models.TimeInterval) string {
	if g.cfg.TravelBuffer == 0 {
		return models.ConfidenceHigh
	}

	nearest := time.Duration(-1)
	for _, iv := range busy {
		var gap time.Duration
		switch {
		case !iv.End.After(slot.Start):
			gap = slot.Start.Sub(iv.End)
		case !slot.End.After(iv.Start):
			gap = iv.Start.Sub(slot.End)
		default:
			continue
		}
		if nearest < 0 || gap < nearest {
			nearest = gap
		}
	}
	if nearest < 0 {
		return models.ConfidenceHigh
	}

	ratio := float64(nearest) / float64(g.cfg.TravelBuffer)
	switch {
	case ratio >= g.cfg.HighSlackRatio:
		return models.ConfidenceHigh
	case ratio >= g.cfg.MediumSlackRatio:
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}
