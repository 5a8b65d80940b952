package schedule

import (
	"sort"
	"time"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

// Merge coalesces overlapping or adjacent intervals into maximal disjoint
// intervals sorted by start. Invalid (zero or negative length) intervals are
// dropped. The input is not modified.
func Merge(intervals []models.TimeInterval) []models.TimeInterval {
	valid := make([]models.TimeInterval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.IsValid() {
			valid = append(valid, iv)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Start.Before(valid[j].Start) })

	merged := []models.TimeInterval{valid[0]}
	for _, iv := range valid[1:] {
		last := &merged[len(merged)-1]
		// Adjacent counts as mergeable: [a,b) + [b,c) = [a,c).
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Subtract removes the removal set from the base set and returns the maximal
// remaining disjoint intervals. Removals are coalesced first.
func Subtract(base, removals []models.TimeInterval) []models.TimeInterval {
	free := Merge(base)
	if len(free) == 0 {
		return nil
	}
	cuts := Merge(removals)
	if len(cuts) == 0 {
		return free
	}

	var result []models.TimeInterval
	for _, iv := range free {
		segStart := iv.Start
		for _, cut := range cuts {
			if !cut.Start.Before(iv.End) {
				break
			}
			if !cut.End.After(segStart) {
				continue
			}
			if cut.Start.After(segStart) {
				result = append(result, models.TimeInterval{Start: segStart, End: cut.Start})
			}
			if cut.End.After(segStart) {
				segStart = cut.End
			}
		}
		if segStart.Before(iv.End) {
			result = append(result, models.TimeInterval{Start: segStart, End: iv.End})
		}
	}
	return result
}

// AlignedSlots emits every sub-interval of exactly duration that fits fully
// inside free, with starts aligned to the granularity boundary (measured
// against the UTC day grid).
func AlignedSlots(free models.TimeInterval, duration, granularity time.Duration) []models.TimeInterval {
	if duration <= 0 || !free.IsValid() {
		return nil
	}
	if granularity <= 0 {
		granularity = time.Duration(models.DefaultSlotGranularityMinutes) * time.Minute
	}

	start := ceilTo(free.Start, granularity)
	var slots []models.TimeInterval
	for ; !start.Add(duration).After(free.End); start = start.Add(granularity) {
		slots = append(slots, models.TimeInterval{Start: start, End: start.Add(duration)})
	}
	return slots
}

// ceilTo rounds t up to the next granularity boundary.
func ceilTo(t time.Time, granularity time.Duration) time.Time {
	rounded := t.Truncate(granularity)
	if rounded.Before(t) {
		rounded = rounded.Add(granularity)
	}
	return rounded
}

// TotalDuration sums the lengths of a set of intervals.
func TotalDuration(intervals []models.TimeInterval) time.Duration {
	var total time.Duration
	for _, iv := range intervals {
		if iv.IsValid() {
			total += iv.Duration()
		}
	}
	return total
}
