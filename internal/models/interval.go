package models

import "time"

// TimeInterval is a half-open interval [Start, End) in UTC.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) TimeInterval {
	return TimeInterval{Start: start.UTC(), End: end.UTC()}
}

// IsValid reports whether Start < End.
func (i TimeInterval) IsValid() bool {
	return i.Start.Before(i.End)
}

func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether the two half-open intervals share any instant.
// Touching endpoints ([a,b) and [b,c)) do not overlap.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies entirely within i.
func (i TimeInterval) Contains(other TimeInterval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Pad widens the interval by the given margins, clamped to zero duration.
func (i TimeInterval) Pad(before, after time.Duration) TimeInterval {
	return TimeInterval{Start: i.Start.Add(-before), End: i.End.Add(after)}
}
