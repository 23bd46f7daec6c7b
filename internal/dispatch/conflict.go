package dispatch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultDurationHours is used for commitments stored without a duration.
	DefaultDurationHours = 4.0
	// MaxDurationHours bounds a single trip; longer stored values are clamped.
	MaxDurationHours = 72.0
)

// Interval is a half-open slot [Start, Start+Duration) in minutes since the
// start of its trip date. Start+Duration may run past 1440; it is not wrapped.
type Interval struct {
	Start    int
	Duration int
}

func (i Interval) End() int {
	return i.Start + i.Duration
}

// Overlaps reports whether two slots on the same date intersect. Slots that
// only touch (one ends exactly when the other begins) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End() && i.End() > o.Start
}

// HasConflict reports whether candidate overlaps any of the existing slots.
// Callers pass only slots of the candidate's own trip date.
func HasConflict(candidate Interval, existing []Interval) bool {
	for _, e := range existing {
		if candidate.Overlaps(e) {
			return true
		}
	}
	return false
}

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are accepted for MySQL TIME columns and dropped.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}
	return h*60 + m, nil
}

// ValidDurationHours reports whether h is usable as a requested trip duration:
// finite, not negative and at most MaxDurationHours. Zero means "use default".
func ValidDurationHours(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0) && h >= 0 && h <= MaxDurationHours
}

// DurationMinutes converts a duration in hours to whole minutes, falling back
// to DefaultDurationHours when it is missing, not positive or not finite, and
// clamping it to MaxDurationHours.
func DurationMinutes(hours *float64) int {
	h := DefaultDurationHours
	if hours != nil && *hours > 0 && !math.IsNaN(*hours) && !math.IsInf(*hours, 0) {
		h = math.Min(*hours, MaxDurationHours)
	}
	return int(math.Round(h * 60))
}

// SlotOf builds the interval for a trip start time and duration.
func SlotOf(tripTime string, durationHours *float64) (Interval, error) {
	start, err := ParseClock(tripTime)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, Duration: DurationMinutes(durationHours)}, nil
}
