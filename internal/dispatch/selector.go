package dispatch

import (
	"math"
	"sort"

	"charter/internal/domain"
	"charter/internal/domain/models"
)

// Candidate is a category-compatible driver annotated for one booking slot.
type Candidate struct {
	Driver      models.Driver
	Load        int
	HasConflict bool
}

// Decision is the planner's answer for one booking.
type Decision struct {
	Driver models.Driver
	Slot   Interval
	Err    error
}

func (d Decision) Matched() bool {
	return d.Err == nil
}

// FilterCategory keeps drivers whose operated vehicle resolves to the
// requested category, in input order.
func FilterCategory(drivers []models.Driver, requested string) []models.Driver {
	out := make([]models.Driver, 0, len(drivers))
	for _, d := range drivers {
		if SameCategory(requested, d.VehicleType) {
			out = append(out, d)
		}
	}
	return out
}

// Evaluate annotates drivers with their load and whether slot collides with
// their commitments on date. Input order is preserved.
func Evaluate(drivers []models.Driver, date string, slot Interval, l *Ledger) []Candidate {
	out := make([]Candidate, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, Candidate{
			Driver:      d,
			Load:        l.Load(d.ID),
			HasConflict: HasConflict(slot, l.Slots(d.ID, date)),
		})
	}
	return out
}

// Select picks the conflict-free candidate with the fewest commitments. Only a
// strictly lower load replaces the current pick, so the first seen wins ties.
func Select(candidates []Candidate) (Candidate, bool) {
	best := -1
	min := math.MaxInt
	for i, c := range candidates {
		if c.HasConflict {
			continue
		}
		if c.Load < min {
			min = c.Load
			best = i
		}
	}
	if best < 0 {
		return Candidate{}, false
	}
	return candidates[best], true
}

// Rank orders candidates conflict-free first, then by ascending load, keeping
// input order among equals. The head of a ranked list is what Select returns
// whenever Select finds anyone.
func Rank(candidates []Candidate) []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HasConflict != out[j].HasConflict {
			return !out[i].HasConflict
		}
		return out[i].Load < out[j].Load
	})
	return out
}

// Plan runs category filter, conflict check and selection for one booking.
func Plan(b models.Booking, drivers []models.Driver, l *Ledger) Decision {
	slot, err := SlotOf(b.TripTime, b.DurationHours)
	if err != nil {
		return Decision{Err: domain.ValidationError{Field: "trip_time", Msg: "invalid booking time", Err: err}}
	}
	matching := FilterCategory(drivers, b.VehicleCategory)
	if len(matching) == 0 {
		return Decision{Slot: slot, Err: domain.ErrNoCategoryMatch}
	}
	picked, ok := Select(Evaluate(matching, b.TripDate, slot, l))
	if !ok {
		return Decision{Slot: slot, Err: domain.ErrAllConflict}
	}
	return Decision{Driver: picked.Driver, Slot: slot}
}
