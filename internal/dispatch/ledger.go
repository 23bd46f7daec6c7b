package dispatch

import "charter/internal/domain/models"

// wholeDay blocks a date for a commitment whose start time cannot be read, so
// a bad row can never hide a real overlap.
var wholeDay = Interval{Start: 0, Duration: 24 * 60}

type slotKey struct {
	driverID int64
	date     string
}

// Ledger is the per-run accumulator of driver loads and same-date commitment
// slots. One ledger lives for one batch run (or one preview) and is dropped
// afterwards; it is not safe for concurrent use.
type Ledger struct {
	loads     map[int64]int
	slots     map[slotKey][]Interval
	malformed []int64
}

// NewLedger copies loads and indexes commitments by (driver, date).
func NewLedger(loads map[int64]int, commitments []models.Commitment) *Ledger {
	l := &Ledger{
		loads: make(map[int64]int, len(loads)),
		slots: make(map[slotKey][]Interval),
	}
	for id, n := range loads {
		l.loads[id] = n
	}
	for _, c := range commitments {
		slot, ok := commitmentSlot(c)
		if !ok {
			l.malformed = append(l.malformed, c.BookingID)
		}
		k := slotKey{driverID: c.DriverID, date: c.TripDate}
		l.slots[k] = append(l.slots[k], slot)
	}
	return l
}

// Load returns the number of committed bookings currently held by driverID.
func (l *Ledger) Load(driverID int64) int {
	return l.loads[driverID]
}

// Slots returns the committed slots of driverID on date.
func (l *Ledger) Slots(driverID int64, date string) []Interval {
	return l.slots[slotKey{driverID: driverID, date: date}]
}

// Record makes a fresh assignment visible to later selections in the run.
func (l *Ledger) Record(driverID int64, date string, slot Interval) {
	l.loads[driverID]++
	k := slotKey{driverID: driverID, date: date}
	l.slots[k] = append(l.slots[k], slot)
}

// Malformed lists bookings whose stored start time could not be parsed.
func (l *Ledger) Malformed() []int64 {
	return l.malformed
}

// CommitmentSlots converts commitments into slots, skipping excludeBookingID
// (the booking being moved during a reassignment).
func CommitmentSlots(commitments []models.Commitment, excludeBookingID int64) []Interval {
	out := make([]Interval, 0, len(commitments))
	for _, c := range commitments {
		if excludeBookingID > 0 && c.BookingID == excludeBookingID {
			continue
		}
		slot, _ := commitmentSlot(c)
		out = append(out, slot)
	}
	return out
}

func commitmentSlot(c models.Commitment) (Interval, bool) {
	slot, err := SlotOf(c.TripTime, c.DurationHours)
	if err != nil {
		return wholeDay, false
	}
	return slot, true
}
