package dispatch

import (
	"testing"

	"charter/internal/domain/models"
)

func TestLedger_CopiesLoads(t *testing.T) {
	loads := map[int64]int{1: 2}
	l := NewLedger(loads, nil)
	l.Record(1, "2025-06-10", Interval{Start: 480, Duration: 240})
	if loads[1] != 2 {
		t.Fatalf("caller map mutated: %d", loads[1])
	}
	if l.Load(1) != 3 {
		t.Fatalf("load = %d, want 3", l.Load(1))
	}
	if len(l.Slots(1, "2025-06-10")) != 1 {
		t.Fatalf("recorded slot missing")
	}
	if len(l.Slots(1, "2025-06-11")) != 0 {
		t.Fatalf("slot leaked into another date")
	}
}

func TestLedger_MalformedBlocksWholeDay(t *testing.T) {
	l := NewLedger(nil, []models.Commitment{{BookingID: 7, DriverID: 1, TripDate: "2025-06-10", TripTime: "bad"}})
	if got := l.Malformed(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("malformed = %v", got)
	}
	if !HasConflict(Interval{Start: 1380, Duration: 30}, l.Slots(1, "2025-06-10")) {
		t.Fatalf("malformed commitment should block the whole date")
	}
}

func TestCommitmentSlots_ExcludesBooking(t *testing.T) {
	commitments := []models.Commitment{
		{BookingID: 1, DriverID: 5, TripDate: "2025-06-10", TripTime: "08:00"},
		{BookingID: 2, DriverID: 5, TripDate: "2025-06-10", TripTime: "14:00"},
	}
	slots := CommitmentSlots(commitments, 1)
	if len(slots) != 1 || slots[0].Start != 14*60 {
		t.Fatalf("unexpected slots %+v", slots)
	}
	if len(CommitmentSlots(commitments, 0)) != 2 {
		t.Fatalf("zero exclude must keep all")
	}
}
