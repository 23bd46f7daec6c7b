package dispatch

import (
	"errors"
	"testing"

	"charter/internal/domain"
	"charter/internal/domain/models"
)

func drv(id int64, name, vehicle string) models.Driver {
	return models.Driver{ID: id, Name: name, VehicleType: vehicle, Available: true, AccountStatus: models.AccountActive}
}

func TestSelect_LowestLoadWins(t *testing.T) {
	cands := []Candidate{
		{Driver: drv(1, "D1", "bus_45"), Load: 2},
		{Driver: drv(2, "D2", "bus_45"), Load: 1},
		{Driver: drv(3, "D3", "bus_45"), Load: 1},
	}
	got, ok := Select(cands)
	if !ok {
		t.Fatalf("expected a selection")
	}
	if got.Driver.ID != 2 {
		t.Fatalf("expected D2 (first of lowest load), got %d", got.Driver.ID)
	}
}

func TestSelect_SkipsConflicting(t *testing.T) {
	cands := []Candidate{
		{Driver: drv(1, "D1", "bus_45"), Load: 0, HasConflict: true},
		{Driver: drv(2, "D2", "bus_45"), Load: 5},
	}
	got, ok := Select(cands)
	if !ok || got.Driver.ID != 2 {
		t.Fatalf("expected D2, got %+v ok=%v", got, ok)
	}
}

func TestSelect_NoneAvailable(t *testing.T) {
	if _, ok := Select(nil); ok {
		t.Fatalf("empty list must not select")
	}
	cands := []Candidate{{Driver: drv(1, "D1", "bus_45"), HasConflict: true}}
	if _, ok := Select(cands); ok {
		t.Fatalf("all-conflict list must not select")
	}
}

func TestRank_HeadMatchesSelect(t *testing.T) {
	cands := []Candidate{
		{Driver: drv(1, "D1", "bus_45"), Load: 0, HasConflict: true},
		{Driver: drv(2, "D2", "bus_45"), Load: 3},
		{Driver: drv(3, "D3", "bus_45"), Load: 1},
		{Driver: drv(4, "D4", "bus_45"), Load: 1},
	}
	ranked := Rank(cands)
	picked, ok := Select(cands)
	if !ok {
		t.Fatalf("expected a selection")
	}
	if ranked[0].Driver.ID != picked.Driver.ID {
		t.Fatalf("rank head %d differs from selection %d", ranked[0].Driver.ID, picked.Driver.ID)
	}
	want := []int64{3, 4, 2, 1}
	for i, id := range want {
		if ranked[i].Driver.ID != id {
			t.Fatalf("rank[%d] = %d, want %d", i, ranked[i].Driver.ID, id)
		}
	}
	if cands[0].Driver.ID != 1 {
		t.Fatalf("Rank must not reorder its input")
	}
}

func TestPlan_Reasons(t *testing.T) {
	drivers := []models.Driver{drv(1, "DL1", "bus_45"), drv(2, "DS1", "van_15")}

	bad := Plan(models.Booking{ID: 1, VehicleCategory: "large", TripDate: "2025-06-10", TripTime: "25:00"}, drivers, NewLedger(nil, nil))
	if !domain.IsValidation(bad.Err) || bad.Err.Error() != "trip_time: invalid booking time" {
		t.Fatalf("expected invalid booking time, got %v", bad.Err)
	}

	none := Plan(models.Booking{ID: 2, VehicleCategory: "limousine", TripDate: "2025-06-10", TripTime: "08:00"}, drivers, NewLedger(nil, nil))
	if !errors.Is(none.Err, domain.ErrNoCategoryMatch) {
		t.Fatalf("expected no category match, got %v", none.Err)
	}

	busy := NewLedger(nil, []models.Commitment{{BookingID: 99, DriverID: 1, TripDate: "2025-06-10", TripTime: "09:00"}})
	all := Plan(models.Booking{ID: 3, VehicleCategory: "large", TripDate: "2025-06-10", TripTime: "08:00"}, drivers, busy)
	if !errors.Is(all.Err, domain.ErrAllConflict) {
		t.Fatalf("expected all candidates conflict, got %v", all.Err)
	}

	ok := Plan(models.Booking{ID: 4, VehicleCategory: "small", TripDate: "2025-06-10", TripTime: "08:00"}, drivers, busy)
	if !ok.Matched() || ok.Driver.ID != 2 {
		t.Fatalf("expected DS1, got %+v", ok)
	}
}

func TestPlan_LedgerSpreadsSameSlotBookings(t *testing.T) {
	drivers := []models.Driver{drv(1, "DL1", "bus_45"), drv(2, "DL2", "bus_41"), drv(3, "DS1", "van_12")}
	ledger := NewLedger(nil, nil)
	bookings := []models.Booking{
		{ID: 1, VehicleCategory: "large", TripDate: "2025-06-10", TripTime: "08:00", DurationHours: ptr(4)},
		{ID: 2, VehicleCategory: "large", TripDate: "2025-06-10", TripTime: "08:00", DurationHours: ptr(4)},
		{ID: 3, VehicleCategory: "small", TripDate: "2025-06-10", TripTime: "08:00", DurationHours: ptr(4)},
	}
	want := []int64{1, 2, 3}
	for i, b := range bookings {
		d := Plan(b, drivers, ledger)
		if !d.Matched() {
			t.Fatalf("booking %d not matched: %v", b.ID, d.Err)
		}
		if d.Driver.ID != want[i] {
			t.Fatalf("booking %d got driver %d, want %d", b.ID, d.Driver.ID, want[i])
		}
		ledger.Record(d.Driver.ID, b.TripDate, d.Slot)
	}
	fourth := Plan(models.Booking{ID: 4, VehicleCategory: "large", TripDate: "2025-06-10", TripTime: "10:00"}, drivers, ledger)
	if !errors.Is(fourth.Err, domain.ErrAllConflict) {
		t.Fatalf("expected all candidates conflict after both large drivers are taken, got %v", fourth.Err)
	}
}
