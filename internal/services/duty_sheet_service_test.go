package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"charter/internal/domain"
)

func TestDutySheetGenerate(t *testing.T) {
	late := committed(2, 5, day, "22:00", hours(4))
	late.VehicleCategory = "large"
	bookings := newMemBookings(committed(1, 5, day, "08:00", nil), late, committed(3, 5, "2025-06-11", "08:00", nil))
	svc := DutySheetService{
		Bookings: bookings,
		Drivers:  newMemDrivers(driver(5, "Budi Santoso", "bus_45")),
		Now:      func() time.Time { return time.Date(2025, 6, 9, 17, 0, 0, 0, time.UTC) },
	}

	pdf, filename, err := svc.Generate(context.Background(), "req-1", 5, day)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(pdf) == 0 || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("Generate returned no pdf")
	}
	if filename != "DUTY_5_2025-06-10_Budi_Santoso.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDutySheetGenerate_Validation(t *testing.T) {
	svc := DutySheetService{Bookings: newMemBookings(), Drivers: newMemDrivers()}
	if _, _, err := svc.Generate(context.Background(), "", 5, "tomorrow"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := svc.Generate(context.Background(), "", 5, day); !domain.IsNotFound(err) {
		t.Fatalf("expected driver not found, got %v", err)
	}
}

func TestClock(t *testing.T) {
	if got := clock(26 * 60); !strings.HasPrefix(got, "02:00") || !strings.Contains(got, "+1") {
		t.Fatalf("unexpected clock %q", got)
	}
	if got := clock(8*60 + 5); got != "08:05" {
		t.Fatalf("unexpected clock %q", got)
	}
}
