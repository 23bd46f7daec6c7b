package services

import (
	"context"
	"log"
	"strings"

	"charter/internal/dispatch"
	"charter/internal/domain"
	"charter/internal/domain/models"
)

// AssignmentService handles operator-driven assign and reassign of a single
// booking. It runs the same checks and the same executor as the batch sweep.
type AssignmentService struct {
	Bookings BookingStore
	Drivers  DriverStore
	Audit    HistoryStore
	Executor AssignmentExecutor
}

// ReassignResult is returned by Reassign.
type ReassignResult struct {
	Booking          models.Booking `json:"booking"`
	PreviousDriverID int64          `json:"previousDriverId"`
}

// Assign gives a booking without driver its first driver.
func (s AssignmentService) Assign(ctx context.Context, bookingID, driverID int64, actor string) (models.Booking, error) {
	if bookingID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "bookingId", Msg: "id tidak valid"}
	}
	if driverID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "driverId", Msg: "wajib diisi"}
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.HasDriver() || !booking.Status.Assignable() {
		return models.Booking{}, domain.EligibilityError{Err: domain.ErrStateNotEligible}
	}

	driver, err := s.loadEligibleDriver(ctx, driverID)
	if err != nil {
		return models.Booking{}, err
	}
	warnCategory("assign", booking, driver)

	slot, err := bookingSlot(booking)
	if err != nil {
		return models.Booking{}, err
	}

	req := AssignRequest{Booking: booking, DriverID: driverID, Slot: slot, Actor: actor}
	if err := s.Executor.Assign(ctx, req); err != nil {
		return models.Booking{}, err
	}
	log.Printf("[ASSIGN] booking_id=%d driver_id=%d actor=%s", bookingID, driverID, actor)
	return s.loadBooking(ctx, bookingID)
}

// Reassign swaps the driver of an assigned, not yet started booking.
func (s AssignmentService) Reassign(ctx context.Context, bookingID, newDriverID int64, reason, actor string) (ReassignResult, error) {
	if bookingID <= 0 {
		return ReassignResult{}, domain.ValidationError{Field: "bookingId", Msg: "id tidak valid"}
	}
	if newDriverID <= 0 {
		return ReassignResult{}, domain.ValidationError{Field: "newDriverId", Msg: "wajib diisi"}
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return ReassignResult{}, err
	}
	if !booking.HasDriver() || !booking.Status.Reassignable() {
		return ReassignResult{}, domain.EligibilityError{Err: domain.ErrStateNotEligible}
	}
	previous := *booking.DriverID
	if previous == newDriverID {
		return ReassignResult{}, domain.EligibilityError{Err: domain.ErrSameDriver}
	}

	driver, err := s.loadEligibleDriver(ctx, newDriverID)
	if err != nil {
		return ReassignResult{}, err
	}
	warnCategory("reassign", booking, driver)

	slot, err := bookingSlot(booking)
	if err != nil {
		return ReassignResult{}, err
	}

	req := AssignRequest{
		Booking:  booking,
		DriverID: newDriverID,
		Slot:     slot,
		Actor:    actor,
		Reason:   strings.TrimSpace(reason),
	}
	if err := s.Executor.ChangeDriver(ctx, req, previous); err != nil {
		return ReassignResult{}, err
	}
	log.Printf("[ASSIGN] reassign booking_id=%d from=%d to=%d actor=%s", bookingID, previous, newDriverID, actor)

	updated, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return ReassignResult{}, err
	}
	return ReassignResult{Booking: updated, PreviousDriverID: previous}, nil
}

// History returns the assignment audit trail of a booking.
func (s AssignmentService) History(ctx context.Context, bookingID int64) ([]models.AssignmentRecord, error) {
	if bookingID <= 0 {
		return nil, domain.ValidationError{Field: "bookingId", Msg: "id tidak valid"}
	}
	if _, err := s.loadBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	records, err := s.Audit.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal memuat riwayat driver", Err: err}
	}
	return records, nil
}

func (s AssignmentService) loadBooking(ctx context.Context, id int64) (models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.InternalError{Msg: "gagal memuat booking", Err: err}
	}
	if !b.DriverConsistent() {
		log.Printf("[ASSIGN] WARN inconsistent booking_id=%d status=%s driver_id=%d", b.ID, b.Status, *b.DriverID)
	}
	return b, nil
}

func (s AssignmentService) loadEligibleDriver(ctx context.Context, id int64) (models.Driver, error) {
	d, err := s.Drivers.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Driver{}, err
		}
		return models.Driver{}, domain.InternalError{Msg: "gagal memuat driver", Err: err}
	}
	if !d.Eligible() {
		return models.Driver{}, domain.EligibilityError{Err: domain.ErrDriverUnavailable}
	}
	return d, nil
}

func bookingSlot(b models.Booking) (dispatch.Interval, error) {
	slot, err := dispatch.SlotOf(b.TripTime, b.DurationHours)
	if err != nil {
		return dispatch.Interval{}, domain.ValidationError{Field: "trip_time", Msg: "invalid booking time", Err: err}
	}
	return slot, nil
}

// Operators may knowingly send a different vehicle; the mismatch is logged.
func warnCategory(op string, b models.Booking, d models.Driver) {
	if dispatch.SameCategory(b.VehicleCategory, d.VehicleType) {
		return
	}
	log.Printf("[ASSIGN] WARN op=%s category mismatch booking_id=%d requested=%s driver_id=%d vehicle=%s",
		op, b.ID, b.VehicleCategory, d.ID, d.VehicleType)
}
