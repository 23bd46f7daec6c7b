package services

import (
	"context"
	"errors"
	"log"
	"time"

	"charter/internal/dispatch"
	"charter/internal/domain"
	"charter/internal/domain/models"
	"charter/internal/events"
	"charter/internal/lock"
	"charter/internal/observability"
)

// AssignmentExecutor is the only writer of booking.driver_id. Both the batch
// sweep and the single-booking service go through it so that "re-read,
// check, write" for one driver never interleaves.
type AssignmentExecutor struct {
	Bookings  BookingStore
	History   HistoryStore
	Locker    lock.Locker
	Publisher events.Publisher
	Now       func() time.Time
}

// AssignRequest describes one write. Slot is the booking's own interval.
type AssignRequest struct {
	Booking  models.Booking
	DriverID int64
	Slot     dispatch.Interval
	Actor    string
	RunID    string
	Reason   string
}

func (e AssignmentExecutor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Assign gives a driverless booking its first driver and moves it to assigned.
func (e AssignmentExecutor) Assign(ctx context.Context, req AssignRequest) error {
	err := e.underDriverLock(ctx, req.DriverID, func() error {
		if err := e.recheck(ctx, req); err != nil {
			return err
		}
		return persistErr(e.Bookings.AssignDriver(ctx, req.Booking.ID, req.DriverID, req.Booking.Status))
	})
	if err != nil {
		return err
	}
	e.afterWrite(ctx, req, nil, models.ActionAssign)
	return nil
}

// ChangeDriver moves a booking from previous to req.DriverID, keeping status.
func (e AssignmentExecutor) ChangeDriver(ctx context.Context, req AssignRequest, previous int64) error {
	err := e.underDriverLock(ctx, req.DriverID, func() error {
		if err := e.recheck(ctx, req); err != nil {
			return err
		}
		return persistErr(e.Bookings.ChangeDriver(ctx, req.Booking.ID, previous, req.DriverID, req.Booking.Status))
	})
	if err != nil {
		return err
	}
	e.afterWrite(ctx, req, &previous, models.ActionReassign)
	return nil
}

func (e AssignmentExecutor) underDriverLock(ctx context.Context, driverID int64, fn func() error) error {
	start := time.Now()
	release, err := e.Locker.Acquire(ctx, lock.DriverKey(driverID))
	observability.LockWaitSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return domain.ConflictError{Resource: "driver", Err: domain.ErrLockTimeout}
		}
		return domain.InternalError{Err: err}
	}
	defer release()
	return fn()
}

// recheck reads the driver's commitments for the trip date again, now that
// the lock is held, leaving the booking itself out.
func (e AssignmentExecutor) recheck(ctx context.Context, req AssignRequest) error {
	commitments, err := e.Bookings.ListDriverCommitments(ctx, req.DriverID, req.Booking.TripDate)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if dispatch.HasConflict(req.Slot, dispatch.CommitmentSlots(commitments, req.Booking.ID)) {
		return domain.EligibilityError{Err: domain.ErrTimeConflict}
	}
	return nil
}

func persistErr(err error) error {
	if err == nil || domain.IsConflict(err) {
		return err
	}
	return domain.InternalError{Err: err}
}

// afterWrite records history and publishes the event. Neither may undo a
// committed assignment, so failures are only logged.
func (e AssignmentExecutor) afterWrite(ctx context.Context, req AssignRequest, previous *int64, action string) {
	source := "manual"
	if req.RunID != "" {
		source = "batch"
	}
	observability.AssignmentsTotal.WithLabelValues(action, source).Inc()

	if e.History != nil {
		rec := models.AssignmentRecord{
			BookingID:        req.Booking.ID,
			PreviousDriverID: previous,
			NewDriverID:      req.DriverID,
			Action:           action,
			Reason:           req.Reason,
			Actor:            req.Actor,
			RunID:            req.RunID,
		}
		if err := e.History.Record(ctx, rec); err != nil {
			log.Printf("[DISPATCH] history write failed booking_id=%d driver_id=%d err=%v", req.Booking.ID, req.DriverID, err)
		}
	}

	if e.Publisher != nil {
		evType := events.TypeDriverAssigned
		if action == models.ActionReassign {
			evType = events.TypeDriverChanged
		}
		ev := events.DriverEvent{
			Type:             evType,
			BookingID:        req.Booking.ID,
			DriverID:         req.DriverID,
			PreviousDriverID: previous,
			Actor:            req.Actor,
			RunID:            req.RunID,
			Reason:           req.Reason,
			OccurredAt:       e.now().UTC(),
		}
		if err := e.Publisher.Publish(ctx, ev); err != nil {
			observability.EventPublishFailures.Inc()
			log.Printf("[DISPATCH] event publish failed type=%s booking_id=%d err=%v", evType, req.Booking.ID, err)
		}
	}
}
