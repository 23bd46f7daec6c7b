package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "charter/internal/config"
	intdb "charter/internal/db"
	"charter/internal/domain"
	"charter/internal/domain/models"
)

// trip_date and trip_time are formatted in SQL so DATE/TIME and legacy
// VARCHAR columns scan the same way.
const bookingColumns = `
	id,
	COALESCE(vehicle_category, ''),
	COALESCE(DATE_FORMAT(trip_date, '%Y-%m-%d'), ''),
	COALESCE(TIME_FORMAT(trip_time, '%H:%i'), ''),
	duration_hours,
	status,
	driver_id,
	created_at,
	updated_at`

const commitmentColumns = `
	id,
	driver_id,
	COALESCE(DATE_FORMAT(trip_date, '%Y-%m-%d'), ''),
	COALESCE(TIME_FORMAT(trip_time, '%H:%i'), ''),
	duration_hours`

// Legacy rows store 0 instead of NULL for "no driver"; both mean unassigned.
const (
	noDriverCond  = "COALESCE(driver_id, 0) = 0"
	hasDriverCond = "driver_id > 0"
)

type BookingRepo struct {
	DB *sql.DB
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b        models.Booking
		status   string
		duration sql.NullFloat64
		driverID sql.NullInt64
	)
	if err := row.Scan(
		&b.ID,
		&b.VehicleCategory,
		&b.TripDate,
		&b.TripTime,
		&duration,
		&status,
		&driverID,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return models.Booking{}, err
	}
	b.Status = models.BookingStatus(status)
	b.DurationHours = intdb.Float64Ptr(duration)
	if driverID.Valid && driverID.Int64 > 0 {
		b.DriverID = intdb.Int64Ptr(driverID)
	}
	return b, nil
}

func scanCommitment(row rowScanner) (models.Commitment, error) {
	var (
		c        models.Commitment
		duration sql.NullFloat64
	)
	if err := row.Scan(&c.BookingID, &c.DriverID, &c.TripDate, &c.TripTime, &duration); err != nil {
		return models.Commitment{}, err
	}
	c.DurationHours = intdb.Float64Ptr(duration)
	return c, nil
}

func committedArgs() (string, []any) {
	args := make([]any, 0, len(models.CommittedStatuses))
	for _, s := range models.CommittedStatuses {
		args = append(args, string(s))
	}
	return intdb.Placeholders(len(args)), args
}

func (r BookingRepo) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? LIMIT 1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: domain.ErrBookingNotFound}
		}
		return models.Booking{}, fmt.Errorf("get booking %d: %w", id, err)
	}
	return b, nil
}

// ListAwaitingDriver returns the oldest unassigned bookings ready for dispatch.
func (r BookingRepo) ListAwaitingDriver(ctx context.Context, limit int) ([]models.Booking, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = ? AND `+noDriverCond+`
		ORDER BY created_at ASC, id ASC
		LIMIT ?`, string(models.StatusAwaitingDriver), limit)
	if err != nil {
		return nil, fmt.Errorf("list awaiting bookings: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CountLoads returns the number of committed bookings per driver across all dates.
func (r BookingRepo) CountLoads(ctx context.Context) (map[int64]int, error) {
	in, args := committedArgs()
	rows, err := r.db().QueryContext(ctx, `
		SELECT driver_id, COUNT(*)
		FROM bookings
		WHERE `+hasDriverCond+` AND status IN (`+in+`)
		GROUP BY driver_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("count driver loads: %w", err)
	}
	defer rows.Close()

	loads := map[int64]int{}
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan driver load: %w", err)
		}
		loads[id] = n
	}
	return loads, rows.Err()
}

// ListCommitments returns every committed booking on the given dates.
func (r BookingRepo) ListCommitments(ctx context.Context, dates []string) ([]models.Commitment, error) {
	if len(dates) == 0 {
		return []models.Commitment{}, nil
	}
	in, args := committedArgs()
	for _, d := range dates {
		args = append(args, d)
	}
	rows, err := r.db().QueryContext(ctx, `
		SELECT `+commitmentColumns+`
		FROM bookings
		WHERE `+hasDriverCond+`
		  AND status IN (`+in+`)
		  AND trip_date IN (`+intdb.Placeholders(len(dates))+`)
		ORDER BY driver_id ASC, trip_date ASC, trip_time ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	return collectCommitments(rows)
}

// ListDriverCommitments returns one driver's committed bookings on date.
func (r BookingRepo) ListDriverCommitments(ctx context.Context, driverID int64, date string) ([]models.Commitment, error) {
	in, args := committedArgs()
	args = append([]any{driverID, date}, args...)
	rows, err := r.db().QueryContext(ctx, `
		SELECT `+commitmentColumns+`
		FROM bookings
		WHERE driver_id = ? AND trip_date = ? AND status IN (`+in+`)
		ORDER BY trip_time ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list driver commitments: %w", err)
	}
	return collectCommitments(rows)
}

// ListDriverSchedule returns one driver's committed bookings on date in full.
func (r BookingRepo) ListDriverSchedule(ctx context.Context, driverID int64, date string) ([]models.Booking, error) {
	in, args := committedArgs()
	args = append([]any{driverID, date}, args...)
	rows, err := r.db().QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE driver_id = ? AND trip_date = ? AND status IN (`+in+`)
		ORDER BY trip_time ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list driver schedule: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func collectCommitments(rows *sql.Rows) ([]models.Commitment, error) {
	defer rows.Close()
	out := []models.Commitment{}
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commitment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AssignDriver sets the first driver on a booking still in status from with
// no driver. Zero affected rows means someone else changed it first.
func (r BookingRepo) AssignDriver(ctx context.Context, bookingID, driverID int64, from models.BookingStatus) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE bookings
		SET driver_id = ?, status = ?, updated_at = NOW()
		WHERE id = ? AND status = ? AND `+noDriverCond,
		driverID, string(models.StatusAssigned), bookingID, string(from))
	if err != nil {
		return fmt.Errorf("assign driver: %w", err)
	}
	return expectOneRow(res)
}

// ChangeDriver swaps previous for next while the booking keeps status.
func (r BookingRepo) ChangeDriver(ctx context.Context, bookingID, previous, next int64, status models.BookingStatus) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE bookings
		SET driver_id = ?, updated_at = NOW()
		WHERE id = ? AND driver_id = ? AND status = ?`,
		next, bookingID, previous, string(status))
	if err != nil {
		return fmt.Errorf("change driver: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != 1 {
		return domain.ConflictError{Resource: "booking", Err: domain.ErrConcurrentUpdate}
	}
	return nil
}
