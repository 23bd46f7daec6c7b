package repositories

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "charter/internal/config"
	intdb "charter/internal/db"
	"charter/internal/domain/models"
)

const historyTable = "driver_assignment_history"

type AssignmentHistoryRepo struct {
	DB *sql.DB
}

func (r AssignmentHistoryRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r AssignmentHistoryRepo) EnsureTable(ctx context.Context) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db tidak tersedia")
	}
	if intdb.HasTable(ctx, db, historyTable) {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS driver_assignment_history (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id BIGINT NOT NULL,
	previous_driver_id BIGINT NULL,
	new_driver_id BIGINT NOT NULL,
	action VARCHAR(20) NOT NULL,
	reason VARCHAR(500) NOT NULL DEFAULT '',
	actor VARCHAR(100) NOT NULL DEFAULT '',
	run_id VARCHAR(64) NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_booking (booking_id),
	KEY idx_new_driver (new_driver_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`
	_, err := db.ExecContext(ctx, ddl)
	return err
}

func (r AssignmentHistoryRepo) Record(ctx context.Context, rec models.AssignmentRecord) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO driver_assignment_history
			(booking_id, previous_driver_id, new_driver_id, action, reason, actor, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.BookingID,
		intdb.NullInt64(rec.PreviousDriverID),
		rec.NewDriverID,
		rec.Action,
		rec.Reason,
		rec.Actor,
		intdb.NullIfEmpty(rec.RunID),
	)
	if err != nil {
		return fmt.Errorf("record assignment history: %w", err)
	}
	return nil
}

// ListByBooking returns the audit trail of one booking, oldest first.
func (r AssignmentHistoryRepo) ListByBooking(ctx context.Context, bookingID int64) ([]models.AssignmentRecord, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, booking_id, previous_driver_id, new_driver_id, action, reason, actor, run_id, created_at
		FROM driver_assignment_history
		WHERE booking_id = ?
		ORDER BY created_at ASC, id ASC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list assignment history: %w", err)
	}
	defer rows.Close()

	out := []models.AssignmentRecord{}
	for rows.Next() {
		var (
			rec   models.AssignmentRecord
			prev  sql.NullInt64
			runID sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.BookingID, &prev, &rec.NewDriverID, &rec.Action, &rec.Reason, &rec.Actor, &runID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment history: %w", err)
		}
		rec.PreviousDriverID = intdb.Int64Ptr(prev)
		rec.RunID = runID.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
