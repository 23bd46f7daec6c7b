package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "charter/internal/config"
	intdb "charter/internal/db"
	"charter/internal/domain/models"
)

const settingsTable = "dispatch_settings"

// DispatchSettingsRepo owns the single-row dispatch_settings table (id = 1).
type DispatchSettingsRepo struct {
	DB *sql.DB
}

func (r DispatchSettingsRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// EnsureTable creates the table and seeds the row with dispatch disabled.
func (r DispatchSettingsRepo) EnsureTable(ctx context.Context, defaultBatchSize int) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db tidak tersedia")
	}
	if !intdb.HasTable(ctx, db, settingsTable) {
		ddl := `
CREATE TABLE IF NOT EXISTS dispatch_settings (
	id TINYINT PRIMARY KEY,
	enabled TINYINT(1) NOT NULL DEFAULT 0,
	batch_size INT NOT NULL DEFAULT 50,
	total_runs BIGINT NOT NULL DEFAULT 0,
	total_processed BIGINT NOT NULL DEFAULT 0,
	total_assigned BIGINT NOT NULL DEFAULT 0,
	total_failed BIGINT NOT NULL DEFAULT 0,
	last_run_at DATETIME NULL,
	last_run_id VARCHAR(64) NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create dispatch_settings: %w", err)
		}
	}
	_, err := db.ExecContext(ctx, `INSERT IGNORE INTO dispatch_settings (id, enabled, batch_size) VALUES (1, 0, ?)`, defaultBatchSize)
	return err
}

func (r DispatchSettingsRepo) Load(ctx context.Context) (models.DispatchSettings, error) {
	var (
		s         models.DispatchSettings
		lastRunAt sql.NullTime
		lastRunID sql.NullString
	)
	err := r.db().QueryRowContext(ctx, `
		SELECT enabled, batch_size, total_runs, total_processed, total_assigned, total_failed, last_run_at, last_run_id
		FROM dispatch_settings
		WHERE id = 1`).Scan(
		&s.Enabled,
		&s.BatchSize,
		&s.TotalRuns,
		&s.TotalProcessed,
		&s.TotalAssigned,
		&s.TotalFailed,
		&lastRunAt,
		&lastRunID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DispatchSettings{}, fmt.Errorf("dispatch settings row missing")
		}
		return models.DispatchSettings{}, fmt.Errorf("load dispatch settings: %w", err)
	}
	if lastRunAt.Valid {
		t := lastRunAt.Time
		s.LastRunAt = &t
	}
	s.LastRunID = lastRunID.String
	return s, nil
}

// Update applies only the fields present in upd.
func (r DispatchSettingsRepo) Update(ctx context.Context, upd models.DispatchSettingsUpdate) error {
	sets := []string{}
	args := []any{}
	if upd.Enabled != nil {
		sets = append(sets, "enabled = ?")
		args = append(args, *upd.Enabled)
	}
	if upd.BatchSize != nil {
		sets = append(sets, "batch_size = ?")
		args = append(args, *upd.BatchSize)
	}
	if len(sets) == 0 {
		return nil
	}
	_, err := r.db().ExecContext(ctx, `UPDATE dispatch_settings SET `+strings.Join(sets, ", ")+` WHERE id = 1`, args...)
	if err != nil {
		return fmt.Errorf("update dispatch settings: %w", err)
	}
	return nil
}

// RecordRun adds one finished run to the cumulative counters.
func (r DispatchSettingsRepo) RecordRun(ctx context.Context, st models.RunStats) error {
	_, err := r.db().ExecContext(ctx, `
		UPDATE dispatch_settings
		SET total_runs = total_runs + 1,
			total_processed = total_processed + ?,
			total_assigned = total_assigned + ?,
			total_failed = total_failed + ?,
			last_run_at = ?,
			last_run_id = ?
		WHERE id = 1`,
		st.Processed, st.Assigned, st.Failed, st.FinishedAt, st.RunID)
	if err != nil {
		return fmt.Errorf("record dispatch run: %w", err)
	}
	return nil
}
