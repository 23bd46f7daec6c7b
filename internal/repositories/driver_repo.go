package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "charter/internal/config"
	"charter/internal/domain"
	"charter/internal/domain/models"
)

const driverColumns = `
	id,
	COALESCE(name, ''),
	COALESCE(vehicle_type, ''),
	COALESCE(is_available, 0),
	COALESCE(account_status, '')`

type DriverRepo struct {
	DB *sql.DB
}

func (r DriverRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanDriver(row rowScanner) (models.Driver, error) {
	var d models.Driver
	err := row.Scan(&d.ID, &d.Name, &d.VehicleType, &d.Available, &d.AccountStatus)
	return d, err
}

func (r DriverRepo) GetByID(ctx context.Context, id int64) (models.Driver, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = ? LIMIT 1`, id)
	d, err := scanDriver(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Driver{}, domain.NotFoundError{Resource: "driver", Err: domain.ErrDriverNotFound}
		}
		return models.Driver{}, fmt.Errorf("get driver %d: %w", id, err)
	}
	return d, nil
}

// ListEligible returns available, active drivers ordered by id.
func (r DriverRepo) ListEligible(ctx context.Context) ([]models.Driver, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE is_available = 1 AND LOWER(TRIM(account_status)) = ?
		ORDER BY id ASC`, models.AccountActive)
	if err != nil {
		return nil, fmt.Errorf("list eligible drivers: %w", err)
	}
	defer rows.Close()

	out := []models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
