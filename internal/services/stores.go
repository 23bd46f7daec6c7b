package services

import (
	"context"

	"charter/internal/domain/models"
)

// BookingStore is the booking persistence the dispatch engine needs.
type BookingStore interface {
	GetByID(ctx context.Context, id int64) (models.Booking, error)
	ListAwaitingDriver(ctx context.Context, limit int) ([]models.Booking, error)
	CountLoads(ctx context.Context) (map[int64]int, error)
	ListCommitments(ctx context.Context, dates []string) ([]models.Commitment, error)
	ListDriverCommitments(ctx context.Context, driverID int64, date string) ([]models.Commitment, error)
	ListDriverSchedule(ctx context.Context, driverID int64, date string) ([]models.Booking, error)
	AssignDriver(ctx context.Context, bookingID, driverID int64, from models.BookingStatus) error
	ChangeDriver(ctx context.Context, bookingID, previous, next int64, status models.BookingStatus) error
}

type DriverStore interface {
	GetByID(ctx context.Context, id int64) (models.Driver, error)
	ListEligible(ctx context.Context) ([]models.Driver, error)
}

type SettingsStore interface {
	Load(ctx context.Context) (models.DispatchSettings, error)
	Update(ctx context.Context, upd models.DispatchSettingsUpdate) error
	RecordRun(ctx context.Context, st models.RunStats) error
}

type HistoryStore interface {
	Record(ctx context.Context, rec models.AssignmentRecord) error
	ListByBooking(ctx context.Context, bookingID int64) ([]models.AssignmentRecord, error)
}
