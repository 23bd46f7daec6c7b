package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"charter/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

var driverCols = []string{"id", "name", "vehicle_type", "is_available", "account_status"}

func TestDriverRepo_ListEligible(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_available = 1 AND LOWER(TRIM(account_status)) = ?")).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows(driverCols).
			AddRow(int64(1), "DL1", "bus_45", int64(1), "active").
			AddRow(int64(2), "DS1", "van_15", int64(1), "ACTIVE"))

	got, err := DriverRepo{DB: db}.ListEligible(context.Background())
	if err != nil {
		t.Fatalf("ListEligible returned error: %v", err)
	}
	if len(got) != 2 || !got[0].Eligible() || !got[1].Eligible() {
		t.Fatalf("unexpected drivers %+v", got)
	}
}

func TestDriverRepo_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM drivers WHERE id = ?")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(driverCols))

	_, err = DriverRepo{DB: db}.GetByID(context.Background(), 42)
	if !errors.Is(err, domain.ErrDriverNotFound) {
		t.Fatalf("expected driver not found, got %v", err)
	}
}
