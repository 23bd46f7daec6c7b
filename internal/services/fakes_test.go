package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"charter/internal/domain"
	"charter/internal/domain/models"
	"charter/internal/events"
	"charter/internal/lock"
)

type memBookings struct {
	mu       sync.Mutex
	bookings map[int64]models.Booking

	listErr      error
	loadsErr     error
	commitErr    error
	beforeAssign func(bookingID int64)
	writes       int
}

func newMemBookings(bs ...models.Booking) *memBookings {
	m := &memBookings{bookings: map[int64]models.Booking{}}
	for _, b := range bs {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *memBookings) get(id int64) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

func (m *memBookings) GetByID(_ context.Context, id int64) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: domain.ErrBookingNotFound}
	}
	return b, nil
}

func (m *memBookings) ListAwaitingDriver(_ context.Context, limit int) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.Status == models.StatusAwaitingDriver && !b.HasDriver() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memBookings) CountLoads(context.Context) (map[int64]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadsErr != nil {
		return nil, m.loadsErr
	}
	loads := map[int64]int{}
	for _, b := range m.bookings {
		if b.HasDriver() && b.Status.Committed() {
			loads[*b.DriverID]++
		}
	}
	return loads, nil
}

func (m *memBookings) commitments(match func(models.Booking) bool) []models.Commitment {
	out := []models.Commitment{}
	for _, b := range m.bookings {
		if !b.HasDriver() || !b.Status.Committed() || !match(b) {
			continue
		}
		out = append(out, models.Commitment{
			BookingID:     b.ID,
			DriverID:      *b.DriverID,
			TripDate:      b.TripDate,
			TripTime:      b.TripTime,
			DurationHours: b.DurationHours,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingID < out[j].BookingID })
	return out
}

func (m *memBookings) ListCommitments(_ context.Context, dates []string) ([]models.Commitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return nil, m.commitErr
	}
	want := map[string]bool{}
	for _, d := range dates {
		want[d] = true
	}
	return m.commitments(func(b models.Booking) bool { return want[b.TripDate] }), nil
}

func (m *memBookings) ListDriverCommitments(_ context.Context, driverID int64, date string) ([]models.Commitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return nil, m.commitErr
	}
	return m.commitments(func(b models.Booking) bool { return *b.DriverID == driverID && b.TripDate == date }), nil
}

func (m *memBookings) ListDriverSchedule(_ context.Context, driverID int64, date string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.HasDriver() && *b.DriverID == driverID && b.TripDate == date && b.Status.Committed() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TripTime < out[j].TripTime })
	return out, nil
}

func (m *memBookings) AssignDriver(_ context.Context, bookingID, driverID int64, from models.BookingStatus) error {
	if m.beforeAssign != nil {
		m.beforeAssign(bookingID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok || b.Status != from || b.HasDriver() {
		return domain.ConflictError{Resource: "booking", Err: domain.ErrConcurrentUpdate}
	}
	id := driverID
	b.DriverID = &id
	b.Status = models.StatusAssigned
	m.bookings[bookingID] = b
	m.writes++
	return nil
}

func (m *memBookings) ChangeDriver(_ context.Context, bookingID, previous, next int64, status models.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok || !b.HasDriver() || *b.DriverID != previous || b.Status != status {
		return domain.ConflictError{Resource: "booking", Err: domain.ErrConcurrentUpdate}
	}
	id := next
	b.DriverID = &id
	m.bookings[bookingID] = b
	m.writes++
	return nil
}

type memDrivers struct {
	drivers map[int64]models.Driver
	listErr error
}

func newMemDrivers(ds ...models.Driver) *memDrivers {
	m := &memDrivers{drivers: map[int64]models.Driver{}}
	for _, d := range ds {
		m.drivers[d.ID] = d
	}
	return m
}

func (m *memDrivers) GetByID(_ context.Context, id int64) (models.Driver, error) {
	d, ok := m.drivers[id]
	if !ok {
		return models.Driver{}, domain.NotFoundError{Resource: "driver", Err: domain.ErrDriverNotFound}
	}
	return d, nil
}

func (m *memDrivers) ListEligible(context.Context) ([]models.Driver, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.Driver{}
	for _, d := range m.drivers {
		if d.Eligible() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memSettings struct {
	mu        sync.Mutex
	settings  models.DispatchSettings
	loadErr   error
	recordErr error
	loads     int
	runs      []models.RunStats
	gate      chan struct{}
	entered   chan struct{}
}

func (m *memSettings) Load(context.Context) (models.DispatchSettings, error) {
	m.mu.Lock()
	m.loads++
	gate, entered := m.gate, m.entered
	m.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if m.loadErr != nil {
		return models.DispatchSettings{}, m.loadErr
	}
	return m.settings, nil
}

func (m *memSettings) Update(_ context.Context, upd models.DispatchSettingsUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if upd.Enabled != nil {
		m.settings.Enabled = *upd.Enabled
	}
	if upd.BatchSize != nil {
		m.settings.BatchSize = *upd.BatchSize
	}
	return nil
}

func (m *memSettings) RecordRun(_ context.Context, st models.RunStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.runs = append(m.runs, st)
	return nil
}

type memHistory struct {
	mu      sync.Mutex
	records []models.AssignmentRecord
	err     error
}

func (m *memHistory) Record(_ context.Context, rec models.AssignmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memHistory) ListByBooking(_ context.Context, bookingID int64) ([]models.AssignmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AssignmentRecord{}
	for _, r := range m.records {
		if r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memPublisher struct {
	mu     sync.Mutex
	events []events.DriverEvent
	err    error
}

func (p *memPublisher) Publish(_ context.Context, ev events.DriverEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *memPublisher) Close() error { return nil }

type fixture struct {
	bookings  *memBookings
	drivers   *memDrivers
	settings  *memSettings
	history   *memHistory
	publisher *memPublisher
	executor  AssignmentExecutor
	dispatch  *DispatchService
	assign    AssignmentService
}

func newFixture(bookings []models.Booking, drivers []models.Driver) *fixture {
	f := &fixture{
		bookings:  newMemBookings(bookings...),
		drivers:   newMemDrivers(drivers...),
		settings:  &memSettings{settings: models.DispatchSettings{Enabled: true, BatchSize: 50}},
		history:   &memHistory{},
		publisher: &memPublisher{},
	}
	f.executor = AssignmentExecutor{
		Bookings:  f.bookings,
		History:   f.history,
		Locker:    lock.NewLocalLocker(time.Second),
		Publisher: f.publisher,
	}
	f.dispatch = &DispatchService{
		Bookings: f.bookings,
		Drivers:  f.drivers,
		Settings: f.settings,
		Executor: f.executor,
	}
	f.assign = AssignmentService{
		Bookings: f.bookings,
		Drivers:  f.drivers,
		Audit:    f.history,
		Executor: f.executor,
	}
	return f
}

var baseCreated = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func hours(h float64) *float64 { return &h }

func idp(id int64) *int64 { return &id }

func awaiting(id int64, category, date, tm string, dur *float64, createdOffset int) models.Booking {
	return models.Booking{
		ID:              id,
		VehicleCategory: category,
		TripDate:        date,
		TripTime:        tm,
		DurationHours:   dur,
		Status:          models.StatusAwaitingDriver,
		CreatedAt:       baseCreated.Add(time.Duration(createdOffset) * time.Minute),
	}
}

func committed(id, driverID int64, date, tm string, dur *float64) models.Booking {
	return models.Booking{
		ID:            id,
		TripDate:      date,
		TripTime:      tm,
		DurationHours: dur,
		Status:        models.StatusAssigned,
		DriverID:      idp(driverID),
		CreatedAt:     baseCreated,
	}
}

func driver(id int64, name, vehicle string) models.Driver {
	return models.Driver{ID: id, Name: name, VehicleType: vehicle, Available: true, AccountStatus: models.AccountActive}
}
