package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"charter/internal/dispatch"
	"charter/internal/domain"
	"charter/internal/domain/models"
	"charter/internal/observability"
	"charter/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const fallbackBatchSize = 50

// RunOptions are the settings one batch run is started with.
type RunOptions struct {
	Enabled   bool
	BatchSize int
}

// EligibleQuery is the input of the eligible-drivers preview.
type EligibleQuery struct {
	VehicleCategory  string
	Date             string
	Time             string
	DurationHours    *float64
	ExcludeBookingID int64
}

// DispatchService runs the batch sweep and the eligible-drivers preview.
type DispatchService struct {
	Bookings         BookingStore
	Drivers          DriverStore
	Settings         SettingsStore
	Executor         AssignmentExecutor
	DefaultBatchSize int
	Now              func() time.Time

	runs singleflight.Group
}

func (s *DispatchService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Trigger reads the dispatch settings and starts a run. Callers arriving
// while a run is in flight share its report. The run itself is detached from
// ctx, so a caller that gives up does not abort it.
func (s *DispatchService) Trigger(ctx context.Context) (models.RunReport, error) {
	runCtx := context.WithoutCancel(ctx)
	ch := s.runs.DoChan("dispatch-run", func() (any, error) {
		settings, err := s.Settings.Load(runCtx)
		if err != nil {
			observability.BatchRunsTotal.WithLabelValues("config_error").Inc()
			return models.RunReport{}, domain.ConfigError{Msg: "dispatch settings unavailable", Err: err}
		}
		return s.Run(runCtx, RunOptions{Enabled: settings.Enabled, BatchSize: settings.BatchSize})
	})
	select {
	case <-ctx.Done():
		return models.RunReport{}, ctx.Err()
	case res := <-ch:
		report, _ := res.Val.(models.RunReport)
		return report, res.Err
	}
}

// Run processes one batch of awaiting bookings sequentially. Per-booking
// failures end up in the report; only loading the inputs can fail the run.
func (s *DispatchService) Run(ctx context.Context, opts RunOptions) (models.RunReport, error) {
	started := s.now()
	report := models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: started,
		Details:   []models.RunDetail{},
	}

	if !opts.Enabled {
		report.Skipped = true
		observability.BatchRunsTotal.WithLabelValues("skipped").Inc()
		log.Printf("[DISPATCH] run skipped run_id=%s reason=disabled", report.RunID)
		return report, nil
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = s.defaultBatchSize()
	}

	in, err := s.loadInputs(ctx, batchSize)
	if err != nil {
		observability.BatchRunsTotal.WithLabelValues("error").Inc()
		log.Printf("[DISPATCH] run failed run_id=%s stage=load err=%v", report.RunID, err)
		return report, domain.InternalError{Msg: "gagal memuat data dispatch", Err: err}
	}

	ledger := dispatch.NewLedger(in.loads, in.commitments)
	for _, id := range ledger.Malformed() {
		log.Printf("[DISPATCH] run_id=%s commitment booking_id=%d has unreadable trip_time, blocking whole day", report.RunID, id)
	}

	for _, b := range in.bookings {
		detail := s.dispatchOne(ctx, b, in.drivers, ledger, report.RunID)
		report.Processed++
		if detail.Success {
			report.Assigned++
			observability.BookingsProcessedTotal.WithLabelValues("assigned").Inc()
		} else {
			report.Failed++
			observability.BookingsProcessedTotal.WithLabelValues("failed").Inc()
		}
		report.Details = append(report.Details, detail)
	}

	finished := s.now()
	report.DurationMs = finished.Sub(started).Milliseconds()
	observability.BatchRunsTotal.WithLabelValues("completed").Inc()
	observability.BatchRunDuration.Observe(finished.Sub(started).Seconds())

	stats := models.RunStats{
		RunID:      report.RunID,
		Processed:  report.Processed,
		Assigned:   report.Assigned,
		Failed:     report.Failed,
		FinishedAt: finished,
	}
	if err := s.Settings.RecordRun(ctx, stats); err != nil {
		log.Printf("[DISPATCH] run_id=%s stats not persisted err=%v", report.RunID, err)
	}

	log.Printf("[DISPATCH] run finished run_id=%s processed=%d assigned=%d failed=%d duration_ms=%d",
		report.RunID, report.Processed, report.Assigned, report.Failed, report.DurationMs)
	return report, nil
}

func (s *DispatchService) defaultBatchSize() int {
	if s.DefaultBatchSize > 0 {
		return s.DefaultBatchSize
	}
	return fallbackBatchSize
}

func (s *DispatchService) dispatchOne(ctx context.Context, b models.Booking, drivers []models.Driver, ledger *dispatch.Ledger, runID string) models.RunDetail {
	decision := dispatch.Plan(b, drivers, ledger)
	if !decision.Matched() {
		return failedDetail(b.ID, decision.Err)
	}

	req := AssignRequest{
		Booking:  b,
		DriverID: decision.Driver.ID,
		Slot:     decision.Slot,
		Actor:    domain.ActorSystem,
		RunID:    runID,
	}
	if err := s.Executor.Assign(ctx, req); err != nil {
		return failedDetail(b.ID, err)
	}
	ledger.Record(decision.Driver.ID, b.TripDate, decision.Slot)

	driverID := decision.Driver.ID
	return models.RunDetail{BookingID: b.ID, Success: true, DriverID: &driverID}
}

func failedDetail(bookingID int64, err error) models.RunDetail {
	return models.RunDetail{BookingID: bookingID, Reason: reasonOf(err)}
}

// reasonOf turns an error into the short reason shown in run details.
func reasonOf(err error) string {
	var ve domain.ValidationError
	if errors.As(err, &ve) && ve.Msg != "" {
		return ve.Msg
	}
	return err.Error()
}

type runInputs struct {
	bookings    []models.Booking
	drivers     []models.Driver
	loads       map[int64]int
	commitments []models.Commitment
}

// loadInputs reads the batch and everything selection needs. Commitments are
// limited to the dates present in the batch.
func (s *DispatchService) loadInputs(ctx context.Context, batchSize int) (runInputs, error) {
	var in runInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bookings, err := s.Bookings.ListAwaitingDriver(gctx, batchSize)
		if err != nil {
			return err
		}
		in.bookings = bookings
		commitments, err := s.Bookings.ListCommitments(gctx, tripDates(bookings))
		if err != nil {
			return err
		}
		in.commitments = commitments
		return nil
	})
	g.Go(func() error {
		drivers, err := s.Drivers.ListEligible(gctx)
		if err != nil {
			return err
		}
		in.drivers = drivers
		return nil
	})
	g.Go(func() error {
		loads, err := s.Bookings.CountLoads(gctx)
		if err != nil {
			return err
		}
		in.loads = loads
		return nil
	})

	if err := g.Wait(); err != nil {
		return runInputs{}, err
	}
	return in, nil
}

func tripDates(bookings []models.Booking) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, b := range bookings {
		if b.TripDate == "" || seen[b.TripDate] {
			continue
		}
		seen[b.TripDate] = true
		out = append(out, b.TripDate)
	}
	return out
}

// EligibleDrivers lists category-compatible eligible drivers for a slot,
// conflict-free first and then by ascending load. It never writes.
func (s *DispatchService) EligibleDrivers(ctx context.Context, q EligibleQuery) ([]models.EligibleDriver, error) {
	q.VehicleCategory = strings.TrimSpace(q.VehicleCategory)
	if q.VehicleCategory == "" {
		return nil, domain.ValidationError{Field: "vehicleCategory", Msg: "wajib diisi"}
	}
	if _, err := utils.ParseDate(q.Date); err != nil {
		return nil, domain.ValidationError{Field: "date", Msg: "format harus YYYY-MM-DD", Err: err}
	}
	if q.DurationHours != nil && !dispatch.ValidDurationHours(*q.DurationHours) {
		return nil, domain.ValidationError{Field: "durationHours", Msg: fmt.Sprintf("harus antara 0 dan %.0f jam", dispatch.MaxDurationHours)}
	}
	slot, err := dispatch.SlotOf(q.Time, q.DurationHours)
	if err != nil {
		return nil, domain.ValidationError{Field: "time", Msg: "format harus HH:MM", Err: err}
	}

	var (
		drivers     []models.Driver
		loads       map[int64]int
		commitments []models.Commitment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		drivers, err = s.Drivers.ListEligible(gctx)
		return err
	})
	g.Go(func() (err error) {
		loads, err = s.Bookings.CountLoads(gctx)
		return err
	})
	g.Go(func() (err error) {
		commitments, err = s.Bookings.ListCommitments(gctx, []string{q.Date})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.InternalError{Msg: "gagal memuat data driver", Err: err}
	}

	if q.ExcludeBookingID > 0 {
		kept := commitments[:0]
		for _, c := range commitments {
			if c.BookingID != q.ExcludeBookingID {
				kept = append(kept, c)
			}
		}
		commitments = kept
	}

	ledger := dispatch.NewLedger(loads, commitments)
	matching := dispatch.FilterCategory(drivers, q.VehicleCategory)
	ranked := dispatch.Rank(dispatch.Evaluate(matching, q.Date, slot, ledger))

	out := make([]models.EligibleDriver, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, models.EligibleDriver{
			DriverID:        c.Driver.ID,
			Name:            c.Driver.Name,
			VehicleCategory: c.Driver.VehicleType,
			HasConflict:     c.HasConflict,
			CurrentBookings: c.Load,
		})
	}
	return out, nil
}

// RunScheduler triggers a run every interval until ctx is done. A zero
// interval disables the timer; runs can still be started over HTTP.
func (s *DispatchService) RunScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Printf("[DISPATCH] scheduler disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.Trigger(ctx)
			if err != nil {
				log.Printf("[DISPATCH] scheduled run failed err=%v", err)
				continue
			}
			if report.Skipped {
				continue
			}
			log.Printf("[DISPATCH] scheduled run_id=%s assigned=%d failed=%d", report.RunID, report.Assigned, report.Failed)
		}
	}
}

// GetSettings returns the stored dispatch settings.
func (s *DispatchService) GetSettings(ctx context.Context) (models.DispatchSettings, error) {
	settings, err := s.Settings.Load(ctx)
	if err != nil {
		return models.DispatchSettings{}, domain.ConfigError{Msg: "dispatch settings unavailable", Err: err}
	}
	return settings, nil
}

// UpdateSettings applies a partial update and returns the new settings.
func (s *DispatchService) UpdateSettings(ctx context.Context, upd models.DispatchSettingsUpdate) (models.DispatchSettings, error) {
	if upd.BatchSize != nil && (*upd.BatchSize <= 0 || *upd.BatchSize > 1000) {
		return models.DispatchSettings{}, domain.ValidationError{Field: "batchSize", Msg: "harus antara 1 dan 1000"}
	}
	if err := s.Settings.Update(ctx, upd); err != nil {
		return models.DispatchSettings{}, domain.InternalError{Msg: "gagal menyimpan pengaturan dispatch", Err: err}
	}
	return s.GetSettings(ctx)
}
