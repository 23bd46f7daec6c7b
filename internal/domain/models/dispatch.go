package models

import "time"

// Commitment is a committed booking of one driver, reduced to what conflict
// and load checks need.
type Commitment struct {
	BookingID     int64
	DriverID      int64
	TripDate      string
	TripTime      string
	DurationHours *float64
}

// DispatchSettings mirrors the single dispatch_settings row.
type DispatchSettings struct {
	Enabled        bool       `json:"enabled"`
	BatchSize      int        `json:"batchSize"`
	TotalRuns      int64      `json:"totalRuns"`
	TotalProcessed int64      `json:"totalProcessed"`
	TotalAssigned  int64      `json:"totalAssigned"`
	TotalFailed    int64      `json:"totalFailed"`
	LastRunAt      *time.Time `json:"lastRunAt"`
	LastRunID      string     `json:"lastRunId"`
}

// DispatchSettingsUpdate supports PATCH-style updates via key presence.
type DispatchSettingsUpdate struct {
	Enabled   *bool
	BatchSize *int
}

// RunStats is what a finished batch run adds to the cumulative settings row.
type RunStats struct {
	RunID      string
	Processed  int
	Assigned   int
	Failed     int
	FinishedAt time.Time
}

// RunDetail is the outcome for one booking in a batch run.
type RunDetail struct {
	BookingID int64  `json:"bookingId"`
	Success   bool   `json:"success"`
	DriverID  *int64 `json:"driverId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// RunReport is returned by every batch run, including skipped ones.
type RunReport struct {
	RunID      string      `json:"runId"`
	Skipped    bool        `json:"skipped"`
	Processed  int         `json:"processed"`
	Assigned   int         `json:"assigned"`
	Failed     int         `json:"failed"`
	Details    []RunDetail `json:"details"`
	DurationMs int64       `json:"durationMs"`
	StartedAt  time.Time   `json:"startedAt"`
}

// EligibleDriver is one row of the eligible-drivers preview.
type EligibleDriver struct {
	DriverID        int64  `json:"driverId"`
	Name            string `json:"name"`
	VehicleCategory string `json:"vehicleCategory"`
	HasConflict     bool   `json:"hasConflict"`
	CurrentBookings int    `json:"currentBookings"`
}

const (
	ActionAssign   = "assign"
	ActionReassign = "reassign"
)

// AssignmentRecord is one row of driver_assignment_history.
type AssignmentRecord struct {
	ID               int64     `json:"id"`
	BookingID        int64     `json:"bookingId"`
	PreviousDriverID *int64    `json:"previousDriverId"`
	NewDriverID      int64     `json:"newDriverId"`
	Action           string    `json:"action"`
	Reason           string    `json:"reason"`
	Actor            string    `json:"actor"`
	RunID            string    `json:"runId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}
