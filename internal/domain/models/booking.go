package models

import "time"

// BookingStatus is a step in the charter booking lifecycle.
type BookingStatus string

const (
	StatusPendingDeposit  BookingStatus = "pending_deposit"
	StatusAwaitingDriver  BookingStatus = "awaiting_driver"
	StatusAssigned        BookingStatus = "assigned"
	StatusDriverConfirmed BookingStatus = "driver_confirmed"
	StatusEnRoute         BookingStatus = "en_route"
	StatusArrived         BookingStatus = "arrived"
	StatusInTrip          BookingStatus = "in_trip"
	StatusCompleted       BookingStatus = "completed"
	StatusCancelled       BookingStatus = "cancelled"
)

var statusRank = map[BookingStatus]int{
	StatusPendingDeposit:  0,
	StatusAwaitingDriver:  1,
	StatusAssigned:        2,
	StatusDriverConfirmed: 3,
	StatusEnRoute:         4,
	StatusArrived:         5,
	StatusInTrip:          6,
	StatusCompleted:       7,
}

// CommittedStatuses are the statuses in which a driver is obligated to the trip.
var CommittedStatuses = []BookingStatus{
	StatusAssigned,
	StatusDriverConfirmed,
	StatusEnRoute,
	StatusArrived,
	StatusInTrip,
}

// AssignableStatuses may receive a first driver through the single-booking path.
var AssignableStatuses = []BookingStatus{
	StatusPendingDeposit,
	StatusAwaitingDriver,
}

// Rank returns the position of s in the lifecycle ordering; cancelled and
// unknown statuses report false.
func (s BookingStatus) Rank() (int, bool) {
	r, ok := statusRank[s]
	return r, ok
}

// AtLeast reports whether s comes at or after other in the lifecycle.
func (s BookingStatus) AtLeast(other BookingStatus) bool {
	a, ok := s.Rank()
	if !ok {
		return false
	}
	b, ok := other.Rank()
	if !ok {
		return false
	}
	return a >= b
}

func (s BookingStatus) Committed() bool {
	return s.in(CommittedStatuses)
}

func (s BookingStatus) Assignable() bool {
	return s.in(AssignableStatuses)
}

// Reassignable covers assigned up to arrived: a driver is set and the trip
// has not started.
func (s BookingStatus) Reassignable() bool {
	return s.AtLeast(StatusAssigned) && !s.AtLeast(StatusInTrip)
}

func (s BookingStatus) in(set []BookingStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// Booking is a requested charter trip as seen by the dispatch engine.
type Booking struct {
	ID              int64         `json:"id"`
	VehicleCategory string        `json:"vehicleCategory"`
	TripDate        string        `json:"tripDate"`
	TripTime        string        `json:"tripTime"`
	DurationHours   *float64      `json:"durationHours"`
	Status          BookingStatus `json:"status"`
	DriverID        *int64        `json:"driverId"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// HasDriver reports whether a driver reference is set. NULL and 0 both mean
// no driver.
func (b Booking) HasDriver() bool {
	return b.DriverID != nil && *b.DriverID > 0
}

// DriverConsistent reports whether the driver reference agrees with the
// status: a booking with a driver must be at least assigned (or cancelled).
func (b Booking) DriverConsistent() bool {
	if !b.HasDriver() || b.Status == StatusCancelled {
		return true
	}
	return b.Status.AtLeast(StatusAssigned)
}
