package models

import "strings"

const AccountActive = "active"

// Driver is a fulfillment agent and the fleet code of the vehicle they operate.
type Driver struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	VehicleType   string `json:"vehicleType"`
	Available     bool   `json:"available"`
	AccountStatus string `json:"accountStatus"`
}

// Eligible reports whether the driver may be given new work.
func (d Driver) Eligible() bool {
	return d.Available && strings.EqualFold(strings.TrimSpace(d.AccountStatus), AccountActive)
}
