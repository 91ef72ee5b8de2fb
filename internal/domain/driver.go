package domain

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "ACTIVE"
	DriverStatusInactive DriverStatus = "INACTIVE"
)

// Driver represents a driver in the system. Occupied is true while the
// driver is serving an assigned transit.
type Driver struct {
	ID       string
	Name     string
	Status   DriverStatus
	Occupied bool
}
