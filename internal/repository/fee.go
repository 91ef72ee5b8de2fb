package repository

import (
	"context"

	"transit/internal/domain"
)

// FeeRepository defines the persistence operations for driver fee schedules.
type FeeRepository interface {
	// Upsert creates or replaces a driver's fee schedule.
	Upsert(ctx context.Context, schedule *domain.DriverFeeSchedule) error

	// GetByDriverID retrieves the fee schedule for a driver.
	GetByDriverID(ctx context.Context, driverID string) (*domain.DriverFeeSchedule, error)
}
