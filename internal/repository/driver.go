package repository

import (
	"context"

	"transit/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// Update updates a driver's status and occupancy.
	Update(ctx context.Context, driver *domain.Driver) error
}
