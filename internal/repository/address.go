package repository

import (
	"context"

	"transit/internal/domain"
)

// AddressRepository defines the persistence operations for addresses.
type AddressRepository interface {
	// Create persists a new address.
	Create(ctx context.Context, address *domain.Address) error

	// GetByID retrieves an address by ID.
	GetByID(ctx context.Context, id string) (*domain.Address, error)

	// Update updates an address (used to record resolved coordinates).
	Update(ctx context.Context, address *domain.Address) error
}
