package repository

import (
	"context"

	"transit/internal/domain"
)

// TransitRepository defines the persistence operations for transits.
type TransitRepository interface {
	// Create persists a new transit.
	Create(ctx context.Context, transit *domain.Transit) error

	// GetByID retrieves a transit by ID.
	GetByID(ctx context.Context, id string) (*domain.Transit, error)

	// Update updates an existing transit, including its proposed-driver set.
	Update(ctx context.Context, transit *domain.Transit) error

	// GetAll retrieves all transits.
	GetAll(ctx context.Context) ([]*domain.Transit, error)
}
