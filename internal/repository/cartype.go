package repository

import (
	"context"

	"transit/internal/domain"
)

// CarTypeRepository defines the persistence operations for car classes.
type CarTypeRepository interface {
	// Upsert creates or replaces a car type.
	Upsert(ctx context.Context, carType *domain.CarType) error

	// GetByClass retrieves a car type by class identifier.
	GetByClass(ctx context.Context, class string) (*domain.CarType, error)

	// FindActiveClasses returns the identifiers of all active classes.
	FindActiveClasses(ctx context.Context) ([]string, error)
}
