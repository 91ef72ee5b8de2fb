package repository

import (
	"context"
	"time"

	"transit/internal/domain"
)

// PositionRepository defines the persistence operations for driver position
// telemetry.
type PositionRepository interface {
	// Append stores one position sample.
	Append(ctx context.Context, position *domain.DriverPosition) error

	// FindAverageSince returns per-driver average positions computed from
	// samples newer than since and inside the bounding box.
	FindAverageSince(ctx context.Context, latMin, latMax, lngMin, lngMax float64, since time.Time) ([]domain.DriverAvgPosition, error)
}
