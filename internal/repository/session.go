package repository

import (
	"context"

	"transit/internal/domain"
)

// SessionRepository defines the persistence operations for driver sessions.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *domain.DriverSession) error

	// GetActiveByDriverID retrieves the driver's current logged-in session.
	// Returns ErrNotFound if the driver has no active session.
	GetActiveByDriverID(ctx context.Context, driverID string) (*domain.DriverSession, error)

	// Update updates an existing session (used to record logout).
	Update(ctx context.Context, session *domain.DriverSession) error

	// FindActiveDriverIDs returns the subset of driverIDs holding an active
	// (not logged out) session in one of the given car classes.
	FindActiveDriverIDs(ctx context.Context, driverIDs []string, carClasses []string) ([]string, error)
}
