package repository

import (
	"context"

	"transit/internal/domain"
)

// ClientRepository defines the persistence operations for clients.
type ClientRepository interface {
	// Create persists a new client.
	Create(ctx context.Context, client *domain.Client) error

	// GetByID retrieves a client by ID.
	GetByID(ctx context.Context, id string) (*domain.Client, error)
}
