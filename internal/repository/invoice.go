package repository

import (
	"context"

	"transit/internal/domain"
)

// InvoiceRepository defines the persistence operations for invoices.
type InvoiceRepository interface {
	// Create persists a new invoice.
	Create(ctx context.Context, invoice *domain.Invoice) error

	// GetByTransitID retrieves the invoice issued for a transit.
	GetByTransitID(ctx context.Context, transitID string) (*domain.Invoice, error)
}
