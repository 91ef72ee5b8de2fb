package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// InvoiceRepository is a PostgreSQL implementation of repository.InvoiceRepository.
type InvoiceRepository struct {
	q Querier
}

// NewInvoiceRepository creates a new PostgreSQL invoice repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{q: db}
}

// Create persists a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		INSERT INTO invoices (id, transit_id, amount, payer_name, issued_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		invoice.ID,
		invoice.TransitID,
		invoice.Amount,
		invoice.PayerName,
		invoice.IssuedAt,
	)
	return err
}

// GetByTransitID retrieves the invoice issued for a transit.
func (r *InvoiceRepository) GetByTransitID(ctx context.Context, transitID string) (*domain.Invoice, error) {
	query := `SELECT id, transit_id, amount, payer_name, issued_at FROM invoices WHERE transit_id = $1`

	var invoice domain.Invoice
	err := r.q.QueryRowContext(ctx, query, transitID).Scan(
		&invoice.ID,
		&invoice.TransitID,
		&invoice.Amount,
		&invoice.PayerName,
		&invoice.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &invoice, nil
}
