package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
)

// InvoiceService issues invoices for completed transits.
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoiceRepo repository.InvoiceRepository) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoiceRepo}
}

// Generate creates and persists an invoice for the given amount and payer.
func (s *InvoiceService) Generate(ctx context.Context, transitID string, amount float64, payerName string) (*domain.Invoice, error) {
	invoice := &domain.Invoice{
		ID:        uuid.New().String(),
		TransitID: transitID,
		Amount:    amount,
		PayerName: payerName,
		IssuedAt:  time.Now(),
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// GetByTransitID retrieves the invoice issued for a transit.
func (s *InvoiceService) GetByTransitID(ctx context.Context, transitID string) (*domain.Invoice, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}
	return s.invoiceRepo.GetByTransitID(ctx, transitID)
}
