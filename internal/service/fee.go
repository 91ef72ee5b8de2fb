package service

import (
	"context"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// FeeService computes the driver's cut of a completed transit from the
// driver's fee schedule.
type FeeService struct {
	feeRepo     repository.FeeRepository
	transitRepo repository.TransitRepository
}

// NewFeeService creates a new FeeService.
func NewFeeService(feeRepo repository.FeeRepository, transitRepo repository.TransitRepository) *FeeService {
	return &FeeService{feeRepo: feeRepo, transitRepo: transitRepo}
}

// SetSchedule creates or replaces a driver's fee schedule.
func (s *FeeService) SetSchedule(ctx context.Context, schedule *domain.DriverFeeSchedule) error {
	if schedule.DriverID == "" {
		return ErrInvalidDriverID
	}
	return s.feeRepo.Upsert(ctx, schedule)
}

// DriverFee returns the driver fee for a transit. Drivers without a
// schedule fall back to keeping the whole price.
func (s *FeeService) DriverFee(ctx context.Context, transitID string) (float64, error) {
	transit, err := s.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		return 0, err
	}
	if transit.AssignedDriverID == "" {
		return 0, ErrDriverNotAssigned
	}

	schedule, err := s.feeRepo.GetByDriverID(ctx, transit.AssignedDriverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transit.Price, nil
		}
		return 0, err
	}

	var fee float64
	switch schedule.FeeType {
	case domain.FeeTypeFlat:
		fee = transit.Price - schedule.Amount
	case domain.FeeTypePercentage:
		fee = transit.Price * schedule.Amount / 100
	default:
		fee = transit.Price
	}

	if fee < schedule.MinFee {
		fee = schedule.MinFee
	}
	if fee < 0 {
		fee = 0
	}
	return fee, nil
}
