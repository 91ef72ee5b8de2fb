package service

import (
	"context"

	"transit/internal/domain"
	"transit/internal/repository"
)

// CarTypeService manages the car class registry.
type CarTypeService struct {
	carTypeRepo repository.CarTypeRepository
}

// NewCarTypeService creates a new CarTypeService.
func NewCarTypeService(carTypeRepo repository.CarTypeRepository) *CarTypeService {
	return &CarTypeService{carTypeRepo: carTypeRepo}
}

// Register creates or replaces a car type, initially inactive.
func (s *CarTypeService) Register(ctx context.Context, class, description string) error {
	if class == "" {
		return ErrInvalidCarClass
	}
	return s.carTypeRepo.Upsert(ctx, &domain.CarType{Class: class, Description: description, Active: false})
}

// Activate marks a car class as participating in matching.
func (s *CarTypeService) Activate(ctx context.Context, class string) error {
	return s.setActive(ctx, class, true)
}

// Deactivate removes a car class from matching.
func (s *CarTypeService) Deactivate(ctx context.Context, class string) error {
	return s.setActive(ctx, class, false)
}

func (s *CarTypeService) setActive(ctx context.Context, class string, active bool) error {
	if class == "" {
		return ErrInvalidCarClass
	}
	carType, err := s.carTypeRepo.GetByClass(ctx, class)
	if err != nil {
		return err
	}
	carType.Active = active
	return s.carTypeRepo.Upsert(ctx, carType)
}

// ActiveClasses returns the identifiers of all active classes.
func (s *CarTypeService) ActiveClasses(ctx context.Context) ([]string, error) {
	return s.carTypeRepo.FindActiveClasses(ctx)
}
