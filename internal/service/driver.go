package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
)

// DriverService handles driver registration and position telemetry ingest.
type DriverService struct {
	driverRepo   repository.DriverRepository
	positionRepo repository.PositionRepository
}

// NewDriverService creates a new DriverService.
func NewDriverService(driverRepo repository.DriverRepository, positionRepo repository.PositionRepository) *DriverService {
	return &DriverService{driverRepo: driverRepo, positionRepo: positionRepo}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name string
}

// RegisterDriver creates a new active, unoccupied driver.
func (s *DriverService) RegisterDriver(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	driver := &domain.Driver{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Status: domain.DriverStatusActive,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// UpdatePositionRequest contains one position sample.
type UpdatePositionRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// UpdatePosition records a driver position sample.
func (s *DriverService) UpdatePosition(ctx context.Context, req UpdatePositionRequest) error {
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		return ErrInvalidPosition
	}

	if _, err := s.driverRepo.GetByID(ctx, req.DriverID); err != nil {
		return err
	}

	return s.positionRepo.Append(ctx, &domain.DriverPosition{
		DriverID: req.DriverID,
		Lat:      req.Lat,
		Lng:      req.Lng,
		SeenAt:   time.Now(),
	})
}

// SetDriverStatus activates or deactivates a driver.
func (s *DriverService) SetDriverStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	driver.Status = status
	return s.driverRepo.Update(ctx, driver)
}
