package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
)

// SessionService manages driver work sessions. A driver receives proposals
// only while holding an active session in a matching car class.
type SessionService struct {
	sessionRepo repository.SessionRepository
	driverRepo  repository.DriverRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessionRepo repository.SessionRepository, driverRepo repository.DriverRepository) *SessionService {
	return &SessionService{sessionRepo: sessionRepo, driverRepo: driverRepo}
}

// LogIn opens a session for the driver in the given car class.
func (s *SessionService) LogIn(ctx context.Context, driverID, carClass string) (*domain.DriverSession, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if carClass == "" {
		return nil, ErrInvalidCarClass
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	if _, err := s.sessionRepo.GetActiveByDriverID(ctx, driverID); err == nil {
		return nil, ErrDriverAlreadyLoggedIn
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	session := &domain.DriverSession{
		ID:         uuid.New().String(),
		DriverID:   driverID,
		CarClass:   carClass,
		LoggedInAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// LogOut closes the driver's active session.
func (s *SessionService) LogOut(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	session, err := s.sessionRepo.GetActiveByDriverID(ctx, driverID)
	if err != nil {
		return err
	}

	session.LoggedOutAt = time.Now()
	return s.sessionRepo.Update(ctx, session)
}
