package service

import "transit/internal/domain"

// EligibilityService is the single gate deciding whether a candidate driver
// may receive a proposal. All of the active/occupied/session/duplicate
// checks live here so every caller evaluates them once, the same way.
type EligibilityService struct{}

// NewEligibilityService creates a new EligibilityService.
func NewEligibilityService() *EligibilityService {
	return &EligibilityService{}
}

// IsEligible reports whether the driver may be offered the transit.
// hasActiveSession means the driver holds a logged-in session in one of the
// transit's eligible car classes.
func (s *EligibilityService) IsEligible(driver *domain.Driver, hasActiveSession bool, transit *domain.Transit) bool {
	if driver.Status != domain.DriverStatusActive {
		return false
	}
	if driver.Occupied {
		return false
	}
	if !hasActiveSession {
		return false
	}
	return transit.CanProposeTo(driver.ID)
}
