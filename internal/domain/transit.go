package domain

import "time"

// TransitStatus represents the current lifecycle state of a transit.
type TransitStatus string

const (
	TransitStatusRequested            TransitStatus = "REQUESTED"
	TransitStatusWaitingForAssignment TransitStatus = "WAITING_FOR_DRIVER_ASSIGNMENT"
	TransitStatusDriverAssigned       TransitStatus = "DRIVER_ASSIGNED"
	TransitStatusInProgress           TransitStatus = "IN_PROGRESS"
	TransitStatusCompleted            TransitStatus = "COMPLETED"
	TransitStatusAssignmentFailed     TransitStatus = "DRIVER_ASSIGNMENT_FAILED"
	TransitStatusCancelled            TransitStatus = "CANCELLED"
)

// AllowedTransitions encodes the legal status edges. Terminal statuses
// (COMPLETED, CANCELLED, DRIVER_ASSIGNMENT_FAILED) have no outgoing edges.
var AllowedTransitions = map[TransitStatus][]TransitStatus{
	TransitStatusRequested:            {TransitStatusWaitingForAssignment, TransitStatusCancelled},
	TransitStatusWaitingForAssignment: {TransitStatusDriverAssigned, TransitStatusAssignmentFailed, TransitStatusCancelled},
	TransitStatusDriverAssigned:       {TransitStatusInProgress, TransitStatusCancelled},
	TransitStatusInProgress:           {TransitStatusCompleted},
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to TransitStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transit represents one ride request tracked through its lifecycle.
type Transit struct {
	ID               string
	Status           TransitStatus
	ClientID         string
	PickupID         string
	DestinationID    string
	CarClass         string // optional requested car class; empty = any
	AssignedDriverID string // set only on acceptance

	// ProposedDriverIDs is the ordered, append-only set of drivers this
	// transit has been offered to. AwaitingResponses counts proposals not
	// yet accepted or rejected.
	ProposedDriverIDs []string
	AwaitingResponses int

	DistanceKm float64
	Price      float64
	DriverFee  float64

	RequestedAt time.Time
	PublishedAt time.Time
	AcceptedAt  time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// IsTerminal reports whether the transit reached a final state.
func (t *Transit) IsTerminal() bool {
	switch t.Status {
	case TransitStatusCompleted, TransitStatusCancelled, TransitStatusAssignmentFailed:
		return true
	}
	return false
}

// WasProposedTo reports whether the driver already received this transit.
func (t *Transit) WasProposedTo(driverID string) bool {
	for _, id := range t.ProposedDriverIDs {
		if id == driverID {
			return true
		}
	}
	return false
}

// ProposeTo records an offer to the driver. The caller must have checked
// CanProposeTo first.
func (t *Transit) ProposeTo(driverID string) {
	t.ProposedDriverIDs = append(t.ProposedDriverIDs, driverID)
	t.AwaitingResponses++
}

// CanProposeTo reports whether the transit may be offered to the driver.
func (t *Transit) CanProposeTo(driverID string) bool {
	return t.Status == TransitStatusWaitingForAssignment && !t.WasProposedTo(driverID)
}
