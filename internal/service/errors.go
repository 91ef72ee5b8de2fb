package service

import "errors"

var (
	// ErrInvalidClientID is returned when client ID is empty.
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTransitID is returned when transit ID is empty.
	ErrInvalidTransitID = errors.New("invalid transit id")

	// ErrInvalidAddress is returned when an address is missing required fields.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidCarClass is returned when a car class identifier is empty.
	ErrInvalidCarClass = errors.New("invalid car class")

	// ErrInvalidPosition is returned when position coordinates are out of range.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrInvalidTransitStatus is returned when the operation is illegal in
	// the transit's current lifecycle state.
	ErrInvalidTransitStatus = errors.New("operation not allowed in current transit status")

	// ErrTransitAlreadyAccepted is returned to the loser of an accept race.
	ErrTransitAlreadyAccepted = errors.New("transit already accepted by another driver")

	// ErrDriverNotProposed is returned when a driver responds to a transit
	// that was never offered to them.
	ErrDriverNotProposed = errors.New("transit was not proposed to this driver")

	// ErrDriverAlreadyProposed is returned on a duplicate proposal attempt.
	ErrDriverAlreadyProposed = errors.New("transit already proposed to this driver")

	// ErrDriverNotAssigned is returned when a driver acts on a transit
	// assigned to someone else.
	ErrDriverNotAssigned = errors.New("driver not assigned to this transit")

	// ErrDriverAlreadyLoggedIn is returned when a driver opens a second session.
	ErrDriverAlreadyLoggedIn = errors.New("driver already has an active session")

	// ErrProviderUnavailable is returned when the geocoding or position
	// provider fails. Always recoverable: dispatch treats it as "no data
	// this round", it is never a fatal lifecycle error.
	ErrProviderUnavailable = errors.New("provider unavailable")
)
