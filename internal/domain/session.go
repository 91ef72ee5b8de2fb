package domain

import "time"

// DriverSession is a driver's logged-in working interval for one car class.
// A zero LoggedOutAt means the session is still active; only active sessions
// make a driver matchable for that class.
type DriverSession struct {
	ID          string
	DriverID    string
	CarClass    string
	LoggedInAt  time.Time
	LoggedOutAt time.Time
}

// IsActive reports whether the session is still logged in.
func (s *DriverSession) IsActive() bool {
	return s.LoggedOutAt.IsZero()
}
