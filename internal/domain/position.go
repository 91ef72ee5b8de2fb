package domain

import "time"

// DriverPosition is one telemetry sample. Samples are retained only for a
// short trailing window relevant to matching; they are not authoritative
// for billing.
type DriverPosition struct {
	DriverID string
	Lat      float64
	Lng      float64
	SeenAt   time.Time
}

// DriverAvgPosition is a driver's average observed position over the
// matching window, as answered by the position store.
type DriverAvgPosition struct {
	DriverID string
	Lat      float64
	Lng      float64
	SeenAt   time.Time // most recent sample in the window
}
