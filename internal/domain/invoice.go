package domain

import "time"

// Invoice is issued to the client when a transit completes.
type Invoice struct {
	ID        string
	TransitID string
	Amount    float64
	PayerName string
	IssuedAt  time.Time
}
