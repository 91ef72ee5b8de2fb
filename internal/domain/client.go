package domain

import "time"

// Client represents a rider who owns transits.
type Client struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
