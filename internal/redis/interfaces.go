package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed dispatch locking.
type LockStoreInterface interface {
	AcquireDispatchLock(ctx context.Context, transitID string, ttl time.Duration) (bool, error)
	ReleaseDispatchLock(ctx context.Context, transitID string) error
}

// CacheStoreInterface defines the interface for geocode caching.
type CacheStoreInterface interface {
	GetCoordinates(ctx context.Context, addressID string) (*CachedCoordinates, error)
	SetCoordinates(ctx context.Context, addressID string, coords *CachedCoordinates) error
	InvalidateCoordinates(ctx context.Context, addressID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
