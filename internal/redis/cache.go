package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles geocoding result caching in Redis. Addresses resolve to
// stable coordinates, so entries live long; the TTL only bounds staleness
// when a provider correction lands.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

const (
	geocodeCachePrefix = "cache:geocode:"
	GeocodeCacheTTL    = 24 * time.Hour
)

// CachedCoordinates represents a cached geocoding result.
type CachedCoordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GetCoordinates retrieves cached coordinates for an address.
// Returns (nil, nil) on cache miss.
func (s *CacheStore) GetCoordinates(ctx context.Context, addressID string) (*CachedCoordinates, error) {
	key := geocodeCachePrefix + addressID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var coords CachedCoordinates
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, err
	}
	return &coords, nil
}

// SetCoordinates stores resolved coordinates for an address.
func (s *CacheStore) SetCoordinates(ctx context.Context, addressID string, coords *CachedCoordinates) error {
	key := geocodeCachePrefix + addressID
	data, err := json.Marshal(coords)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, GeocodeCacheTTL).Err()
}

// InvalidateCoordinates drops the cached result for an address (used when
// the address fields change).
func (s *CacheStore) InvalidateCoordinates(ctx context.Context, addressID string) error {
	key := geocodeCachePrefix + addressID
	return s.client.Del(ctx, key).Err()
}
