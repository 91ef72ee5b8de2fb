package service

import (
	"context"
	"fmt"
	"time"

	"transit/internal/domain"
	"transit/internal/geo"
	"transit/internal/redis"
	"transit/internal/repository"
)

// Geocoder resolves an address to coordinates. May fail or time out.
type Geocoder interface {
	Resolve(ctx context.Context, address *domain.Address) (lat, lng float64, err error)
}

// GeocodingService resolves addresses to coordinates at most once per
// address: resolved coordinates are written back to the address row and
// cached in Redis, so repeated dispatch rounds hit neither the provider nor
// the database twice.
type GeocodingService struct {
	addressRepo repository.AddressRepository
	geocoder    Geocoder
	cacheStore  redis.CacheStoreInterface
	timeout     time.Duration
}

// NewGeocodingService creates a new GeocodingService. cacheStore may be nil.
func NewGeocodingService(
	addressRepo repository.AddressRepository,
	geocoder Geocoder,
	cacheStore redis.CacheStoreInterface,
	timeout time.Duration,
) *GeocodingService {
	return &GeocodingService{
		addressRepo: addressRepo,
		geocoder:    geocoder,
		cacheStore:  cacheStore,
		timeout:     timeout,
	}
}

// ResolveAddressID resolves the address with the given ID to coordinates.
// Returns repository.ErrNotFound for unknown addresses and
// ErrProviderUnavailable when the provider fails or times out.
func (s *GeocodingService) ResolveAddressID(ctx context.Context, addressID string) (geo.Point, error) {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return geo.Point{}, err
	}
	return s.Resolve(ctx, address)
}

// Resolve resolves an address entity to coordinates.
func (s *GeocodingService) Resolve(ctx context.Context, address *domain.Address) (geo.Point, error) {
	if address.Resolved {
		return geo.Point{Lat: address.Lat, Lng: address.Lng}, nil
	}

	if s.cacheStore != nil {
		if coords, err := s.cacheStore.GetCoordinates(ctx, address.ID); err == nil && coords != nil {
			return geo.Point{Lat: coords.Lat, Lng: coords.Lng}, nil
		}
	}

	if s.geocoder == nil {
		return geo.Point{}, fmt.Errorf("%w: no geocoding provider configured", ErrProviderUnavailable)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	lat, lng, err := s.geocoder.Resolve(callCtx, address)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	address.Lat = lat
	address.Lng = lng
	address.Resolved = true
	if err := s.addressRepo.Update(ctx, address); err != nil {
		return geo.Point{}, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetCoordinates(ctx, address.ID, &redis.CachedCoordinates{Lat: lat, Lng: lng})
	}

	return geo.Point{Lat: lat, Lng: lng}, nil
}

func distanceBetween(from, to geo.Point) float64 {
	return geo.HaversineKm(from.Lat, from.Lng, to.Lat, to.Lng)
}

// DistanceKm returns the road-less great-circle distance between two
// resolved addresses.
func (s *GeocodingService) DistanceKm(ctx context.Context, fromID, toID string) (float64, error) {
	from, err := s.ResolveAddressID(ctx, fromID)
	if err != nil {
		return 0, err
	}
	to, err := s.ResolveAddressID(ctx, toID)
	if err != nil {
		return 0, err
	}
	return geo.HaversineKm(from.Lat, from.Lng, to.Lat, to.Lng), nil
}
