package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"transit/internal/domain"
)

// GeocodingService handles interactions with the Google Geocoding API.
type GeocodingService struct {
	client *maps.Client
}

// NewGeocodingService creates a new GeocodingService with the given API key.
func NewGeocodingService(apiKey string) (*GeocodingService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodingService{client: client}, nil
}

// Resolve geocodes an address to coordinates.
func (s *GeocodingService) Resolve(ctx context.Context, address *domain.Address) (float64, float64, error) {
	r := &maps.GeocodingRequest{
		Address: formatAddress(address),
	}

	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding api error: %w", err)
	}

	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no geocoding result for address %s", address.ID)
	}

	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

func formatAddress(address *domain.Address) string {
	parts := []string{}
	if address.Street != "" {
		street := address.Street
		if address.BuildingNumber != "" {
			street += " " + address.BuildingNumber
		}
		parts = append(parts, street)
	}
	if address.City != "" {
		parts = append(parts, address.City)
	}
	if address.Country != "" {
		parts = append(parts, address.Country)
	}
	return strings.Join(parts, ", ")
}
