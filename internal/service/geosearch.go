package service

import (
	"context"
	"log"
	"time"

	"transit/internal/domain"
	"transit/internal/geo"
	"transit/internal/observability"
	"transit/internal/repository"
)

// Candidate is one driver average position returned by a search.
type Candidate struct {
	DriverID string
	Position geo.Point
}

// GeoSearchService answers "which drivers were recently seen near here".
// It is side-effect free and never propagates a provider failure: a failing
// position store yields zero candidates and the caller decides whether to
// retry.
type GeoSearchService struct {
	positionRepo repository.PositionRepository
}

// NewGeoSearchService creates a new GeoSearchService.
func NewGeoSearchService(positionRepo repository.PositionRepository) *GeoSearchService {
	return &GeoSearchService{positionRepo: positionRepo}
}

// FindCandidates returns per-driver average positions observed after since
// within radiusKm of center. One entry per driver; when the store returns
// several rows for a driver, the freshest wins so callers never
// double-count.
func (s *GeoSearchService) FindCandidates(ctx context.Context, center geo.Point, radiusKm float64, since time.Time) []Candidate {
	box := geo.BoundingBox(center, radiusKm)

	positions, err := s.positionRepo.FindAverageSince(ctx, box.LatMin, box.LatMax, box.LngMin, box.LngMax, since)
	if err != nil {
		log.Printf("[GEOSEARCH] position store failed, treating as no candidates: %v", err)
		observability.SearchFailures.Inc()
		return nil
	}

	return dedupeLatest(positions)
}

// dedupeLatest keeps one candidate per driver, preferring the most recent
// sample, and preserves first-seen order otherwise.
func dedupeLatest(positions []domain.DriverAvgPosition) []Candidate {
	byDriver := make(map[string]int, len(positions))
	candidates := make([]Candidate, 0, len(positions))
	seenAt := make([]time.Time, 0, len(positions))

	for _, pos := range positions {
		if i, ok := byDriver[pos.DriverID]; ok {
			if pos.SeenAt.After(seenAt[i]) {
				candidates[i].Position = geo.Point{Lat: pos.Lat, Lng: pos.Lng}
				seenAt[i] = pos.SeenAt
			}
			continue
		}
		byDriver[pos.DriverID] = len(candidates)
		candidates = append(candidates, Candidate{
			DriverID: pos.DriverID,
			Position: geo.Point{Lat: pos.Lat, Lng: pos.Lng},
		})
		seenAt = append(seenAt, pos.SeenAt)
	}

	return candidates
}
