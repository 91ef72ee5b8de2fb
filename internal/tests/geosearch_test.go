package tests

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"transit/internal/geo"
	"transit/internal/service"
)

func TestGeoSearchFindsDriversWithinRadius(t *testing.T) {
	t.Parallel()
	positionRepo := NewMockPositionRepository()
	svc := service.NewGeoSearchService(positionRepo)

	now := time.Now()
	positionRepo.AddSample("driver-near", 50.002, 20.002, now)
	positionRepo.AddSample("driver-far", 50.2, 20.2, now)

	candidates := svc.FindCandidates(context.Background(), geo.Point{Lat: 50.0, Lng: 20.0}, 1.0, now.Add(-5*time.Minute))

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].DriverID != "driver-near" {
		t.Errorf("expected driver-near, got %s", candidates[0].DriverID)
	}
}

func TestGeoSearchIgnoresStaleSamples(t *testing.T) {
	t.Parallel()
	positionRepo := NewMockPositionRepository()
	svc := service.NewGeoSearchService(positionRepo)

	now := time.Now()
	positionRepo.AddSample("driver-stale", 50.001, 20.001, now.Add(-time.Hour))
	positionRepo.AddSample("driver-fresh", 50.001, 20.002, now)

	candidates := svc.FindCandidates(context.Background(), geo.Point{Lat: 50.0, Lng: 20.0}, 1.0, now.Add(-5*time.Minute))

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].DriverID != "driver-fresh" {
		t.Errorf("expected driver-fresh, got %s", candidates[0].DriverID)
	}
}

func TestGeoSearchAveragesSamplesPerDriver(t *testing.T) {
	t.Parallel()
	positionRepo := NewMockPositionRepository()
	svc := service.NewGeoSearchService(positionRepo)

	now := time.Now()
	positionRepo.AddSample("driver-1", 50.002, 20.0, now.Add(-time.Minute))
	positionRepo.AddSample("driver-1", 50.004, 20.0, now)

	candidates := svc.FindCandidates(context.Background(), geo.Point{Lat: 50.0, Lng: 20.0}, 1.0, now.Add(-5*time.Minute))

	if len(candidates) != 1 {
		t.Fatalf("expected one candidate per driver, got %d", len(candidates))
	}
	if got := candidates[0].Position.Lat; math.Abs(got-50.003) > 1e-9 {
		t.Errorf("expected averaged latitude 50.003, got %f", got)
	}
}

func TestGeoSearchStoreFailureYieldsNoCandidates(t *testing.T) {
	t.Parallel()
	positionRepo := NewMockPositionRepository()
	positionRepo.FindError = errors.New("connection refused")
	svc := service.NewGeoSearchService(positionRepo)

	candidates := svc.FindCandidates(context.Background(), geo.Point{Lat: 50.0, Lng: 20.0}, 1.0, time.Now().Add(-5*time.Minute))

	if candidates != nil {
		t.Errorf("expected nil candidates on store failure, got %v", candidates)
	}
}
