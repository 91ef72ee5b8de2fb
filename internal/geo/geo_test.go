package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	t.Parallel()
	// Kraków to Warsaw, roughly 252 km.
	got := HaversineKm(50.0647, 19.9450, 52.2297, 21.0122)
	if math.Abs(got-252) > 5 {
		t.Errorf("expected ~252 km, got %f", got)
	}
}

func TestHaversineZeroDistance(t *testing.T) {
	t.Parallel()
	if got := HaversineKm(50.0, 20.0, 50.0, 20.0); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	t.Parallel()
	center := Point{Lat: 50.0, Lng: 20.0}
	box := BoundingBox(center, 2.0)

	// Points 1.9 km due north/east must fall inside the box.
	north := Point{Lat: 50.0 + 1.9/111.0, Lng: 20.0}
	if north.Lat > box.LatMax {
		t.Errorf("expected point inside box, lat %f > max %f", north.Lat, box.LatMax)
	}
	if box.LatMin >= center.Lat || box.LatMax <= center.Lat {
		t.Error("expected box to straddle the center latitude")
	}
	if box.LngMin >= center.Lng || box.LngMax <= center.Lng {
		t.Error("expected box to straddle the center longitude")
	}
}

func TestBoundingBoxWidensAtHigherLatitudes(t *testing.T) {
	t.Parallel()
	equator := BoundingBox(Point{Lat: 0, Lng: 20}, 1.0)
	north := BoundingBox(Point{Lat: 60, Lng: 20}, 1.0)

	if (north.LngMax - north.LngMin) <= (equator.LngMax - equator.LngMin) {
		t.Error("expected longitude span to grow with latitude")
	}
}

func TestPlanarDistanceOrdering(t *testing.T) {
	t.Parallel()
	origin := Point{Lat: 50.0, Lng: 20.0}
	near := Point{Lat: 50.001, Lng: 20.001}
	far := Point{Lat: 50.01, Lng: 20.01}

	if PlanarDistance(origin, near) >= PlanarDistance(origin, far) {
		t.Error("expected nearer point to have smaller planar distance")
	}
}
