// Package geo contains pure geographic computation helpers.
package geo

import "math"

// Earth's radius, sphere approximation.
const earthRadiusKm = 6371.0

// Point is a coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Box is a latitude/longitude bounding box.
type Box struct {
	LatMin float64
	LatMax float64
	LngMin float64
	LngMax float64
}

// BoundingBox returns the box of points within radiusKm of center, using a
// spherical-earth offset with longitude compressed by cos(latitude).
func BoundingBox(center Point, radiusKm float64) Box {
	dLat := radiusKm / earthRadiusKm
	dLng := radiusKm / (earthRadiusKm * math.Cos(math.Pi*center.Lat/180))

	return Box{
		LatMin: center.Lat - dLat*180/math.Pi,
		LatMax: center.Lat + dLat*180/math.Pi,
		LngMin: center.Lng - dLng*180/math.Pi,
		LngMax: center.Lng + dLng*180/math.Pi,
	}
}

// PlanarDistance returns the Euclidean distance between two points in
// degree space. It is not a great-circle distance; candidate ordering only
// needs a monotonic measure over a small box.
func PlanarDistance(a, b Point) float64 {
	return math.Sqrt(math.Pow(a.Lat-b.Lat, 2) + math.Pow(a.Lng-b.Lng, 2))
}

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
