package spatial

import (
	"github.com/golang/geo/s2"
)

const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// HaversineDistance calculates the great-circle distance between two [lat, lng] points in meters
func HaversineDistance(a, b [2]float64) float64 {
	p1 := s2.LatLngFromDegrees(a[0], a[1])
	p2 := s2.LatLngFromDegrees(b[0], b[1])
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// DistanceFrom returns the distance of an optional start point from origin;
// ok is false when the point is missing
func DistanceFrom(origin [2]float64, latlng *[2]float64) (meters float64, ok bool) {
	if latlng == nil {
		return 0, false
	}
	return HaversineDistance(origin, *latlng), true
}
