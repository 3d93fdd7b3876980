package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// Earth's mean radius in meters
const EarthRadiusMeters = 6371000.0

// Distance calculates the great-circle distance between two coordinates in
// meters using the haversine formula.
func Distance(a, b Coordinate) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PathLength calculates the total length of a path in meters.
func PathLength(points []Coordinate) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// SegmentDistances returns the per-segment distances of a path in meters.
// A path of n points yields n-1 entries.
func SegmentDistances(points []Coordinate) []float64 {
	if len(points) < 2 {
		return nil
	}

	distances := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		distances = append(distances, Distance(points[i-1], points[i]))
	}
	return distances
}

// Midpoint calculates the midpoint between two coordinates using S2
// interpolation. The height is averaged linearly.
func Midpoint(a, b Coordinate) Coordinate {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)

	mid := s2.Interpolate(0.5, s2.PointFromLatLng(p1), s2.PointFromLatLng(p2))
	midLatLng := s2.LatLngFromPoint(mid)

	return Coordinate{
		Lat:    midLatLng.Lat.Degrees(),
		Lng:    midLatLng.Lng.Degrees(),
		Height: (a.Height + b.Height) / 2,
	}
}

// Centroid calculates the geographic centroid of a set of coordinates.
func Centroid(points []Coordinate) Coordinate {
	if len(points) == 0 {
		return Coordinate{}
	}

	var sumLat, sumLng, sumHeight float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
		sumHeight += p.Height
	}

	n := float64(len(points))
	return Coordinate{Lat: sumLat / n, Lng: sumLng / n, Height: sumHeight / n}
}

// PolygonArea calculates the area of a polygon using the shoelace formula
// scaled to square meters at the polygon's latitude. Points should be in
// winding order; a closed ring (first point repeated) is handled.
func PolygonArea(points []Coordinate) float64 {
	ring := points
	if len(ring) >= 2 && ring[0].SamePlace(ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < len(ring); i++ {
		j := (i + 1) % len(ring)
		sum += (ring[j].Lng - ring[i].Lng) * (ring[j].Lat + ring[i].Lat)
	}

	latRad := ring[0].Lat * math.Pi / 180
	metersPerDegreeLat := 111320.0
	metersPerDegreeLng := 111320.0 * math.Cos(latRad)

	return math.Abs(sum) * metersPerDegreeLat * metersPerDegreeLng / 2.0
}
