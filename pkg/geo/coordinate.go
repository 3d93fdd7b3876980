package geo

import (
	"fmt"
	"math"
)

// Coordinate represents a geographic point in degrees with an optional
// height in meters.
type Coordinate struct {
	Lat    float64
	Lng    float64
	Height float64
}

// NewCoordinate creates a coordinate at sea level
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{Lat: lat, Lng: lng}
}

// Validate checks that the coordinate is within valid geographic ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return fmt.Errorf("coordinate cannot be NaN")
	}
	if math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("coordinate cannot be infinite")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// SamePlace reports whether two coordinates agree on latitude and
// longitude. Height is deliberately ignored: cross-view diffing compares
// horizontal position only.
func (c Coordinate) SamePlace(other Coordinate) bool {
	const eps = 1e-9
	return math.Abs(c.Lat-other.Lat) < eps && math.Abs(c.Lng-other.Lng) < eps
}

// SamePath reports whether two coordinate sequences agree pairwise on
// latitude and longitude.
func SamePath(a, b []Coordinate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].SamePlace(b[i]) {
			return false
		}
	}
	return true
}

// ScreenPoint is a pixel position in a view's window space.
type ScreenPoint struct {
	X float64
	Y float64
}

// Distance returns the pixel distance between two screen points.
func (p ScreenPoint) Distance(other ScreenPoint) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}
