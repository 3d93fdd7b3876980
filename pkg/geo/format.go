package geo

import "fmt"

// FormatDistance formats a distance in meters for a label, switching to
// kilometers at 1000 m.
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.2f km", meters/1000)
	}
	return fmt.Sprintf("%.2f m", meters)
}

// FormatArea formats an area in square meters for a label, switching to
// square kilometers at 1 km².
func FormatArea(squareMeters float64) string {
	if squareMeters >= 1000*1000 {
		return fmt.Sprintf("%.2f km²", squareMeters/(1000*1000))
	}
	return fmt.Sprintf("%.2f m²", squareMeters)
}

// FormatDistanceParts splits a distance into a value string and a unit for
// label primitives that render the two separately.
func FormatDistanceParts(meters float64) (value, unit string) {
	if meters >= 1000 {
		return fmt.Sprintf("%.2f", meters/1000), "km"
	}
	return fmt.Sprintf("%.2f", meters), "m"
}

// FormatAreaParts splits an area into a value string and a unit.
func FormatAreaParts(squareMeters float64) (value, unit string) {
	if squareMeters >= 1000*1000 {
		return fmt.Sprintf("%.2f", squareMeters/(1000*1000)), "km²"
	}
	return fmt.Sprintf("%.2f", squareMeters), "m²"
}

// FormatCoordinate formats a coordinate for a point-info label.
func FormatCoordinate(c Coordinate) string {
	return fmt.Sprintf("%.6f°, %.6f°, %.1f m", c.Lat, c.Lng, c.Height)
}
