package geo

import (
	"math"
	"testing"
)

func TestInterpolateCurveEndpoints(t *testing.T) {
	control := []Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(1, 1),
		NewCoordinate(0, 2),
	}
	path := InterpolateCurve(control, 64)

	if len(path) != 65 {
		t.Fatalf("InterpolateCurve failed: expected 65 samples, got %d", len(path))
	}
	if !path[0].SamePlace(control[0]) {
		t.Errorf("InterpolateCurve failed: path should start at first control point")
	}
	if !path[len(path)-1].SamePlace(control[2]) {
		t.Errorf("InterpolateCurve failed: path should end at last control point")
	}
}

func TestInterpolateCurvePassesThroughMiddle(t *testing.T) {
	control := []Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(1, 1),
		NewCoordinate(0, 2),
	}
	path := InterpolateCurve(control, 64)

	mid := path[32] // t = 0.5
	if math.Abs(mid.Lat-1) > 1e-9 || math.Abs(mid.Lng-1) > 1e-9 {
		t.Errorf("InterpolateCurve failed: expected curve through (1, 1), got (%v, %v)", mid.Lat, mid.Lng)
	}
}

func TestInterpolateCurveLongerThanChord(t *testing.T) {
	control := []Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(1, 1),
		NewCoordinate(0, 2),
	}
	path := InterpolateCurve(control, 64)

	chord := Distance(control[0], control[2])
	along := PathLength(path)
	if along <= chord {
		t.Errorf("InterpolateCurve failed: path length %v should exceed chord %v", along, chord)
	}
}

func TestInterpolateCurveTooFewPoints(t *testing.T) {
	control := []Coordinate{NewCoordinate(0, 0), NewCoordinate(1, 1)}
	path := InterpolateCurve(control, 64)

	if len(path) != 2 {
		t.Fatalf("InterpolateCurve failed: expected passthrough of 2 points, got %d", len(path))
	}
}
