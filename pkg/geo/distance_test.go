package geo

import (
	"math"
	"testing"
)

func TestDistanceEquator(t *testing.T) {
	// One degree of longitude at the equator is about 111.19 km for a
	// sphere with the mean radius used here.
	a := NewCoordinate(0, 0)
	b := NewCoordinate(0, 1)
	d := Distance(a, b)

	expected := EarthRadiusMeters * math.Pi / 180
	if math.Abs(d-expected) > 1 {
		t.Errorf("Distance failed: expected %v, got %v", expected, d)
	}
}

func TestDistanceZero(t *testing.T) {
	a := NewCoordinate(48.1351, 11.5820)
	if d := Distance(a, a); d != 0 {
		t.Errorf("Distance failed: expected 0, got %v", d)
	}
}

func TestPathLength(t *testing.T) {
	points := []Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(0, 1),
		NewCoordinate(0, 2),
	}
	total := PathLength(points)
	sum := Distance(points[0], points[1]) + Distance(points[1], points[2])

	if math.Abs(total-sum) > 1e-9 {
		t.Errorf("PathLength failed: expected %v, got %v", sum, total)
	}
}

func TestPathLengthShort(t *testing.T) {
	if l := PathLength([]Coordinate{NewCoordinate(1, 1)}); l != 0 {
		t.Errorf("PathLength failed: expected 0 for single point, got %v", l)
	}
	if l := PathLength(nil); l != 0 {
		t.Errorf("PathLength failed: expected 0 for nil, got %v", l)
	}
}

func TestSegmentDistances(t *testing.T) {
	points := []Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(0, 1),
		NewCoordinate(1, 1),
	}
	distances := SegmentDistances(points)

	if len(distances) != 2 {
		t.Fatalf("SegmentDistances failed: expected 2 entries, got %d", len(distances))
	}

	var sum float64
	for _, d := range distances {
		sum += d
	}
	if math.Abs(sum-PathLength(points)) > 1e-9 {
		t.Errorf("SegmentDistances failed: sum %v != path length %v", sum, PathLength(points))
	}
}

func TestMidpoint(t *testing.T) {
	a := NewCoordinate(0, 0)
	b := NewCoordinate(0, 2)
	mid := Midpoint(a, b)

	if math.Abs(mid.Lat) > 1e-9 || math.Abs(mid.Lng-1) > 1e-9 {
		t.Errorf("Midpoint failed: expected (0, 1), got (%v, %v)", mid.Lat, mid.Lng)
	}
}

func TestPolygonArea(t *testing.T) {
	// Roughly 1km x 1km square at the equator.
	d := 1.0 / 111.32 // about 1 km in degrees
	points := []Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(0, d),
		NewCoordinate(d, d),
		NewCoordinate(d, 0),
	}
	area := PolygonArea(points)

	expected := 1000.0 * 1000.0
	if math.Abs(area-expected)/expected > 0.01 {
		t.Errorf("PolygonArea failed: expected ~%v, got %v", expected, area)
	}
}

func TestPolygonAreaClosedRing(t *testing.T) {
	d := 1.0 / 111.32
	open := []Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(0, d),
		NewCoordinate(d, d),
		NewCoordinate(d, 0),
	}
	closed := append(append([]Coordinate{}, open...), open[0])

	if math.Abs(PolygonArea(open)-PolygonArea(closed)) > 1e-6 {
		t.Errorf("PolygonArea failed: open and closed rings should agree")
	}
}

func TestPolygonAreaDegenerate(t *testing.T) {
	points := []Coordinate{NewCoordinate(0, 0), NewCoordinate(0, 1)}
	if a := PolygonArea(points); a != 0 {
		t.Errorf("PolygonArea failed: expected 0 for 2 points, got %v", a)
	}
}
