package geo

// DefaultCurveSamples is the number of points generated when densifying a
// three-point curve.
const DefaultCurveSamples = 64

// InterpolateCurve densifies a three-control-point curve into a smooth path
// using a quadratic Bézier through the control points. The middle control
// point is adjusted so the curve passes through it at t=0.5.
//
// Fewer than three points are returned unchanged; extra points beyond the
// third are ignored.
func InterpolateCurve(control []Coordinate, samples int) []Coordinate {
	if len(control) < 3 {
		out := make([]Coordinate, len(control))
		copy(out, control)
		return out
	}
	if samples < 2 {
		samples = DefaultCurveSamples
	}

	p0, mid, p2 := control[0], control[1], control[2]

	// Solve for the Bézier control point that makes the curve pass
	// through mid at t=0.5: B(0.5) = 0.25*p0 + 0.5*p1 + 0.25*p2.
	p1 := Coordinate{
		Lat:    2*mid.Lat - (p0.Lat+p2.Lat)/2,
		Lng:    2*mid.Lng - (p0.Lng+p2.Lng)/2,
		Height: 2*mid.Height - (p0.Height+p2.Height)/2,
	}

	path := make([]Coordinate, 0, samples+1)
	for i := 0; i <= samples; i++ {
		t := float64(i) / float64(samples)
		u := 1 - t
		path = append(path, Coordinate{
			Lat:    u*u*p0.Lat + 2*u*t*p1.Lat + t*t*p2.Lat,
			Lng:    u*u*p0.Lng + 2*u*t*p1.Lng + t*t*p2.Lng,
			Height: u*u*p0.Height + 2*u*t*p1.Height + t*t*p2.Height,
		})
	}
	return path
}
