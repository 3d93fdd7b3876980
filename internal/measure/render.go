package measure

import (
	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// RenderGroup draws the full set of primitives for a group from scratch.
// Views use it for measurements authored on other maps, where no
// interactive mode owns the graphics. It goes through the synchronizer, so
// repeated calls with the same state mutate rather than reallocate.
func RenderGroup(s *Synchronizer, g *Group) {
	set := s.Registry().Ensure(g.ID)

	switch g.Kind {
	case KindDistance, KindMultiDistance:
		renderPath(s, g, set)
	case KindArea:
		renderArea(s, g, set)
	case KindCurve:
		renderCurve(s, g, set)
	case KindPointInfo:
		renderPointInfo(s, g, set)
	}
}

func renderPath(s *Synchronizer, g *Group, set *HandleSet) {
	points := g.Coords.Points()
	for i, p := range points {
		s.CreateOrUpdateMarker(set, i, p, markerOpts(g))
	}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		s.CreateOrUpdateLine(set, i-1, []geo.Coordinate{a, b}, lineOpts(g))

		d := geo.Distance(a, b)
		if i-1 < len(g.Records.Distances) {
			d = g.Records.Distances[i-1]
		}
		value, unit := geo.FormatDistanceParts(d)
		s.CreateOrUpdateLabel(set, i-1, []geo.Coordinate{geo.Midpoint(a, b)}, value, unit, labelOpts(g))
	}
	if g.Status == StatusCompleted && len(points) >= 2 {
		value, unit := geo.FormatDistanceParts(g.Records.TotalDistance)
		s.CreateOrUpdateTotalLabel(set, points[len(points)-1], value, unit, backend.LabelOptions{
			Tag:      Tag(g.Kind, ElemTotalLabel, g.ID),
			Color:    backend.Cyan,
			FontSize: 16,
		})
	}
}

func renderArea(s *Synchronizer, g *Group, set *HandleSet) {
	points := g.Coords.Points()
	for i, p := range points {
		s.CreateOrUpdateMarker(set, i, p, markerOpts(g))
	}
	if len(points) < 3 {
		return
	}
	fill := statusColor(g.Status)
	fill.A = 90
	s.CreateOrUpdatePolygon(set, points, backend.PolygonOptions{
		Tag:     Tag(g.Kind, ElemPolygon, g.ID),
		Fill:    fill,
		Outline: statusColor(g.Status),
	})
	value, unit := geo.FormatAreaParts(g.Records.Area)
	s.CreateOrUpdateLabel(set, 0, []geo.Coordinate{geo.Centroid(points)}, value, unit, labelOpts(g))
}

func renderCurve(s *Synchronizer, g *Group, set *HandleSet) {
	points := g.Coords.Points()
	for i, p := range points {
		s.CreateOrUpdateMarker(set, i, p, markerOpts(g))
	}
	path := g.InterpolatedPoints
	if len(path) < 2 {
		path = geo.InterpolateCurve(points, geo.DefaultCurveSamples)
	}
	if len(path) >= 2 {
		s.CreateOrUpdateLine(set, 0, path, lineOpts(g))
	}
	if g.Status == StatusCompleted && len(points) == 3 {
		value, unit := geo.FormatDistanceParts(g.Records.TotalDistance)
		s.CreateOrUpdateLabel(set, 0, []geo.Coordinate{points[1]}, value, unit, labelOpts(g))
	}
}

func renderPointInfo(s *Synchronizer, g *Group, set *HandleSet) {
	if g.Coords.Len() == 0 {
		return
	}
	p := g.Coords.At(0)
	s.CreateOrUpdateMarker(set, 0, p, markerOpts(g))
	s.CreateOrUpdateLabel(set, 0, []geo.Coordinate{p}, geo.FormatCoordinate(p), "", labelOpts(g))
}
