package geojson_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"geomeasure/internal/measure"
	"geomeasure/pkg/geo"
	"geomeasure/internal/geojson"
)

var (
	ptA = geo.Coordinate{Lat: 48.1374, Lng: 11.5755}
	ptB = geo.Coordinate{Lat: 48.1390, Lng: 11.5801}
	ptC = geo.Coordinate{Lat: 48.1412, Lng: 11.5826}
)

func group(kind measure.Kind, points ...geo.Coordinate) *measure.Group {
	g := measure.NewGroup(kind, "cesium")
	for _, p := range points {
		g.Coords.Append(p)
	}
	g.Status = measure.StatusCompleted
	return g
}

func TestPendingGroupsAreSkipped(t *testing.T) {
	pending := group(measure.KindDistance, ptA, ptB)
	pending.Status = measure.StatusPending

	fc := geojson.FromGroups([]*measure.Group{pending})
	require.Equal(t, "FeatureCollection", fc.Type)
	require.Empty(t, fc.Features)
}

func TestDistanceBecomesLineString(t *testing.T) {
	g := group(measure.KindMultiDistance, ptA, ptB, ptC)
	g.Records.Distances = []float64{geo.Distance(ptA, ptB), geo.Distance(ptB, ptC)}
	g.Records.TotalDistance = g.Records.Distances[0] + g.Records.Distances[1]

	fc := geojson.FromGroups([]*measure.Group{g})
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	require.Equal(t, "LineString", f.Geometry.Type)

	coords, ok := f.Geometry.Coordinates.(geojson.LineCoordinates)
	require.True(t, ok)
	require.Len(t, coords, 3)
	require.Equal(t, geojson.PointCoordinates{ptA.Lng, ptA.Lat}, coords[0])

	require.Equal(t, g.ID, f.Properties["id"])
	require.Equal(t, "multi_distances", f.Properties["kind"])
	require.Equal(t, "cesium", f.Properties["map_name"])
	require.Equal(t, g.Records.TotalDistance, f.Properties["total_distance"])
}

func TestAreaRingIsClosed(t *testing.T) {
	g := group(measure.KindArea, ptA, ptB, ptC)
	g.Records.Area = geo.PolygonArea([]geo.Coordinate{ptA, ptB, ptC})

	fc := geojson.FromGroups([]*measure.Group{g})
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	require.Equal(t, "Polygon", f.Geometry.Type)

	rings, ok := f.Geometry.Coordinates.([]geojson.LineCoordinates)
	require.True(t, ok)
	require.Len(t, rings, 1)
	ring := rings[0]
	require.Len(t, ring, 4)
	require.Equal(t, ring[0], ring[3], "polygon rings repeat their first vertex")
	require.Equal(t, g.Records.Area, f.Properties["area"])
}

func TestDegenerateShapesAreDropped(t *testing.T) {
	line := group(measure.KindDistance, ptA)
	area := group(measure.KindArea, ptA, ptB)
	point := group(measure.KindPointInfo)

	fc := geojson.FromGroups([]*measure.Group{line, area, point})
	require.Empty(t, fc.Features)
}

func TestCurveExportsDensifiedPath(t *testing.T) {
	g := group(measure.KindCurve, ptA, ptB, ptC)
	g.InterpolatedPoints = geo.InterpolateCurve([]geo.Coordinate{ptA, ptB, ptC}, geo.DefaultCurveSamples)
	g.Records.TotalDistance = geo.PathLength(g.InterpolatedPoints)

	fc := geojson.FromGroups([]*measure.Group{g})
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	require.Equal(t, "LineString", f.Geometry.Type)

	coords, ok := f.Geometry.Coordinates.(geojson.LineCoordinates)
	require.True(t, ok)
	require.Len(t, coords, len(g.InterpolatedPoints))

	controls, ok := f.Properties["control_points"].(geojson.LineCoordinates)
	require.True(t, ok)
	require.Len(t, controls, 3)
}

func TestPointInfoBecomesPoint(t *testing.T) {
	g := group(measure.KindPointInfo, ptA)

	fc := geojson.FromGroups([]*measure.Group{g})
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	require.Equal(t, "Point", f.Geometry.Type)
	require.Equal(t, geojson.PointCoordinates{ptA.Lng, ptA.Lat}, f.Geometry.Coordinates)
}

func TestToJSONRoundTrips(t *testing.T) {
	g := group(measure.KindPointInfo, ptA)
	fc := geojson.FromGroups([]*measure.Group{g})

	raw, err := fc.ToJSONIndent()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "FeatureCollection", decoded["type"])

	features, ok := decoded["features"].([]any)
	require.True(t, ok)
	require.Len(t, features, 1)
}
