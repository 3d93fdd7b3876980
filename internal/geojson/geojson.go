// Package geojson converts measurement groups to GeoJSON
// FeatureCollections for export.
package geojson

import (
	"encoding/json"

	"geomeasure/internal/measure"
	"geomeasure/pkg/geo"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// LineCoordinates represents [[lng, lat], ...] for a LineString.
type LineCoordinates []PointCoordinates

func toCoords(points []geo.Coordinate) LineCoordinates {
	coords := make(LineCoordinates, len(points))
	for i, p := range points {
		coords[i] = PointCoordinates{p.Lng, p.Lat}
	}
	return coords
}

// FromGroups converts completed measurement groups to a FeatureCollection.
// Pending groups are skipped; a partial capture has no stable shape to
// export.
func FromGroups(groups []*measure.Group) *FeatureCollection {
	features := make([]Feature, 0, len(groups))

	for _, g := range groups {
		if g.Status != measure.StatusCompleted {
			continue
		}
		f, ok := toFeature(g)
		if !ok {
			continue
		}
		features = append(features, f)
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func toFeature(g *measure.Group) (Feature, bool) {
	props := map[string]any{
		"id":       g.ID,
		"kind":     g.Kind.String(),
		"map_name": g.MapName,
		"label":    g.LabelNumberIndex,
	}

	points := g.Coords.Points()
	switch g.Kind {
	case measure.KindDistance, measure.KindMultiDistance:
		if len(points) < 2 {
			return Feature{}, false
		}
		props["distances"] = g.Records.Distances
		props["total_distance"] = g.Records.TotalDistance
		return Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "LineString", Coordinates: toCoords(points)},
			Properties: props,
		}, true

	case measure.KindArea:
		if len(points) < 3 {
			return Feature{}, false
		}
		// GeoJSON polygons close their ring explicitly.
		ring := toCoords(points)
		ring = append(ring, ring[0])
		props["area"] = g.Records.Area
		return Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Polygon", Coordinates: []LineCoordinates{ring}},
			Properties: props,
		}, true

	case measure.KindCurve:
		path := g.InterpolatedPoints
		if len(path) < 2 {
			return Feature{}, false
		}
		props["total_distance"] = g.Records.TotalDistance
		props["control_points"] = toCoords(points)
		return Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "LineString", Coordinates: toCoords(path)},
			Properties: props,
		}, true

	case measure.KindPointInfo:
		if len(points) == 0 {
			return Feature{}, false
		}
		return Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: PointCoordinates{points[0].Lng, points[0].Lat}},
			Properties: props,
		}, true
	}
	return Feature{}, false
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
