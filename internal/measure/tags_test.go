package measure_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geomeasure/internal/measure"
)

func TestTagRoundTrip(t *testing.T) {
	kinds := []measure.Kind{
		measure.KindDistance,
		measure.KindMultiDistance,
		measure.KindArea,
		measure.KindCurve,
		measure.KindPointInfo,
	}
	elements := []string{
		measure.ElemPoint,
		measure.ElemLine,
		measure.ElemLabel,
		measure.ElemPolygon,
		measure.ElemTotalLabel,
		measure.ElemMovingLine,
		measure.ElemMovingLabel,
		measure.ElemHighlight,
	}

	for _, kind := range kinds {
		for _, elem := range elements {
			tag := measure.Tag(kind, elem, "measure_1700000000001")
			gotKind, gotElem, gotID, ok := measure.ParseTag(tag)
			require.True(t, ok, "tag %q must parse", tag)
			require.Equal(t, kind, gotKind)
			require.Equal(t, elem, gotElem)
			require.Equal(t, "measure_1700000000001", gotID)
		}
	}
}

func TestParseTagDisambiguatesUnderscoredElements(t *testing.T) {
	tag := measure.Tag(measure.KindMultiDistance, measure.ElemMovingLine, "measure_7")
	_, elem, id, ok := measure.ParseTag(tag)
	require.True(t, ok)
	require.Equal(t, measure.ElemMovingLine, elem, "moving_line must not parse as line")
	require.Equal(t, "measure_7", id)
}

func TestParseTagRejectsForeignTags(t *testing.T) {
	for _, tag := range []string{
		"",
		"basemap_road_42",
		"annotate_",
		"annotate_teleport_point_measure_1",
		"annotate_distance_point_",
	} {
		_, _, _, ok := measure.ParseTag(tag)
		require.False(t, ok, "tag %q must not parse", tag)
	}
	require.True(t, measure.IsAnnotationTag("annotate_area_polygon_measure_9"))
	require.False(t, measure.IsAnnotationTag("annotate_area_polygon"))
}

func TestGroupIDsAreMonotonic(t *testing.T) {
	prev := measure.NewGroupID()
	for i := 0; i < 100; i++ {
		next := measure.NewGroupID()
		require.Greater(t, next, prev, "ids must be strictly increasing")
		prev = next
	}
}

func TestKindFromString(t *testing.T) {
	for _, name := range []string{"distance", "multi_distances", "area", "curve", "pointInfo"} {
		kind, ok := measure.KindFromString(name)
		require.True(t, ok)
		require.Equal(t, name, kind.String())
	}
	_, ok := measure.KindFromString("radius")
	require.False(t, ok)
}
