package measure_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geomeasure/internal/measure"
	"geomeasure/pkg/backend"
	"geomeasure/pkg/backend/backendtest"
	"geomeasure/pkg/geo"
)

func newSync(t *testing.T) (*backendtest.Fake, *measure.Synchronizer) {
	t.Helper()
	fake := backendtest.New("test")
	return fake, measure.NewSynchronizer(fake, measure.NewRegistry())
}

func TestCreateOrUpdateLineMutatesInPlace(t *testing.T) {
	fake, sync := newSync(t)
	set := sync.Registry().Ensure("measure_1")
	opts := backend.LineOptions{Tag: "annotate_distance_line_measure_1"}

	first := sync.CreateOrUpdateLine(set, 0, []geo.Coordinate{ptA, ptB}, opts)
	require.NotNil(t, first)
	require.Len(t, fake.Lines, 1)

	second := sync.CreateOrUpdateLine(set, 0, []geo.Coordinate{ptA, ptC}, opts)
	require.Same(t, first, second, "a live handle is mutated, never reallocated")
	require.Len(t, fake.Lines, 1)
	require.Equal(t, 1, fake.Lines[0].SetPositionsCalls)
}

func TestCreateOrUpdateMarkerReplacesStaleHandle(t *testing.T) {
	fake, sync := newSync(t)
	set := sync.Registry().Ensure("measure_1")
	opts := backend.MarkerOptions{Tag: "annotate_distance_point_measure_1"}

	first := sync.CreateOrUpdateMarker(set, 0, ptA, opts)
	require.NotNil(t, first)

	// Externally removed handle reports !Alive; the next sync reallocates.
	fake.RemovePointMarker(first)
	second := sync.CreateOrUpdateMarker(set, 0, ptB, opts)
	require.NotNil(t, second)
	require.NotSame(t, first, second)
	require.Len(t, fake.Points, 1)
}

func TestCreateOrUpdateSurvivesBackendFailure(t *testing.T) {
	fake, sync := newSync(t)
	set := sync.Registry().Ensure("measure_1")
	opts := backend.MarkerOptions{Tag: "annotate_distance_point_measure_1"}

	fake.FailNext = 1
	require.Nil(t, sync.CreateOrUpdateMarker(set, 0, ptA, opts))

	// The failed slot recovers on the next attempt.
	handle := sync.CreateOrUpdateMarker(set, 0, ptA, opts)
	require.NotNil(t, handle)
	require.Len(t, fake.Points, 1)
}

func TestInvalidArgumentsReturnNil(t *testing.T) {
	_, sync := newSync(t)
	set := sync.Registry().Ensure("measure_1")

	require.Nil(t, sync.CreateOrUpdateMarker(nil, 0, ptA, backend.MarkerOptions{}))
	require.Nil(t, sync.CreateOrUpdateMarker(set, -1, ptA, backend.MarkerOptions{}))
	require.Nil(t, sync.CreateOrUpdateLine(set, 0, []geo.Coordinate{ptA}, backend.LineOptions{}))
	require.Nil(t, sync.CreateOrUpdatePolygon(set, []geo.Coordinate{ptA, ptB}, backend.PolygonOptions{}))
	require.Nil(t, sync.CreateOrUpdateLabel(set, 0, nil, "1", "m", backend.LabelOptions{}))
}

func TestRemoveGroupDropsEveryPrimitive(t *testing.T) {
	fake, sync := newSync(t)
	set := sync.Registry().Ensure("measure_1")

	sync.CreateOrUpdateMarker(set, 0, ptA, backend.MarkerOptions{Tag: "m"})
	sync.CreateOrUpdateMarker(set, 1, ptB, backend.MarkerOptions{Tag: "m"})
	sync.CreateOrUpdateLine(set, 0, []geo.Coordinate{ptA, ptB}, backend.LineOptions{Tag: "l"})
	sync.CreateOrUpdateLabel(set, 0, []geo.Coordinate{ptA, ptB}, "1", "m", backend.LabelOptions{Tag: "t"})
	sync.CreateOrUpdateMovingLine(set, []geo.Coordinate{ptB, ptC}, backend.LineOptions{Tag: "mv"})

	sync.RemoveGroup("measure_1")

	require.Empty(t, fake.Points)
	require.Empty(t, fake.Lines)
	require.Empty(t, fake.Labels)
	require.Nil(t, sync.Registry().Get("measure_1"))
}

func TestRemoveMarkerAtRealignsSlots(t *testing.T) {
	fake, sync := newSync(t)
	set := sync.Registry().Ensure("measure_1")

	a := sync.CreateOrUpdateMarker(set, 0, ptA, backend.MarkerOptions{Tag: "m"})
	sync.CreateOrUpdateMarker(set, 1, ptB, backend.MarkerOptions{Tag: "m"})
	c := sync.CreateOrUpdateMarker(set, 2, ptC, backend.MarkerOptions{Tag: "m"})

	sync.RemoveMarkerAt(set, 1)

	require.Len(t, fake.Points, 2)
	require.Len(t, set.Markers, 2)
	require.Same(t, a, set.Markers[0])
	require.Same(t, c, set.Markers[1])
}

func TestHighlightFollowsHoveredMarker(t *testing.T) {
	fake, sync := newSync(t)
	set := sync.Registry().Ensure("measure_1")
	tag := measure.Tag(measure.KindDistance, measure.ElemPoint, "measure_1")
	marker := sync.CreateOrUpdateMarker(set, 0, ptA, backend.MarkerOptions{Tag: tag})

	h := measure.NewHighlightHandler(fake)
	h.Handle(backend.InputEvent{
		Kind:   backend.MouseMove,
		Valid:  true,
		Picked: []backend.PickedFeature{{Tag: tag, Handle: marker}},
	})
	require.Len(t, fake.Points, 2, "hover adds a highlight ring")

	h.Handle(backend.InputEvent{Kind: backend.MouseMove, Valid: true})
	require.Len(t, fake.Points, 1, "leaving the marker removes the ring")
}
