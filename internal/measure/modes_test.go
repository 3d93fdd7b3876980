package measure_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geomeasure/internal/measure"
	"geomeasure/internal/pool"
	"geomeasure/pkg/backend"
	"geomeasure/pkg/backend/backendtest"
	"geomeasure/pkg/geo"
)

var (
	ptA = geo.Coordinate{Lat: 48.1374, Lng: 11.5755}
	ptB = geo.Coordinate{Lat: 48.1390, Lng: 11.5801}
	ptC = geo.Coordinate{Lat: 48.1412, Lng: 11.5826}
	ptD = geo.Coordinate{Lat: 48.1430, Lng: 11.5850}
	ptE = geo.Coordinate{Lat: 48.1451, Lng: 11.5872}
)

type fixture struct {
	fake *backendtest.Fake
	pool *pool.Pool
	env  measure.Env
	mode measure.Mode
}

func newFixture(t *testing.T, kind measure.Kind) *fixture {
	t.Helper()
	fake := backendtest.New("test")
	p := pool.New()
	env := measure.Env{
		Adapter: fake,
		Store:   p,
		Sync:    measure.NewSynchronizer(fake, measure.NewRegistry()),
		Confirm: measure.AutoConfirm,
		Tuning:  measure.DefaultTuning(),
	}
	mode := measure.NewMode(kind, env)
	require.NotNil(t, mode)
	mode.Activate()
	return &fixture{fake: fake, pool: p, env: env, mode: mode}
}

func (f *fixture) click(c geo.Coordinate) {
	f.mode.HandleInput(backend.InputEvent{Kind: backend.LeftClick, MapPoint: c, Valid: true, Picked: f.picksAt(c)})
}

func (f *fixture) move(c geo.Coordinate) {
	f.mode.HandleInput(backend.InputEvent{Kind: backend.MouseMove, MapPoint: c, Valid: true, Picked: f.picksAt(c)})
}

func (f *fixture) rightClick(c geo.Coordinate) {
	f.mode.HandleInput(backend.InputEvent{Kind: backend.RightClick, MapPoint: c, Valid: true})
}

func (f *fixture) middleClick(c geo.Coordinate) {
	f.mode.HandleInput(backend.InputEvent{Kind: backend.MiddleClick, MapPoint: c, Valid: true, Picked: f.picksAt(c)})
}

func (f *fixture) doubleClickLine(tag string, c geo.Coordinate) {
	handle := f.fake.FindTag(tag)
	var picked []backend.PickedFeature
	if handle != nil {
		picked = append(picked, backend.PickedFeature{Tag: tag, Handle: handle})
	}
	f.mode.HandleInput(backend.InputEvent{Kind: backend.DoubleClick, MapPoint: c, Valid: true, Picked: picked})
}

// picksAt simulates the renderer's marker hit-testing with a geographic
// radius.
func (f *fixture) picksAt(c geo.Coordinate) []backend.PickedFeature {
	var picked []backend.PickedFeature
	for _, p := range f.fake.Points {
		if geo.Distance(p.Position(), c) < 1.0 {
			picked = append(picked, backend.PickedFeature{Tag: p.Tag(), Handle: p})
		}
	}
	return picked
}

func (f *fixture) group(t *testing.T) *measure.Group {
	t.Helper()
	data := f.pool.Data()
	require.Len(t, data, 1)
	return data[0]
}

func sumOf(d []float64) float64 {
	total := 0.0
	for _, v := range d {
		total += v
	}
	return total
}

func TestMultiDistanceCaptureStaysPending(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.click(ptB)
	f.click(ptC)

	g := f.group(t)
	require.Equal(t, measure.StatusPending, g.Status)
	require.Equal(t, 3, g.Coords.Len())
	require.Len(t, g.Records.Distances, 2)
	require.InDelta(t, sumOf(g.Records.Distances), g.Records.TotalDistance, 1e-6)

	totalTag := measure.Tag(g.Kind, measure.ElemTotalLabel, g.ID)
	require.Nil(t, f.fake.FindTag(totalTag), "pending capture must not carry a total label")
}

func TestMultiDistanceRightClickFinalizes(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.click(ptB)
	f.move(ptC)
	f.rightClick(ptC)

	g := f.group(t)
	require.Equal(t, measure.StatusCompleted, g.Status)
	require.Equal(t, 3, g.Coords.Len())
	require.Len(t, g.Records.Distances, 2)
	require.InDelta(t, sumOf(g.Records.Distances), g.Records.TotalDistance, 1e-6)
	require.NoError(t, g.Validate())

	require.NotNil(t, f.fake.FindTag(measure.Tag(g.Kind, measure.ElemTotalLabel, g.ID)))
	require.Nil(t, f.fake.FindTag(measure.Tag(g.Kind, measure.ElemMovingLine, g.ID)),
		"rubber-band preview must not survive finalize")
}

func TestMultiDistanceCoincidentClickIgnored(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.click(ptB)
	f.click(ptB)

	g := f.group(t)
	require.Equal(t, 2, g.Coords.Len())
	require.Len(t, g.Records.Distances, 1)
}

func TestMultiDistancePerimeterClose(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.click(ptB)
	f.click(ptC)
	f.click(ptA)

	g := f.group(t)
	require.Equal(t, measure.StatusCompleted, g.Status)
	require.Equal(t, 4, g.Coords.Len())
	require.True(t, g.Coords.At(0).SamePlace(g.Coords.At(3)))
	require.Len(t, g.Records.Distances, 3)
	require.InDelta(t, sumOf(g.Records.Distances), g.Records.TotalDistance, 1e-6)

	// The closing segment reuses endpoint markers.
	require.Len(t, f.fake.Points, 3)
	require.Len(t, f.fake.Lines, 3)
}

func TestMultiDistanceInteriorPointDeletion(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.click(ptB)
	f.move(ptC)
	f.rightClick(ptC)

	f.middleClick(ptB)

	g := f.group(t)
	require.Equal(t, 2, g.Coords.Len())
	require.Len(t, g.Records.Distances, 1)
	require.InDelta(t, geo.Distance(ptA, ptC), g.Records.Distances[0], 1e-6)
	require.InDelta(t, g.Records.Distances[0], g.Records.TotalDistance, 1e-6)
	require.Len(t, f.fake.Points, 2)
	require.Len(t, f.fake.Lines, 1)
}

func TestMultiDistanceEndpointDeletionCollapsesToRemoval(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.move(ptB)
	f.rightClick(ptB)
	g := f.group(t)

	f.middleClick(ptB)
	f.middleClick(ptA)

	require.Empty(t, f.pool.Data())
	require.Empty(t, f.fake.Points)
	require.Nil(t, f.fake.FindTag(measure.Tag(measure.KindMultiDistance, measure.ElemPoint, g.ID)))
}

func TestMultiDistanceResumeFromTail(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.click(ptB)
	f.move(ptC)
	f.rightClick(ptC)
	g := f.group(t)
	require.Equal(t, measure.StatusCompleted, g.Status)

	f.click(ptC)
	require.Equal(t, measure.StatusPending, g.Status)
	require.Nil(t, f.fake.FindTag(measure.Tag(g.Kind, measure.ElemTotalLabel, g.ID)),
		"total label is removed while resumed")

	f.click(ptD)
	require.Equal(t, 4, g.Coords.Len())
	require.Len(t, g.Records.Distances, 3)
	require.InDelta(t, geo.Distance(ptC, ptD), g.Records.Distances[2], 1e-6)
}

func TestMultiDistanceResumeFromHeadExtendsBackwards(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptB)
	f.click(ptC)
	f.move(ptD)
	f.rightClick(ptD)
	g := f.group(t)

	f.click(ptB)
	f.click(ptA)

	require.Equal(t, 4, g.Coords.Len())
	require.True(t, g.Coords.At(0).SamePlace(ptA), "reverse capture prepends")
	require.Len(t, g.Records.Distances, 3)
	require.InDelta(t, geo.Distance(ptA, ptB), g.Records.Distances[0], 1e-6)
	require.InDelta(t, sumOf(g.Records.Distances), g.Records.TotalDistance, 1e-6)
}

func TestMultiDistanceArmedInsertionSplitsSegment(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.move(ptC)
	f.rightClick(ptC)
	g := f.group(t)
	require.Len(t, g.Records.Distances, 1)

	lineTag := measure.Tag(g.Kind, measure.ElemLine, g.ID)
	f.doubleClickLine(lineTag, ptB)
	f.click(ptB)

	require.Equal(t, 3, g.Coords.Len())
	require.True(t, g.Coords.At(1).SamePlace(ptB))
	require.Len(t, g.Records.Distances, 2)
	require.InDelta(t, geo.Distance(ptA, ptB), g.Records.Distances[0], 1e-6)
	require.InDelta(t, geo.Distance(ptB, ptC), g.Records.Distances[1], 1e-6)
	require.InDelta(t, sumOf(g.Records.Distances), g.Records.TotalDistance, 1e-6)
	require.Len(t, f.fake.Lines, 2)
}

func TestMultiDistanceStubDiscardedOnFinalize(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.rightClick(ptA)

	require.Empty(t, f.pool.Data())
	require.Empty(t, f.fake.Points)
}

func TestDistanceSecondClickCompletes(t *testing.T) {
	f := newFixture(t, measure.KindDistance)

	f.click(ptA)
	require.Equal(t, measure.StatusPending, f.group(t).Status)

	f.click(ptB)
	g := f.group(t)
	require.Equal(t, measure.StatusCompleted, g.Status)
	require.Equal(t, 2, g.Coords.Len())
	require.Len(t, g.Records.Distances, 1)
	require.InDelta(t, geo.Distance(ptA, ptB), g.Records.TotalDistance, 1e-6)
	require.NoError(t, g.Validate())
}

func TestDistanceDeleteReturnsToSinglePointPending(t *testing.T) {
	f := newFixture(t, measure.KindDistance)

	f.click(ptA)
	f.click(ptB)

	f.middleClick(ptB)

	g := f.group(t)
	require.Equal(t, measure.StatusPending, g.Status)
	require.Equal(t, 1, g.Coords.Len())
	require.Empty(t, g.Records.Distances)
	require.Zero(t, g.Records.TotalDistance)

	// The capture continues: a new click completes it again.
	f.click(ptC)
	require.Equal(t, measure.StatusCompleted, g.Status)
	require.InDelta(t, geo.Distance(ptA, ptC), g.Records.TotalDistance, 1e-6)
}

func TestAreaPerimeterClose(t *testing.T) {
	f := newFixture(t, measure.KindArea)

	f.click(ptA)
	f.click(ptB)
	f.click(ptC)
	require.Equal(t, measure.StatusPending, f.group(t).Status)

	f.click(ptA)
	g := f.group(t)
	require.Equal(t, measure.StatusCompleted, g.Status)
	require.Equal(t, 3, g.Coords.Len())
	require.Greater(t, g.Records.Area, 0.0)
	require.Len(t, f.fake.Polygons, 1)
	require.NoError(t, g.Validate())
}

func TestAreaBelowThreePointsHasNoPolygon(t *testing.T) {
	f := newFixture(t, measure.KindArea)

	f.click(ptA)
	f.click(ptB)
	require.Empty(t, f.fake.Polygons)

	f.click(ptC)
	require.Len(t, f.fake.Polygons, 1)

	f.middleClick(ptC)
	require.Empty(t, f.fake.Polygons)
	require.Zero(t, f.group(t).Records.Area)
}

func TestAreaStubDiscardedOnFinalize(t *testing.T) {
	f := newFixture(t, measure.KindArea)

	f.click(ptA)
	f.rightClick(ptA)

	require.Empty(t, f.pool.Data())
	require.Empty(t, f.fake.Points)
}

func TestCurveThirdClickCompletes(t *testing.T) {
	f := newFixture(t, measure.KindCurve)

	f.click(ptA)
	f.click(ptB)
	f.click(ptC)

	g := f.group(t)
	require.Equal(t, measure.StatusCompleted, g.Status)
	require.Equal(t, 3, g.Coords.Len())
	require.Len(t, g.InterpolatedPoints, geo.DefaultCurveSamples+1)
	require.NoError(t, g.Validate())

	// The curved path is at least as long as the straight chord.
	chord := geo.Distance(ptA, ptC)
	require.GreaterOrEqual(t, g.Records.TotalDistance, chord)

	require.Len(t, f.fake.Lines, 1)
	require.Len(t, f.fake.Lines[0].Positions(), geo.DefaultCurveSamples+1)
}

func TestCurveDeleteRemovesWholeGroup(t *testing.T) {
	f := newFixture(t, measure.KindCurve)

	f.click(ptA)
	f.click(ptB)
	f.click(ptC)

	f.middleClick(ptB)

	require.Empty(t, f.pool.Data())
	require.Empty(t, f.fake.Points)
	require.Empty(t, f.fake.Lines)
}

func TestPointInfoClickCompletesImmediately(t *testing.T) {
	f := newFixture(t, measure.KindPointInfo)

	f.click(ptA)

	g := f.group(t)
	require.Equal(t, measure.StatusCompleted, g.Status)
	require.Equal(t, 1, g.Coords.Len())
	require.NotNil(t, g.Records.Cartographic)
	require.True(t, g.Records.Cartographic.SamePlace(ptA))
	require.NoError(t, g.Validate())

	// Every click is its own group.
	f.click(ptB)
	require.Len(t, f.pool.Data(), 2)
}

func TestConfirmDeniedBlocksDeletion(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)
	f.env.Confirm = measure.DenyConfirm
	f.mode = measure.NewMode(measure.KindMultiDistance, f.env)
	f.mode.Activate()

	f.click(ptA)
	f.click(ptB)
	f.move(ptC)
	f.rightClick(ptC)

	f.middleClick(ptB)

	g := f.group(t)
	require.Equal(t, 3, g.Coords.Len(), "denied confirmation must not delete")
}

func TestDeactivateKeepsPendingGroupInPool(t *testing.T) {
	f := newFixture(t, measure.KindMultiDistance)

	f.click(ptA)
	f.click(ptB)
	f.mode.Deactivate()

	g := f.group(t)
	require.Equal(t, measure.StatusPending, g.Status)
	require.Equal(t, 2, g.Coords.Len())
}
