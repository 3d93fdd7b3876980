package raylibmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geomeasure/pkg/geo"
)

var (
	munich = geo.Coordinate{Lat: 48.1374, Lng: 11.5755}
	ptB    = geo.Coordinate{Lat: 48.1390, Lng: 11.5801}
)

func testViewport() Viewport {
	return Viewport{Center: munich, PixelsPerDegree: 2000, Width: 800, Height: 600}
}

func TestViewportCenterProjectsToMiddle(t *testing.T) {
	v := testViewport()
	p := v.ToScreen(munich)
	require.InDelta(t, 400, p.X, 0.01)
	require.InDelta(t, 300, p.Y, 0.01)
}

func TestViewportRoundTrip(t *testing.T) {
	v := testViewport()
	back := v.ToMap(v.ToScreen(ptB))
	require.InDelta(t, ptB.Lat, back.Lat, 1e-4)
	require.InDelta(t, ptB.Lng, back.Lng, 1e-4)
}

func TestViewportNorthIsUp(t *testing.T) {
	v := testViewport()
	north := v.ToScreen(geo.Coordinate{Lat: munich.Lat + 0.01, Lng: munich.Lng})
	require.Less(t, north.Y, float32(300), "higher latitude maps to a smaller Y")
}

func TestLabelAnchorSinglePoint(t *testing.T) {
	got := labelAnchor([]geo.Coordinate{munich})
	require.True(t, got.SamePlace(munich))
}

func TestLabelAnchorSegmentMidpoint(t *testing.T) {
	got := labelAnchor([]geo.Coordinate{munich, ptB})
	want := geo.Midpoint(munich, ptB)
	require.True(t, got.SamePlace(want), "a two-anchor label sits at the segment midpoint")

	v := testViewport()
	at := v.ToScreen(got)
	a := v.ToScreen(munich)
	b := v.ToScreen(ptB)
	require.InDelta(t, float64(a.X+b.X)/2, float64(at.X), 0.5)
	require.InDelta(t, float64(a.Y+b.Y)/2, float64(at.Y), 0.5)
}
