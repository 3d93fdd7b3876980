// Package backend defines the contract between the measurement core and a
// map-rendering backend. Each renderer implements Adapter once; the core
// only ever talks to these interfaces and never owns a rendering loop.
package backend

import "geomeasure/pkg/geo"

// Color is a backend-independent RGBA color.
type Color struct {
	R, G, B, A uint8
}

// NewColor creates a color from 8-bit components.
func NewColor(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

var (
	White   = Color{255, 255, 255, 255}
	Yellow  = Color{253, 216, 53, 255}
	Cyan    = Color{100, 200, 255, 255}
	Green   = Color{0, 230, 118, 255}
	Red     = Color{255, 82, 82, 255}
	Magenta = Color{255, 100, 255, 255}
)

// Handle is the common surface of every primitive created by an adapter.
type Handle interface {
	// Tag returns the compound identifier the primitive was created with
	// (for measurement graphics: annotate_<mode>_<kind>_<measureId>).
	Tag() string
	// Alive reports whether the primitive is still owned by the renderer.
	// A removed or otherwise stale handle returns false.
	Alive() bool
}

// Point is a point marker primitive.
type Point interface {
	Handle
	Position() geo.Coordinate
	SetPosition(geo.Coordinate)
	SetColor(Color)
	SetVisible(bool)
}

// Line is a polyline primitive.
type Line interface {
	Handle
	Positions() []geo.Coordinate
	SetPositions([]geo.Coordinate)
	SetColor(Color)
	SetVisible(bool)
}

// Label is a text primitive anchored to one or more coordinates. With two
// anchor positions the renderer places the text at their midpoint.
type Label interface {
	Handle
	Positions() []geo.Coordinate
	SetPositions([]geo.Coordinate)
	SetText(value, unit string)
	Text() string
	SetVisible(bool)
}

// Polygon is a filled polygon primitive.
type Polygon interface {
	Handle
	Positions() []geo.Coordinate
	SetPositions([]geo.Coordinate)
	SetColor(Color)
	SetVisible(bool)
}

// MarkerOptions configures a point marker.
type MarkerOptions struct {
	Tag       string
	Color     Color
	PixelSize float64
}

// LineOptions configures a polyline.
type LineOptions struct {
	Tag    string
	Color  Color
	Width  float64
	Dashed bool
}

// LabelOptions configures a label.
type LabelOptions struct {
	Tag      string
	Color    Color
	FontSize float64
}

// PolygonOptions configures a polygon.
type PolygonOptions struct {
	Tag     string
	Fill    Color
	Outline Color
}

// Adapter is implemented once per renderer. All operations are synchronous
// and return nil on failure rather than panicking; removal of a nil or
// stale handle is a no-op.
type Adapter interface {
	// Name identifies the view for mapName-based self-skip during
	// cross-view synchronization.
	Name() string

	AddPointMarker(pos geo.Coordinate, opts MarkerOptions) Point
	AddPolyline(pos []geo.Coordinate, opts LineOptions) Line
	AddLabel(pos []geo.Coordinate, value, unit string, opts LabelOptions) Label
	AddPolygon(pos []geo.Coordinate, opts PolygonOptions) Polygon

	RemovePointMarker(Point)
	RemovePolyline(Line)
	RemoveLabel(Label)
	RemovePolygon(Polygon)

	// SetPanEnabled toggles camera or map panning; the drag handler
	// disables panning for the duration of a point drag.
	SetPanEnabled(bool)

	// OnInput registers the handler that receives normalized input
	// events. Only one handler is active at a time; registering nil
	// detaches the previous one.
	OnInput(func(InputEvent))

	// Scheduler returns the renderer's animation-frame scheduler, used to
	// slice large initial redraws.
	Scheduler() FrameScheduler
}

// FrameScheduler schedules work onto the renderer's next animation frame.
type FrameScheduler interface {
	Schedule(func())
}
