// Package consolemap is a headless backend that prints every drawing
// operation. It backs the demo command and doubles as a way to trace
// cross-view sync from a terminal.
package consolemap

import (
	"fmt"

	"github.com/fatih/color"

	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

var (
	addColor    = color.New(color.FgGreen)
	updateColor = color.New(color.FgYellow)
	removeColor = color.New(color.FgRed)
)

// Map is the console backend adapter. Input is injected through Click,
// RightClick, MiddleClick and MoveTo.
type Map struct {
	name       string
	ppd        float64
	markers    []*marker
	lines      []*line
	labels     []*label
	polygons   []*polygon
	handler    func(backend.InputEvent)
	panEnabled bool
	sched      *scheduler
	quiet      bool
}

// New creates a console map named name.
func New(name string) *Map {
	return &Map{name: name, ppd: 2000, panEnabled: true, sched: &scheduler{}}
}

// SetQuiet suppresses operation logging.
func (m *Map) SetQuiet(quiet bool) { m.quiet = quiet }

func (m *Map) logf(c *color.Color, format string, args ...any) {
	if m.quiet {
		return
	}
	c.Printf("[%s] ", m.name)
	fmt.Printf(format+"\n", args...)
}

type marker struct {
	owner *Map
	tag   string
	pos   geo.Coordinate
	dead  bool
}

func (mk *marker) Tag() string              { return mk.tag }
func (mk *marker) Alive() bool              { return !mk.dead }
func (mk *marker) Position() geo.Coordinate { return mk.pos }

func (mk *marker) SetPosition(p geo.Coordinate) {
	mk.pos = p
	mk.owner.logf(updateColor, "marker %s -> %s", mk.tag, geo.FormatCoordinate(p))
}

func (mk *marker) SetColor(backend.Color) {}
func (mk *marker) SetVisible(bool)        {}

type line struct {
	owner  *Map
	tag    string
	points []geo.Coordinate
	dead   bool
}

func (l *line) Tag() string                 { return l.tag }
func (l *line) Alive() bool                 { return !l.dead }
func (l *line) Positions() []geo.Coordinate { return l.points }

func (l *line) SetPositions(points []geo.Coordinate) {
	l.points = points
	l.owner.logf(updateColor, "line %s -> %d points", l.tag, len(points))
}

func (l *line) SetColor(backend.Color) {}
func (l *line) SetVisible(bool)        {}

type label struct {
	owner   *Map
	tag     string
	anchors []geo.Coordinate
	value   string
	unit    string
	dead    bool
}

func (l *label) Tag() string                 { return l.tag }
func (l *label) Alive() bool                 { return !l.dead }
func (l *label) Positions() []geo.Coordinate { return l.anchors }

func (l *label) SetPositions(anchors []geo.Coordinate) { l.anchors = anchors }

func (l *label) SetText(value, unit string) {
	l.value, l.unit = value, unit
	l.owner.logf(updateColor, "label %s -> %s", l.tag, l.Text())
}

func (l *label) Text() string {
	if l.unit == "" {
		return l.value
	}
	return l.value + " " + l.unit
}

func (l *label) SetVisible(bool) {}

type polygon struct {
	owner  *Map
	tag    string
	points []geo.Coordinate
	dead   bool
}

func (p *polygon) Tag() string                 { return p.tag }
func (p *polygon) Alive() bool                 { return !p.dead }
func (p *polygon) Positions() []geo.Coordinate { return p.points }

func (p *polygon) SetPositions(points []geo.Coordinate) {
	p.points = points
	p.owner.logf(updateColor, "polygon %s -> %d points", p.tag, len(points))
}

func (p *polygon) SetColor(backend.Color) {}
func (p *polygon) SetVisible(bool)        {}

func (m *Map) Name() string { return m.name }

func (m *Map) AddPointMarker(pos geo.Coordinate, opts backend.MarkerOptions) backend.Point {
	mk := &marker{owner: m, tag: opts.Tag, pos: pos}
	m.markers = append(m.markers, mk)
	m.logf(addColor, "add marker %s at %s", opts.Tag, geo.FormatCoordinate(pos))
	return mk
}

func (m *Map) RemovePointMarker(h backend.Point) {
	mk, ok := h.(*marker)
	if !ok || mk == nil {
		return
	}
	mk.dead = true
	m.markers = removeFrom(m.markers, mk)
	m.logf(removeColor, "remove marker %s", mk.tag)
}

func (m *Map) AddPolyline(points []geo.Coordinate, opts backend.LineOptions) backend.Line {
	l := &line{owner: m, tag: opts.Tag, points: points}
	m.lines = append(m.lines, l)
	m.logf(addColor, "add line %s with %d points", opts.Tag, len(points))
	return l
}

func (m *Map) RemovePolyline(h backend.Line) {
	l, ok := h.(*line)
	if !ok || l == nil {
		return
	}
	l.dead = true
	m.lines = removeFrom(m.lines, l)
	m.logf(removeColor, "remove line %s", l.tag)
}

func (m *Map) AddLabel(anchors []geo.Coordinate, value, unit string, opts backend.LabelOptions) backend.Label {
	l := &label{owner: m, tag: opts.Tag, anchors: anchors, value: value, unit: unit}
	m.labels = append(m.labels, l)
	m.logf(addColor, "add label %s: %s", opts.Tag, l.Text())
	return l
}

func (m *Map) RemoveLabel(h backend.Label) {
	l, ok := h.(*label)
	if !ok || l == nil {
		return
	}
	l.dead = true
	m.labels = removeFrom(m.labels, l)
	m.logf(removeColor, "remove label %s", l.tag)
}

func (m *Map) AddPolygon(points []geo.Coordinate, opts backend.PolygonOptions) backend.Polygon {
	p := &polygon{owner: m, tag: opts.Tag, points: points}
	m.polygons = append(m.polygons, p)
	m.logf(addColor, "add polygon %s with %d points", opts.Tag, len(points))
	return p
}

func (m *Map) RemovePolygon(h backend.Polygon) {
	p, ok := h.(*polygon)
	if !ok || p == nil {
		return
	}
	p.dead = true
	m.polygons = removeFrom(m.polygons, p)
	m.logf(removeColor, "remove polygon %s", p.tag)
}

func (m *Map) SetPanEnabled(enabled bool) { m.panEnabled = enabled }

func (m *Map) OnInput(handler func(backend.InputEvent)) { m.handler = handler }

// scheduler runs scheduled work immediately; a console has no frames.
type scheduler struct{}

func (*scheduler) Schedule(fn func()) { fn() }

func (m *Map) Scheduler() backend.FrameScheduler { return m.sched }

// Click injects a left click at the given coordinate.
func (m *Map) Click(c geo.Coordinate) { m.fire(backend.LeftClick, c) }

// RightClick injects a right click at the given coordinate.
func (m *Map) RightClick(c geo.Coordinate) { m.fire(backend.RightClick, c) }

// MiddleClick injects a middle click at the given coordinate.
func (m *Map) MiddleClick(c geo.Coordinate) { m.fire(backend.MiddleClick, c) }

// MoveTo injects a pointer move to the given coordinate.
func (m *Map) MoveTo(c geo.Coordinate) { m.fire(backend.MouseMove, c) }

func (m *Map) fire(kind backend.EventKind, c geo.Coordinate) {
	if m.handler == nil {
		return
	}
	m.handler(backend.InputEvent{
		Kind:        kind,
		MapPoint:    c,
		Valid:       true,
		ScreenPoint: geo.ScreenPoint{X: c.Lng * m.ppd, Y: -c.Lat * m.ppd},
		Picked:      m.pickNear(c),
	})
}

// pickNear hit-tests markers geographically; the console has no real
// screen, so a few meters stand in for pixel distance.
func (m *Map) pickNear(c geo.Coordinate) []backend.PickedFeature {
	var picked []backend.PickedFeature
	for _, mk := range m.markers {
		if geo.Distance(mk.pos, c) < 1.0 {
			picked = append(picked, backend.PickedFeature{Tag: mk.tag, Handle: mk})
		}
	}
	return picked
}

func removeFrom[T comparable](slice []T, item T) []T {
	for i, v := range slice {
		if v == item {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
