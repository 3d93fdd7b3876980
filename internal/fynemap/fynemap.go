// Package fynemap renders a measurement view as a fyne widget. Primitives
// are retained canvas objects inside a layout-free container; geographic
// positions map to widget pixels with an equirectangular projection.
package fynemap

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

const markerPickRadius = 8

func toNRGBA(c backend.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Map is the fyne backend adapter. It implements fyne.Widget plus the
// desktop mouse interfaces, so dropping it into a container is enough to
// receive input.
type Map struct {
	widget.BaseWidget

	name    string
	center  geo.Coordinate
	ppd     float64
	content *fyne.Container

	markers  []*marker
	lines    []*line
	labels   []*label
	polygons []*polygon

	handler    func(backend.InputEvent)
	panEnabled bool
	lastDrag   fyne.Position
	dragging   bool
}

// New creates a fyne map named name centered on center.
func New(name string, center geo.Coordinate, pixelsPerDegree float64) *Map {
	if pixelsPerDegree == 0 {
		pixelsPerDegree = 2000
	}
	m := &Map{
		name:       name,
		center:     center,
		ppd:        pixelsPerDegree,
		content:    container.NewWithoutLayout(),
		panEnabled: true,
	}
	m.ExtendBaseWidget(m)
	return m
}

func (m *Map) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.content)
}

func (m *Map) Name() string { return m.name }

func (m *Map) toScreen(c geo.Coordinate) fyne.Position {
	size := m.Size()
	x := (c.Lng-m.center.Lng)*m.ppd + float64(size.Width)/2
	y := (m.center.Lat-c.Lat)*m.ppd + float64(size.Height)/2
	return fyne.NewPos(float32(x), float32(y))
}

func (m *Map) toMap(p fyne.Position) geo.Coordinate {
	size := m.Size()
	lng := m.center.Lng + (float64(p.X)-float64(size.Width)/2)/m.ppd
	lat := m.center.Lat - (float64(p.Y)-float64(size.Height)/2)/m.ppd
	return geo.Coordinate{Lat: lat, Lng: lng}
}

type marker struct {
	owner  *Map
	tag    string
	pos    geo.Coordinate
	circle *canvas.Circle
	size   float32
	dead   bool
}

func (mk *marker) Tag() string              { return mk.tag }
func (mk *marker) Alive() bool              { return !mk.dead }
func (mk *marker) Position() geo.Coordinate { return mk.pos }

func (mk *marker) SetPosition(p geo.Coordinate) {
	mk.pos = p
	mk.owner.placeMarker(mk)
}

func (mk *marker) SetColor(c backend.Color) {
	mk.circle.FillColor = toNRGBA(c)
	mk.circle.Refresh()
}

func (mk *marker) SetVisible(v bool) {
	if v {
		mk.circle.Show()
	} else {
		mk.circle.Hide()
	}
}

func (m *Map) placeMarker(mk *marker) {
	p := m.toScreen(mk.pos)
	mk.circle.Move(fyne.NewPos(p.X-mk.size, p.Y-mk.size))
	mk.circle.Resize(fyne.NewSize(2*mk.size, 2*mk.size))
	mk.circle.Refresh()
}

func (m *Map) AddPointMarker(pos geo.Coordinate, opts backend.MarkerOptions) backend.Point {
	size := float32(opts.PixelSize)
	if size == 0 {
		size = 6
	}
	circle := canvas.NewCircle(toNRGBA(opts.Color))
	mk := &marker{owner: m, tag: opts.Tag, pos: pos, circle: circle, size: size / 2}
	m.markers = append(m.markers, mk)
	m.content.Add(circle)
	m.placeMarker(mk)
	return mk
}

func (m *Map) RemovePointMarker(h backend.Point) {
	mk, ok := h.(*marker)
	if !ok || mk == nil {
		return
	}
	mk.dead = true
	m.content.Remove(mk.circle)
	m.markers = removeFrom(m.markers, mk)
}

type line struct {
	owner    *Map
	tag      string
	points   []geo.Coordinate
	segments []*canvas.Line
	color    backend.Color
	width    float32
	dead     bool
}

func (l *line) Tag() string                 { return l.tag }
func (l *line) Alive() bool                 { return !l.dead }
func (l *line) Positions() []geo.Coordinate { return l.points }

func (l *line) SetPositions(points []geo.Coordinate) {
	l.points = points
	l.owner.rebuildLine(l)
}

func (l *line) SetColor(c backend.Color) {
	l.color = c
	for _, seg := range l.segments {
		seg.StrokeColor = toNRGBA(c)
		seg.Refresh()
	}
}

func (l *line) SetVisible(v bool) {
	for _, seg := range l.segments {
		if v {
			seg.Show()
		} else {
			seg.Hide()
		}
	}
}

// rebuildLine resizes the segment object list to the point count and
// repositions every segment.
func (m *Map) rebuildLine(l *line) {
	want := len(l.points) - 1
	if want < 0 {
		want = 0
	}
	for len(l.segments) > want {
		last := l.segments[len(l.segments)-1]
		m.content.Remove(last)
		l.segments = l.segments[:len(l.segments)-1]
	}
	for len(l.segments) < want {
		seg := canvas.NewLine(toNRGBA(l.color))
		seg.StrokeWidth = l.width
		l.segments = append(l.segments, seg)
		m.content.Add(seg)
	}
	for i, seg := range l.segments {
		seg.Position1 = m.toScreen(l.points[i])
		seg.Position2 = m.toScreen(l.points[i+1])
		seg.Refresh()
	}
}

func (m *Map) AddPolyline(points []geo.Coordinate, opts backend.LineOptions) backend.Line {
	width := float32(opts.Width)
	if width == 0 {
		width = 2
	}
	l := &line{owner: m, tag: opts.Tag, color: opts.Color, width: width}
	m.lines = append(m.lines, l)
	l.SetPositions(points)
	return l
}

func (m *Map) RemovePolyline(h backend.Line) {
	l, ok := h.(*line)
	if !ok || l == nil {
		return
	}
	l.dead = true
	for _, seg := range l.segments {
		m.content.Remove(seg)
	}
	m.lines = removeFrom(m.lines, l)
}

type label struct {
	owner   *Map
	tag     string
	anchors []geo.Coordinate
	value   string
	unit    string
	text    *canvas.Text
	dead    bool
}

func (l *label) Tag() string                 { return l.tag }
func (l *label) Alive() bool                 { return !l.dead }
func (l *label) Positions() []geo.Coordinate { return l.anchors }

func (l *label) SetPositions(anchors []geo.Coordinate) {
	l.anchors = anchors
	l.owner.placeLabel(l)
}

func (l *label) SetText(value, unit string) {
	l.value, l.unit = value, unit
	l.text.Text = l.Text()
	l.text.Refresh()
}

func (l *label) Text() string {
	if l.unit == "" {
		return l.value
	}
	return l.value + " " + l.unit
}

func (l *label) SetVisible(v bool) {
	if v {
		l.text.Show()
	} else {
		l.text.Hide()
	}
}

// placeLabel anchors the text at the single anchor, or the midpoint of the
// first two anchors.
func (m *Map) placeLabel(l *label) {
	if len(l.anchors) == 0 {
		return
	}
	anchor := l.anchors[0]
	if len(l.anchors) >= 2 {
		anchor = geo.Midpoint(l.anchors[0], l.anchors[1])
	}
	p := m.toScreen(anchor)
	size := l.text.MinSize()
	l.text.Move(fyne.NewPos(p.X-size.Width/2, p.Y-size.Height-6))
	l.text.Refresh()
}

func (m *Map) AddLabel(anchors []geo.Coordinate, value, unit string, opts backend.LabelOptions) backend.Label {
	l := &label{owner: m, tag: opts.Tag, anchors: anchors, value: value, unit: unit}
	l.text = canvas.NewText(l.Text(), toNRGBA(opts.Color))
	if opts.FontSize != 0 {
		l.text.TextSize = float32(opts.FontSize)
	}
	m.labels = append(m.labels, l)
	m.content.Add(l.text)
	m.placeLabel(l)
	return l
}

func (m *Map) RemoveLabel(h backend.Label) {
	l, ok := h.(*label)
	if !ok || l == nil {
		return
	}
	l.dead = true
	m.content.Remove(l.text)
	m.labels = removeFrom(m.labels, l)
}

// polygon draws its outline as line segments. Fyne has no filled-polygon
// canvas object, so the fill color only tints the outline.
type polygon struct {
	owner   *Map
	tag     string
	points  []geo.Coordinate
	edges   []*canvas.Line
	outline backend.Color
	dead    bool
}

func (p *polygon) Tag() string                 { return p.tag }
func (p *polygon) Alive() bool                 { return !p.dead }
func (p *polygon) Positions() []geo.Coordinate { return p.points }

func (p *polygon) SetPositions(points []geo.Coordinate) {
	p.points = points
	p.owner.rebuildPolygon(p)
}

func (p *polygon) SetColor(c backend.Color) {
	p.outline = c
	for _, e := range p.edges {
		e.StrokeColor = toNRGBA(c)
		e.Refresh()
	}
}

func (p *polygon) SetVisible(v bool) {
	for _, e := range p.edges {
		if v {
			e.Show()
		} else {
			e.Hide()
		}
	}
}

func (m *Map) rebuildPolygon(p *polygon) {
	want := len(p.points)
	if want < 3 {
		want = 0
	}
	for len(p.edges) > want {
		last := p.edges[len(p.edges)-1]
		m.content.Remove(last)
		p.edges = p.edges[:len(p.edges)-1]
	}
	for len(p.edges) < want {
		e := canvas.NewLine(toNRGBA(p.outline))
		e.StrokeWidth = 2
		p.edges = append(p.edges, e)
		m.content.Add(e)
	}
	for i, e := range p.edges {
		e.Position1 = m.toScreen(p.points[i])
		e.Position2 = m.toScreen(p.points[(i+1)%len(p.points)])
		e.Refresh()
	}
}

func (m *Map) AddPolygon(points []geo.Coordinate, opts backend.PolygonOptions) backend.Polygon {
	p := &polygon{owner: m, tag: opts.Tag, outline: opts.Outline}
	m.polygons = append(m.polygons, p)
	p.SetPositions(points)
	return p
}

func (m *Map) RemovePolygon(h backend.Polygon) {
	p, ok := h.(*polygon)
	if !ok || p == nil {
		return
	}
	p.dead = true
	for _, e := range p.edges {
		m.content.Remove(e)
	}
	m.polygons = removeFrom(m.polygons, p)
}

func (m *Map) SetPanEnabled(enabled bool) { m.panEnabled = enabled }

func (m *Map) OnInput(handler func(backend.InputEvent)) { m.handler = handler }

type fyneScheduler struct{}

func (fyneScheduler) Schedule(fn func()) { fyne.Do(fn) }

func (m *Map) Scheduler() backend.FrameScheduler { return fyneScheduler{} }

func (m *Map) emit(kind backend.EventKind, pos fyne.Position) {
	if m.handler == nil {
		return
	}
	m.handler(backend.InputEvent{
		Kind:        kind,
		MapPoint:    m.toMap(pos),
		Valid:       true,
		ScreenPoint: geo.ScreenPoint{X: float64(pos.X), Y: float64(pos.Y)},
		Picked:      m.pickAt(pos),
	})
}

func (m *Map) pickAt(pos fyne.Position) []backend.PickedFeature {
	var picked []backend.PickedFeature
	for _, mk := range m.markers {
		p := m.toScreen(mk.pos)
		dx := float64(p.X - pos.X)
		dy := float64(p.Y - pos.Y)
		if dx*dx+dy*dy <= markerPickRadius*markerPickRadius {
			picked = append(picked, backend.PickedFeature{Tag: mk.tag, Handle: mk})
		}
	}
	return picked
}

// Tapped maps primary taps to left clicks.
func (m *Map) Tapped(ev *fyne.PointEvent) { m.emit(backend.LeftClick, ev.Position) }

// TappedSecondary maps secondary taps to right clicks.
func (m *Map) TappedSecondary(ev *fyne.PointEvent) { m.emit(backend.RightClick, ev.Position) }

// DoubleTapped maps double taps to double clicks.
func (m *Map) DoubleTapped(ev *fyne.PointEvent) { m.emit(backend.DoubleClick, ev.Position) }

// MouseDown starts drag tracking and forwards the press.
func (m *Map) MouseDown(ev *desktop.MouseEvent) {
	switch ev.Button {
	case desktop.MouseButtonPrimary:
		m.dragging = true
		m.lastDrag = ev.Position
		m.emit(backend.LeftDown, ev.Position)
	case desktop.MouseButtonTertiary:
		m.emit(backend.MiddleClick, ev.Position)
	}
}

// MouseUp ends drag tracking and forwards the release.
func (m *Map) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		m.dragging = false
		m.emit(backend.LeftUp, ev.Position)
	}
}

// MouseIn implements desktop.Hoverable.
func (m *Map) MouseIn(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (m *Map) MouseOut() {}

// MouseMoved forwards hover moves, panning when a primary drag is in
// flight and panning is enabled.
func (m *Map) MouseMoved(ev *desktop.MouseEvent) {
	if m.dragging && m.panEnabled {
		m.center.Lng -= (float64(ev.Position.X) - float64(m.lastDrag.X)) / m.ppd
		m.center.Lat += (float64(ev.Position.Y) - float64(m.lastDrag.Y)) / m.ppd
		m.lastDrag = ev.Position
		m.reproject()
	}
	m.emit(backend.MouseMove, ev.Position)
}

// reproject repositions every retained primitive after a pan.
func (m *Map) reproject() {
	for _, mk := range m.markers {
		m.placeMarker(mk)
	}
	for _, l := range m.lines {
		m.rebuildLine(l)
	}
	for _, l := range m.labels {
		m.placeLabel(l)
	}
	for _, p := range m.polygons {
		m.rebuildPolygon(p)
	}
}

func removeFrom[T comparable](slice []T, item T) []T {
	for i, v := range slice {
		if v == item {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
