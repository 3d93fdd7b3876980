// Package raylibmap renders a measurement view with raylib. Primitives are
// retained between frames; the host render loop calls Frame once per frame
// to drain scheduled work, poll input, and draw.
package raylibmap

import (
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

const (
	markerPickRadius = 8
	lineThickness    = 2
	labelFontSize    = 14
	labelPadding     = 6
)

// Viewport maps geographic coordinates to screen pixels with a plain
// equirectangular projection around a center point.
type Viewport struct {
	Center          geo.Coordinate
	PixelsPerDegree float64
	Width, Height   int
}

// ToScreen projects a coordinate into screen space.
func (v Viewport) ToScreen(c geo.Coordinate) rl.Vector2 {
	x := (c.Lng-v.Center.Lng)*v.PixelsPerDegree + float64(v.Width)/2
	y := (v.Center.Lat-c.Lat)*v.PixelsPerDegree + float64(v.Height)/2
	return rl.Vector2{X: float32(x), Y: float32(y)}
}

// ToMap unprojects a screen position back to a coordinate.
func (v Viewport) ToMap(p rl.Vector2) geo.Coordinate {
	lng := v.Center.Lng + (float64(p.X)-float64(v.Width)/2)/v.PixelsPerDegree
	lat := v.Center.Lat - (float64(p.Y)-float64(v.Height)/2)/v.PixelsPerDegree
	return geo.Coordinate{Lat: lat, Lng: lng}
}

type marker struct {
	tag   string
	pos   geo.Coordinate
	color backend.Color
	size  float64
	dead  bool
}

func (m *marker) Tag() string                       { return m.tag }
func (m *marker) Alive() bool                       { return !m.dead }
func (m *marker) Position() geo.Coordinate          { return m.pos }
func (m *marker) SetPosition(p geo.Coordinate)      { m.pos = p }
func (m *marker) SetColor(c backend.Color)          { m.color = c }
func (m *marker) SetVisible(bool)                   {}

type line struct {
	tag    string
	points []geo.Coordinate
	color  backend.Color
	width  float64
	dashed bool
	dead   bool
}

func (l *line) Tag() string                       { return l.tag }
func (l *line) Alive() bool                       { return !l.dead }
func (l *line) Positions() []geo.Coordinate       { return l.points }
func (l *line) SetPositions(p []geo.Coordinate)   { l.points = p }
func (l *line) SetColor(c backend.Color)          { l.color = c }
func (l *line) SetVisible(bool)                   {}

type label struct {
	tag     string
	anchors []geo.Coordinate
	value   string
	unit    string
	color   backend.Color
	size    float64
	dead    bool
}

func (l *label) Tag() string                     { return l.tag }
func (l *label) Alive() bool                     { return !l.dead }
func (l *label) Positions() []geo.Coordinate     { return l.anchors }
func (l *label) SetPositions(p []geo.Coordinate) { l.anchors = p }
func (l *label) SetText(value, unit string)      { l.value, l.unit = value, unit }
func (l *label) SetVisible(bool)                 {}

func (l *label) Text() string {
	if l.unit == "" {
		return l.value
	}
	return l.value + " " + l.unit
}

type polygon struct {
	tag     string
	points  []geo.Coordinate
	fill    backend.Color
	outline backend.Color
	dead    bool
}

func (p *polygon) Tag() string                       { return p.tag }
func (p *polygon) Alive() bool                       { return !p.dead }
func (p *polygon) Positions() []geo.Coordinate       { return p.points }
func (p *polygon) SetPositions(pts []geo.Coordinate) { p.points = pts }
func (p *polygon) SetColor(c backend.Color)          { p.outline = c }
func (p *polygon) SetVisible(bool)                   {}

// scheduler queues callbacks for the start of the next frame.
type scheduler struct {
	mu    sync.Mutex
	queue []func()
}

func (s *scheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

func (s *scheduler) drain() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
}

// Map is the raylib backend adapter.
type Map struct {
	name     string
	viewport Viewport

	markers  []*marker
	lines    []*line
	labels   []*label
	polygons []*polygon

	handler    func(backend.InputEvent)
	panEnabled bool
	sched      *scheduler

	lastMouse   rl.Vector2
	leftPressed bool
}

// New creates a raylib map named name. The window must already exist.
func New(name string, viewport Viewport) *Map {
	if viewport.PixelsPerDegree == 0 {
		viewport.PixelsPerDegree = 2000
	}
	return &Map{
		name:       name,
		viewport:   viewport,
		panEnabled: true,
		sched:      &scheduler{},
	}
}

func (m *Map) Name() string { return m.name }

func (m *Map) AddPointMarker(pos geo.Coordinate, opts backend.MarkerOptions) backend.Point {
	size := opts.PixelSize
	if size == 0 {
		size = 6
	}
	mk := &marker{tag: opts.Tag, pos: pos, color: opts.Color, size: size}
	m.markers = append(m.markers, mk)
	return mk
}

func (m *Map) RemovePointMarker(h backend.Point) {
	mk, ok := h.(*marker)
	if !ok || mk == nil {
		return
	}
	mk.dead = true
	m.markers = removeFrom(m.markers, mk)
}

func (m *Map) AddPolyline(points []geo.Coordinate, opts backend.LineOptions) backend.Line {
	width := opts.Width
	if width == 0 {
		width = lineThickness
	}
	l := &line{tag: opts.Tag, points: points, color: opts.Color, width: width, dashed: opts.Dashed}
	m.lines = append(m.lines, l)
	return l
}

func (m *Map) RemovePolyline(h backend.Line) {
	l, ok := h.(*line)
	if !ok || l == nil {
		return
	}
	l.dead = true
	m.lines = removeFrom(m.lines, l)
}

func (m *Map) AddLabel(anchors []geo.Coordinate, value, unit string, opts backend.LabelOptions) backend.Label {
	size := opts.FontSize
	if size == 0 {
		size = labelFontSize
	}
	l := &label{tag: opts.Tag, anchors: anchors, value: value, unit: unit, color: opts.Color, size: size}
	m.labels = append(m.labels, l)
	return l
}

func (m *Map) RemoveLabel(h backend.Label) {
	l, ok := h.(*label)
	if !ok || l == nil {
		return
	}
	l.dead = true
	m.labels = removeFrom(m.labels, l)
}

func (m *Map) AddPolygon(points []geo.Coordinate, opts backend.PolygonOptions) backend.Polygon {
	p := &polygon{tag: opts.Tag, points: points, fill: opts.Fill, outline: opts.Outline}
	m.polygons = append(m.polygons, p)
	return p
}

func (m *Map) RemovePolygon(h backend.Polygon) {
	p, ok := h.(*polygon)
	if !ok || p == nil {
		return
	}
	p.dead = true
	m.polygons = removeFrom(m.polygons, p)
}

func (m *Map) SetPanEnabled(enabled bool) { m.panEnabled = enabled }

func (m *Map) OnInput(handler func(backend.InputEvent)) {
	m.handler = handler
}

func (m *Map) Scheduler() backend.FrameScheduler { return m.sched }

// Frame runs one frame of the adapter inside the host's BeginDrawing block:
// scheduled work first, then input, then drawing.
func (m *Map) Frame() {
	m.sched.drain()
	m.pollInput()
	m.draw()
}

func (m *Map) pollInput() {
	mouse := rl.GetMousePosition()

	if mouse.X != m.lastMouse.X || mouse.Y != m.lastMouse.Y {
		if m.leftPressed && m.panEnabled {
			m.pan(mouse)
		}
		m.emit(backend.MouseMove, mouse)
		m.lastMouse = mouse
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		m.leftPressed = true
		m.emit(backend.LeftDown, mouse)
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		m.leftPressed = false
		m.emit(backend.LeftUp, mouse)
		m.emit(backend.LeftClick, mouse)
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		m.emit(backend.RightClick, mouse)
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonMiddle) {
		m.emit(backend.MiddleClick, mouse)
	}
}

func (m *Map) pan(mouse rl.Vector2) {
	dx := float64(mouse.X-m.lastMouse.X) / m.viewport.PixelsPerDegree
	dy := float64(mouse.Y-m.lastMouse.Y) / m.viewport.PixelsPerDegree
	m.viewport.Center.Lng -= dx
	m.viewport.Center.Lat += dy
}

func (m *Map) emit(kind backend.EventKind, mouse rl.Vector2) {
	ev := backend.InputEvent{
		Kind:        kind,
		MapPoint:    m.viewport.ToMap(mouse),
		Valid:       true,
		ScreenPoint: geo.ScreenPoint{X: float64(mouse.X), Y: float64(mouse.Y)},
		Picked:      m.pickAt(mouse),
	}
	if m.handler != nil {
		m.handler(ev)
	}
}

// pickAt hit-tests markers by pixel distance.
func (m *Map) pickAt(mouse rl.Vector2) []backend.PickedFeature {
	var picked []backend.PickedFeature
	for _, mk := range m.markers {
		p := m.viewport.ToScreen(mk.pos)
		dx := float64(p.X - mouse.X)
		dy := float64(p.Y - mouse.Y)
		if dx*dx+dy*dy <= markerPickRadius*markerPickRadius {
			picked = append(picked, backend.PickedFeature{Tag: mk.tag, Handle: mk})
		}
	}
	return picked
}

func toRaylib(c backend.Color) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

func (m *Map) draw() {
	for _, p := range m.polygons {
		m.drawPolygon(p)
	}
	for _, l := range m.lines {
		m.drawLine(l)
	}
	for _, mk := range m.markers {
		pos := m.viewport.ToScreen(mk.pos)
		rl.DrawCircle(int32(pos.X), int32(pos.Y), float32(mk.size)-1, toRaylib(mk.color))
		rl.DrawCircleLines(int32(pos.X), int32(pos.Y), float32(mk.size), toRaylib(mk.color))
	}
	m.drawLabels()
}

func (m *Map) drawLine(l *line) {
	color := toRaylib(l.color)
	for i := 1; i < len(l.points); i++ {
		p1 := m.viewport.ToScreen(l.points[i-1])
		p2 := m.viewport.ToScreen(l.points[i])
		if l.dashed {
			drawDashedLine(p1, p2, float32(l.width), color)
			continue
		}
		rl.DrawLineEx(p1, p2, float32(l.width), color)
	}
}

func drawDashedLine(p1, p2 rl.Vector2, width float32, color rl.Color) {
	const dash = 8
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	length := float32(rl.Vector2Distance(p1, p2))
	if length == 0 {
		return
	}
	steps := int(length / dash)
	for i := 0; i < steps; i += 2 {
		t1 := float32(i) * dash / length
		t2 := float32(i+1) * dash / length
		if t2 > 1 {
			t2 = 1
		}
		a := rl.Vector2{X: p1.X + dx*t1, Y: p1.Y + dy*t1}
		b := rl.Vector2{X: p1.X + dx*t2, Y: p1.Y + dy*t2}
		rl.DrawLineEx(a, b, width, color)
	}
}

func (m *Map) drawPolygon(p *polygon) {
	if len(p.points) < 3 {
		return
	}
	screen := make([]rl.Vector2, len(p.points))
	for i, pt := range p.points {
		screen[i] = m.viewport.ToScreen(pt)
	}
	center := m.viewport.ToScreen(geo.Centroid(p.points))
	fill := toRaylib(p.fill)
	for i := 0; i < len(screen); i++ {
		next := screen[(i+1)%len(screen)]
		rl.DrawTriangle(center, next, screen[i], fill)
	}
	outline := toRaylib(p.outline)
	for i := 0; i < len(screen); i++ {
		rl.DrawLineEx(screen[i], screen[(i+1)%len(screen)], lineThickness, outline)
	}
}

// labelAnchor resolves where a label sits: at its single anchor, or at the
// midpoint of the first two anchors for segment labels.
func labelAnchor(anchors []geo.Coordinate) geo.Coordinate {
	if len(anchors) >= 2 {
		return geo.Midpoint(anchors[0], anchors[1])
	}
	return anchors[0]
}

// drawLabels renders label boxes, skipping ones that would overlap a box
// already drawn this frame.
func (m *Map) drawLabels() {
	var drawn []rl.Rectangle
	for _, l := range m.labels {
		if len(l.anchors) == 0 {
			continue
		}
		anchor := m.viewport.ToScreen(labelAnchor(l.anchors))
		text := l.value
		if l.unit != "" {
			text += " " + l.unit
		}
		fontSize := int32(l.size)
		textWidth := float32(rl.MeasureText(text, fontSize))
		rect := rl.Rectangle{
			X:      anchor.X - textWidth/2 - labelPadding,
			Y:      anchor.Y - float32(fontSize)/2 - labelPadding,
			Width:  textWidth + 2*labelPadding,
			Height: float32(fontSize) + 2*labelPadding,
		}

		overlaps := false
		for _, r := range drawn {
			if rl.CheckCollisionRecs(rect, r) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		drawn = append(drawn, rect)

		color := toRaylib(l.color)
		rl.DrawRectangleRec(rect, rl.NewColor(20, 20, 20, 200))
		rl.DrawRectangleLinesEx(rect, 1.5, color)
		rl.DrawText(text, int32(anchor.X-textWidth/2), int32(anchor.Y)-fontSize/2, fontSize, color)
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
