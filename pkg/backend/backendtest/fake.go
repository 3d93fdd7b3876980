// Package backendtest provides an in-memory backend adapter for tests and
// headless tooling. It records every primitive operation and lets tests
// drive normalized input events by hand.
package backendtest

import (
	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// FakePoint is an in-memory point marker.
type FakePoint struct {
	tag     string
	alive   bool
	pos     geo.Coordinate
	Color   backend.Color
	Visible bool
}

func (p *FakePoint) Tag() string                    { return p.tag }
func (p *FakePoint) Alive() bool                    { return p.alive }
func (p *FakePoint) Position() geo.Coordinate       { return p.pos }
func (p *FakePoint) SetPosition(pos geo.Coordinate) { p.pos = pos }
func (p *FakePoint) SetColor(c backend.Color)       { p.Color = c }
func (p *FakePoint) SetVisible(v bool)              { p.Visible = v }

// FakeLine is an in-memory polyline.
type FakeLine struct {
	tag     string
	alive   bool
	pos     []geo.Coordinate
	Color   backend.Color
	Visible bool
	// SetPositionsCalls counts in-place geometry updates, so tests can
	// verify the create-or-update protocol mutates instead of
	// reallocating.
	SetPositionsCalls int
}

func (l *FakeLine) Tag() string                { return l.tag }
func (l *FakeLine) Alive() bool                { return l.alive }
func (l *FakeLine) Positions() []geo.Coordinate { return l.pos }
func (l *FakeLine) SetPositions(pos []geo.Coordinate) {
	l.pos = append([]geo.Coordinate(nil), pos...)
	l.SetPositionsCalls++
}
func (l *FakeLine) SetColor(c backend.Color) { l.Color = c }
func (l *FakeLine) SetVisible(v bool)        { l.Visible = v }

// FakeLabel is an in-memory label.
type FakeLabel struct {
	tag     string
	alive   bool
	pos     []geo.Coordinate
	Value   string
	Unit    string
	Visible bool
}

func (l *FakeLabel) Tag() string                 { return l.tag }
func (l *FakeLabel) Alive() bool                 { return l.alive }
func (l *FakeLabel) Positions() []geo.Coordinate { return l.pos }
func (l *FakeLabel) SetPositions(pos []geo.Coordinate) {
	l.pos = append([]geo.Coordinate(nil), pos...)
}
func (l *FakeLabel) SetText(value, unit string) { l.Value, l.Unit = value, unit }
func (l *FakeLabel) Text() string {
	if l.Unit == "" {
		return l.Value
	}
	return l.Value + " " + l.Unit
}
func (l *FakeLabel) SetVisible(v bool) { l.Visible = v }

// FakePolygon is an in-memory polygon.
type FakePolygon struct {
	tag     string
	alive   bool
	pos     []geo.Coordinate
	Color   backend.Color
	Visible bool
}

func (p *FakePolygon) Tag() string                 { return p.tag }
func (p *FakePolygon) Alive() bool                 { return p.alive }
func (p *FakePolygon) Positions() []geo.Coordinate { return p.pos }
func (p *FakePolygon) SetPositions(pos []geo.Coordinate) {
	p.pos = append([]geo.Coordinate(nil), pos...)
}
func (p *FakePolygon) SetColor(c backend.Color) { p.Color = c }
func (p *FakePolygon) SetVisible(v bool)        { p.Visible = v }

// ManualScheduler queues frame callbacks until Drain is called, so tests
// can observe batched redraws frame by frame.
type ManualScheduler struct {
	queue []func()
}

func (s *ManualScheduler) Schedule(fn func()) { s.queue = append(s.queue, fn) }

// Pending returns the number of queued frames.
func (s *ManualScheduler) Pending() int { return len(s.queue) }

// DrainOne runs the next queued frame. It returns false when the queue is
// empty.
func (s *ManualScheduler) DrainOne() bool {
	if len(s.queue) == 0 {
		return false
	}
	fn := s.queue[0]
	s.queue = s.queue[1:]
	fn()
	return true
}

// Drain runs queued frames until none remain, including frames scheduled
// while draining.
func (s *ManualScheduler) Drain() {
	for s.DrainOne() {
	}
}

// Fake is an in-memory backend.Adapter.
type Fake struct {
	name      string
	handler   func(backend.InputEvent)
	scheduler *ManualScheduler

	Points   []*FakePoint
	Lines    []*FakeLine
	Labels   []*FakeLabel
	Polygons []*FakePolygon

	// FailNext makes the next N primitive creations return nil, for
	// exercising the degrade-gracefully paths.
	FailNext int

	PanEnabled bool
}

// New creates a fake adapter with the given view name.
func New(name string) *Fake {
	return &Fake{name: name, scheduler: &ManualScheduler{}, PanEnabled: true}
}

func (f *Fake) Name() string { return f.name }

func (f *Fake) failing() bool {
	if f.FailNext > 0 {
		f.FailNext--
		return true
	}
	return false
}

func (f *Fake) AddPointMarker(pos geo.Coordinate, opts backend.MarkerOptions) backend.Point {
	if f.failing() {
		return nil
	}
	p := &FakePoint{tag: opts.Tag, alive: true, pos: pos, Color: opts.Color, Visible: true}
	f.Points = append(f.Points, p)
	return p
}

func (f *Fake) AddPolyline(pos []geo.Coordinate, opts backend.LineOptions) backend.Line {
	if f.failing() {
		return nil
	}
	l := &FakeLine{tag: opts.Tag, alive: true, Color: opts.Color, Visible: true}
	l.pos = append([]geo.Coordinate(nil), pos...)
	f.Lines = append(f.Lines, l)
	return l
}

func (f *Fake) AddLabel(pos []geo.Coordinate, value, unit string, opts backend.LabelOptions) backend.Label {
	if f.failing() {
		return nil
	}
	l := &FakeLabel{tag: opts.Tag, alive: true, Value: value, Unit: unit, Visible: true}
	l.pos = append([]geo.Coordinate(nil), pos...)
	f.Labels = append(f.Labels, l)
	return l
}

func (f *Fake) AddPolygon(pos []geo.Coordinate, opts backend.PolygonOptions) backend.Polygon {
	if f.failing() {
		return nil
	}
	p := &FakePolygon{tag: opts.Tag, alive: true, Color: opts.Fill, Visible: true}
	p.pos = append([]geo.Coordinate(nil), pos...)
	f.Polygons = append(f.Polygons, p)
	return p
}

func (f *Fake) RemovePointMarker(p backend.Point) {
	fp, ok := p.(*FakePoint)
	if !ok || fp == nil {
		return
	}
	fp.alive = false
	f.Points = removeFrom(f.Points, fp)
}

func (f *Fake) RemovePolyline(l backend.Line) {
	fl, ok := l.(*FakeLine)
	if !ok || fl == nil {
		return
	}
	fl.alive = false
	f.Lines = removeFrom(f.Lines, fl)
}

func (f *Fake) RemoveLabel(l backend.Label) {
	fl, ok := l.(*FakeLabel)
	if !ok || fl == nil {
		return
	}
	fl.alive = false
	f.Labels = removeFrom(f.Labels, fl)
}

func (f *Fake) RemovePolygon(p backend.Polygon) {
	fp, ok := p.(*FakePolygon)
	if !ok || fp == nil {
		return
	}
	fp.alive = false
	f.Polygons = removeFrom(f.Polygons, fp)
}

func removeFrom[T comparable](list []T, item T) []T {
	for i, v := range list {
		if v == item {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (f *Fake) SetPanEnabled(enabled bool) { f.PanEnabled = enabled }

func (f *Fake) OnInput(handler func(backend.InputEvent)) { f.handler = handler }

func (f *Fake) Scheduler() backend.FrameScheduler { return f.scheduler }

// Frames returns the manual frame scheduler for test control.
func (f *Fake) Frames() *ManualScheduler { return f.scheduler }

// Fire delivers a normalized input event to the registered handler.
func (f *Fake) Fire(ev backend.InputEvent) {
	if f.handler != nil {
		f.handler(ev)
	}
}

// PickAt returns the picked features whose primitives sit within radius
// pixels of the given screen point, using positions projected by proj.
// Tests usually bypass this and construct Picked lists directly.
func (f *Fake) PickAt(at geo.ScreenPoint, radius float64, proj func(geo.Coordinate) geo.ScreenPoint) []backend.PickedFeature {
	var picked []backend.PickedFeature
	for _, p := range f.Points {
		if proj(p.Position()).Distance(at) <= radius {
			picked = append(picked, backend.PickedFeature{Tag: p.Tag(), Handle: p})
		}
	}
	return picked
}

// FindTag returns the first primitive handle carrying the given tag.
func (f *Fake) FindTag(tag string) backend.Handle {
	for _, p := range f.Points {
		if p.tag == tag {
			return p
		}
	}
	for _, l := range f.Lines {
		if l.tag == tag {
			return l
		}
	}
	for _, l := range f.Labels {
		if l.tag == tag {
			return l
		}
	}
	for _, p := range f.Polygons {
		if p.tag == tag {
			return p
		}
	}
	return nil
}
