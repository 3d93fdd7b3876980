package measure

import (
	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// Mode is one measurement state machine. Exactly one mode instance is
// active per view at a time; the owning view deactivates the previous mode
// before activating a new one.
type Mode interface {
	Kind() Kind

	// Activate prepares the mode for input. Deactivate discards the
	// coordinate cache without finalizing: an in-progress group stays
	// pending in the pool until resumed or explicitly deleted.
	Activate()
	Deactivate()

	HandleInput(ev backend.InputEvent)

	// UpdateGraphicsOnDrag live-updates only the graphics adjacent to the
	// dragged point while a drag is in flight.
	UpdateGraphicsOnDrag(g *Group, idx int, pos geo.Coordinate)

	// FinalizeDrag recomputes only the affected records after a drag
	// commits.
	FinalizeDrag(g *Group, idx int)
}

// Env carries the collaborators a mode needs. Every field is required.
type Env struct {
	Adapter backend.Adapter
	Store   Store
	Sync    *Synchronizer
	Confirm ConfirmFunc
	Tuning  Tuning
}

// NewMode constructs the state machine for a measurement kind.
func NewMode(kind Kind, env Env) Mode {
	switch kind {
	case KindDistance:
		return newDistanceMode(env)
	case KindMultiDistance:
		return newMultiDistanceMode(env)
	case KindArea:
		return newAreaMode(env)
	case KindCurve:
		return newCurveMode(env)
	case KindPointInfo:
		return newPointInfoMode(env)
	}
	return nil
}

// modeBase carries the shared capture plumbing of the concrete modes.
type modeBase struct {
	env     Env
	kind    Kind
	current *Group
	// hover is the last map point seen under the pointer, used as the
	// final coordinate on right-click finalize.
	hover      geo.Coordinate
	hoverValid bool
}

func newModeBase(kind Kind, env Env) modeBase {
	return modeBase{env: env, kind: kind}
}

func (m *modeBase) Kind() Kind { return m.kind }

// set returns the handle set of the current in-progress group.
func (m *modeBase) set() *HandleSet {
	if m.current == nil {
		return nil
	}
	return m.env.Sync.Registry().Ensure(m.current.ID)
}

// begin creates a fresh pending group, aliases the cache, and upserts it.
func (m *modeBase) begin() *Group {
	g := NewGroup(m.kind, m.env.Adapter.Name())
	g.LabelNumberIndex = m.env.Store.NextLabelNumber()
	m.current = g
	m.env.Store.UpdateOrAddMeasure(g)
	return g
}

// reset drops the current capture reference. The group itself stays in the
// pool untouched.
func (m *modeBase) reset() {
	m.current = nil
	m.hoverValid = false
}

// deactivate discards the in-flight cache reference and the rubber-band
// preview.
func (m *modeBase) deactivate() {
	if m.current != nil {
		m.env.Sync.RemoveMoving(m.env.Sync.Registry().Get(m.current.ID))
	}
	m.reset()
}

func (m *modeBase) trackHover(ev backend.InputEvent) {
	if ev.Kind == backend.MouseMove && ev.Valid {
		m.hover = ev.MapPoint
		m.hoverValid = true
	}
}

// owned reports whether the group was authored on this view. Mirrored
// copies of measurements from other views are read-only here; editing them
// would leave the authoring view's primitives stale.
func (m *modeBase) owned(g *Group) bool {
	return g != nil && g.MapName == m.env.Adapter.Name()
}

// pickedOwnElement returns the measure id of the first picked primitive of
// this mode with the given element kind, or "".
func (m *modeBase) pickedOwnElement(ev backend.InputEvent, element string) string {
	for _, p := range ev.Picked {
		kind, elem, id, ok := ParseTag(p.Tag)
		if ok && kind == m.kind && elem == element {
			return id
		}
	}
	return ""
}

// nearExistingIndex returns the cache index of an already-placed point the
// event lands on, or -1. Pick results win; a geographic epsilon is the
// fallback for backends with no marker hit-testing.
func (m *modeBase) nearExistingIndex(ev backend.InputEvent) int {
	if m.current == nil {
		return -1
	}
	if id := m.pickedOwnElement(ev, ElemPoint); id == m.current.ID {
		for _, p := range ev.Picked {
			if point, ok := p.Handle.(backend.Point); ok && p.Tag == Tag(m.kind, ElemPoint, id) {
				if idx := indexOfCoordinate(m.current.Coords, point.Position()); idx >= 0 {
					return idx
				}
			}
		}
	}
	if !ev.Valid {
		return -1
	}
	for i, p := range m.current.Coords.Points() {
		if geo.Distance(p, ev.MapPoint) < m.env.Tuning.NearPointMeters {
			return i
		}
	}
	return -1
}

// indexOfCoordinate locates a coordinate in a cache by horizontal match.
func indexOfCoordinate(cache *Cache, pos geo.Coordinate) int {
	for i, p := range cache.Points() {
		if p.SamePlace(pos) {
			return i
		}
	}
	return -1
}

// Shared primitive styling. Pending capture graphics are yellow, finalized
// ones cyan, matching the status the next redraw would use.
func statusColor(status Status) backend.Color {
	if status == StatusCompleted {
		return backend.Cyan
	}
	return backend.Yellow
}

func (m *modeBase) markerOpts(g *Group) backend.MarkerOptions { return markerOpts(g) }
func (m *modeBase) lineOpts(g *Group) backend.LineOptions     { return lineOpts(g) }
func (m *modeBase) labelOpts(g *Group) backend.LabelOptions   { return labelOpts(g) }

func markerOpts(g *Group) backend.MarkerOptions {
	return backend.MarkerOptions{
		Tag:       Tag(g.Kind, ElemPoint, g.ID),
		Color:     statusColor(g.Status),
		PixelSize: 8,
	}
}

func lineOpts(g *Group) backend.LineOptions {
	return backend.LineOptions{
		Tag:   Tag(g.Kind, ElemLine, g.ID),
		Color: statusColor(g.Status),
		Width: 2,
	}
}

func labelOpts(g *Group) backend.LabelOptions {
	return backend.LabelOptions{
		Tag:      Tag(g.Kind, ElemLabel, g.ID),
		Color:    backend.White,
		FontSize: 14,
	}
}

func (m *modeBase) movingLineOpts(g *Group) backend.LineOptions {
	return backend.LineOptions{
		Tag:    Tag(g.Kind, ElemMovingLine, g.ID),
		Color:  backend.Yellow,
		Width:  2,
		Dashed: true,
	}
}

func (m *modeBase) movingLabelOpts(g *Group) backend.LabelOptions {
	return backend.LabelOptions{
		Tag:      Tag(g.Kind, ElemMovingLabel, g.ID),
		Color:    backend.Yellow,
		FontSize: 14,
	}
}
