package measure

import (
	"fmt"

	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// areaMode captures a polygon. The polygon and its area label appear once
// three points exist; clicking the first point or right-clicking closes the
// perimeter.
type areaMode struct {
	modeBase
	capturing bool
}

func newAreaMode(env Env) *areaMode {
	return &areaMode{modeBase: newModeBase(KindArea, env)}
}

func (m *areaMode) Activate() {}

func (m *areaMode) Deactivate() {
	m.capturing = false
	m.deactivate()
}

func (m *areaMode) HandleInput(ev backend.InputEvent) {
	m.trackHover(ev)

	switch ev.Kind {
	case backend.MouseMove:
		if m.capturing {
			m.preview(ev)
		}
	case backend.LeftClick:
		m.handleLeftClick(ev)
	case backend.RightClick:
		if m.capturing {
			m.finalizeFromHover()
		}
	case backend.MiddleClick:
		m.handleDeletePoint(ev)
	}
}

func (m *areaMode) handleLeftClick(ev backend.InputEvent) {
	if m.capturing {
		if idx := m.nearExistingIndex(ev); idx >= 0 {
			if idx == 0 && m.current.Coords.Len() >= 3 {
				m.finalize()
			}
			return
		}
		if ev.Valid {
			m.appendPoint(ev.MapPoint)
		}
		return
	}

	if id := m.pickedOwnElement(ev, ElemPoint); id != "" {
		m.tryResume(id)
		return
	}
	if ev.Valid {
		g := m.begin()
		g.Coords.Append(ev.MapPoint)
		m.capturing = true
		m.env.Sync.CreateOrUpdateMarker(m.set(), 0, ev.MapPoint, m.markerOpts(g))
		m.env.Store.UpdateOrAddMeasure(g)
	}
}

func (m *areaMode) tryResume(id string) {
	g := m.env.Store.GetMeasureByID(id)
	if !m.owned(g) {
		return
	}
	if !m.env.Confirm("Resume this measurement?") {
		return
	}
	m.current = g
	m.capturing = true
	g.Status = StatusPending
	recolor(m.env.Sync.Registry().Ensure(g.ID), statusColor(g.Status))
	m.env.Store.UpdateOrAddMeasure(g)
}

func (m *areaMode) appendPoint(p geo.Coordinate) {
	g := m.current
	set := m.set()
	m.env.Sync.RemoveMoving(set)

	g.Coords.Append(p)
	m.env.Sync.CreateOrUpdateMarker(set, g.Coords.Len()-1, p, m.markerOpts(g))
	m.refreshPolygon(g, set)
	m.env.Store.UpdateOrAddMeasure(g)
}

// refreshPolygon redraws the polygon and area label, or removes them while
// fewer than three points exist.
func (m *areaMode) refreshPolygon(g *Group, set *HandleSet) {
	points := g.Coords.Points()
	if len(points) < 3 {
		if set.Polygon != nil {
			m.env.Adapter.RemovePolygon(set.Polygon)
			set.Polygon = nil
		}
		if len(set.Labels) > 0 {
			m.env.Sync.RemoveLabelAt(set, 0)
		}
		g.Records.Area = 0
		return
	}

	fill := statusColor(g.Status)
	fill.A = 90
	m.env.Sync.CreateOrUpdatePolygon(set, points, backend.PolygonOptions{
		Tag:     Tag(g.Kind, ElemPolygon, g.ID),
		Fill:    fill,
		Outline: statusColor(g.Status),
	})

	area := geo.PolygonArea(points)
	g.Records.Area = area
	value, unit := geo.FormatAreaParts(area)
	m.env.Sync.CreateOrUpdateLabel(set, 0, []geo.Coordinate{geo.Centroid(points)}, value, unit, m.labelOpts(g))
}

func (m *areaMode) preview(ev backend.InputEvent) {
	if !ev.Valid || m.current == nil || m.current.Coords.Len() == 0 {
		return
	}
	g := m.current
	anchor := g.Coords.At(g.Coords.Len() - 1)
	m.env.Sync.CreateOrUpdateMovingLine(m.set(), []geo.Coordinate{anchor, ev.MapPoint}, m.movingLineOpts(g))
}

func (m *areaMode) finalizeFromHover() {
	g := m.current
	if g == nil {
		return
	}
	if m.hoverValid && m.nearHover() < 0 {
		m.appendPoint(m.hover)
	}
	if g.Coords.Len() < 3 {
		// Not enough points for a polygon; discard the stub.
		m.env.Sync.RemoveGroup(g.ID)
		m.env.Store.RemoveMeasureByID(g.ID)
		m.capturing = false
		m.reset()
		return
	}
	m.finalize()
}

func (m *areaMode) nearHover() int {
	for i, p := range m.current.Coords.Points() {
		if geo.Distance(p, m.hover) < m.env.Tuning.NearPointMeters {
			return i
		}
	}
	return -1
}

func (m *areaMode) finalize() {
	g := m.current
	set := m.set()
	m.env.Sync.RemoveMoving(set)

	g.Status = StatusCompleted
	recolor(set, statusColor(g.Status))
	m.refreshPolygon(g, set)

	if err := g.Validate(); err != nil {
		fmt.Printf("Warning: finalized %s measurement violates invariant: %v\n", g.Kind, err)
	}
	m.env.Store.UpdateOrAddMeasure(g)
	m.capturing = false
	m.reset()
}

func (m *areaMode) handleDeletePoint(ev backend.InputEvent) {
	id := m.pickedOwnElement(ev, ElemPoint)
	if id == "" {
		return
	}
	g := m.env.Store.GetMeasureByID(id)
	if !m.owned(g) {
		return
	}
	idx := -1
	tag := Tag(g.Kind, ElemPoint, g.ID)
	for _, p := range ev.Picked {
		if p.Tag == tag {
			if point, ok := p.Handle.(backend.Point); ok {
				idx = indexOfCoordinate(g.Coords, point.Position())
			}
		}
	}
	if idx < 0 && ev.Valid {
		idx = indexOfCoordinate(g.Coords, ev.MapPoint)
	}
	if idx < 0 {
		return
	}
	if !m.env.Confirm("Delete this point?") {
		return
	}

	set := m.env.Sync.Registry().Ensure(g.ID)
	g.Coords.RemoveAt(idx)
	m.env.Sync.RemoveMarkerAt(set, idx)

	if g.Coords.Len() == 0 {
		m.env.Sync.RemoveGroup(g.ID)
		m.env.Store.RemoveMeasureByID(g.ID)
		if m.current == g {
			m.capturing = false
			m.reset()
		}
		return
	}

	m.refreshPolygon(g, set)
	m.env.Store.UpdateOrAddMeasure(g)
}

func (m *areaMode) UpdateGraphicsOnDrag(g *Group, idx int, pos geo.Coordinate) {
	set := m.env.Sync.Registry().Ensure(g.ID)
	m.env.Sync.CreateOrUpdateMarker(set, idx, pos, m.markerOpts(g))
	m.refreshPolygon(g, set)
}

func (m *areaMode) FinalizeDrag(g *Group, idx int) {
	m.refreshPolygon(g, m.env.Sync.Registry().Ensure(g.ID))
}
