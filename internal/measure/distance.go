package measure

import (
	"fmt"

	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// distanceMode measures exactly two points. The second click finalizes
// immediately; there is no perimeter or add mode.
type distanceMode struct {
	modeBase
	capturing bool
}

func newDistanceMode(env Env) *distanceMode {
	return &distanceMode{modeBase: newModeBase(KindDistance, env)}
}

func (m *distanceMode) Activate() {}

func (m *distanceMode) Deactivate() {
	m.capturing = false
	m.deactivate()
}

func (m *distanceMode) HandleInput(ev backend.InputEvent) {
	m.trackHover(ev)

	switch ev.Kind {
	case backend.MouseMove:
		if m.capturing {
			m.preview(ev)
		}
	case backend.LeftClick:
		m.handleLeftClick(ev)
	case backend.MiddleClick:
		m.handleDeletePoint(ev)
	}
}

func (m *distanceMode) handleLeftClick(ev backend.InputEvent) {
	if m.capturing {
		if m.nearExistingIndex(ev) >= 0 {
			return
		}
		if ev.Valid {
			m.placeSecondPoint(ev.MapPoint)
		}
		return
	}

	// A click on a pending single-point group resumes it; otherwise start
	// fresh.
	if id := m.pickedOwnElement(ev, ElemPoint); id != "" {
		if g := m.env.Store.GetMeasureByID(id); m.owned(g) && g.Status == StatusPending && g.Coords.Len() == 1 {
			if m.env.Confirm("Resume this measurement?") {
				m.current = g
				m.capturing = true
			}
			return
		}
	}
	if ev.Valid {
		m.startCapture(ev.MapPoint)
	}
}

func (m *distanceMode) startCapture(p geo.Coordinate) {
	g := m.begin()
	g.Coords.Append(p)
	m.capturing = true

	m.env.Sync.CreateOrUpdateMarker(m.set(), 0, p, m.markerOpts(g))
	m.env.Store.UpdateOrAddMeasure(g)
}

func (m *distanceMode) placeSecondPoint(p geo.Coordinate) {
	g := m.current
	set := m.set()
	m.env.Sync.RemoveMoving(set)

	first := g.Coords.At(0)
	g.Coords.Append(p)

	d := geo.Distance(first, p)
	g.Records.Distances = []float64{d}
	g.Records.TotalDistance = d
	g.Status = StatusCompleted

	m.env.Sync.CreateOrUpdateMarker(set, 1, p, m.markerOpts(g))
	m.env.Sync.CreateOrUpdateLine(set, 0, []geo.Coordinate{first, p}, m.lineOpts(g))
	value, unit := geo.FormatDistanceParts(d)
	m.env.Sync.CreateOrUpdateLabel(set, 0, []geo.Coordinate{first, p}, value, unit, m.labelOpts(g))
	recolor(set, statusColor(g.Status))

	if err := g.Validate(); err != nil {
		fmt.Printf("Warning: finalized %s measurement violates invariant: %v\n", g.Kind, err)
	}
	m.env.Store.UpdateOrAddMeasure(g)
	m.capturing = false
	m.reset()
}

func (m *distanceMode) preview(ev backend.InputEvent) {
	if !ev.Valid || m.current == nil || m.current.Coords.Len() == 0 {
		return
	}
	g := m.current
	anchor := g.Coords.At(0)
	positions := []geo.Coordinate{anchor, ev.MapPoint}

	set := m.set()
	m.env.Sync.CreateOrUpdateMovingLine(set, positions, m.movingLineOpts(g))
	value, unit := geo.FormatDistanceParts(geo.Distance(anchor, ev.MapPoint))
	m.env.Sync.CreateOrUpdateMovingLabel(set, positions, value, unit, m.movingLabelOpts(g))
}

// handleDeletePoint removes one of the two points. The measurement drops
// back to a single-point pending capture rather than being destroyed, so
// the user can place a replacement point.
func (m *distanceMode) handleDeletePoint(ev backend.InputEvent) {
	id := m.pickedOwnElement(ev, ElemPoint)
	if id == "" {
		return
	}
	g := m.env.Store.GetMeasureByID(id)
	if !m.owned(g) {
		return
	}
	idx := m.pickedIndex(ev, g)
	if idx < 0 {
		return
	}
	if !m.env.Confirm("Delete this point?") {
		return
	}

	set := m.env.Sync.Registry().Ensure(g.ID)
	g.Coords.RemoveAt(idx)
	m.env.Sync.RemoveMarkerAt(set, idx)
	m.env.Sync.RemoveLineAt(set, 0)
	m.env.Sync.RemoveLabelAt(set, 0)

	if g.Coords.Len() == 0 {
		m.env.Sync.RemoveGroup(g.ID)
		m.env.Store.RemoveMeasureByID(g.ID)
		if m.current == g {
			m.capturing = false
			m.reset()
		}
		return
	}

	g.Status = StatusPending
	g.Records = Records{}
	recolor(set, statusColor(g.Status))
	m.env.Store.UpdateOrAddMeasure(g)

	// Continue capturing from the remaining point.
	m.current = g
	m.capturing = true
}

func (m *distanceMode) pickedIndex(ev backend.InputEvent, g *Group) int {
	tag := Tag(g.Kind, ElemPoint, g.ID)
	for _, p := range ev.Picked {
		if p.Tag != tag {
			continue
		}
		if point, ok := p.Handle.(backend.Point); ok {
			if idx := indexOfCoordinate(g.Coords, point.Position()); idx >= 0 {
				return idx
			}
		}
	}
	if ev.Valid {
		return indexOfCoordinate(g.Coords, ev.MapPoint)
	}
	return -1
}

func (m *distanceMode) UpdateGraphicsOnDrag(g *Group, idx int, pos geo.Coordinate) {
	set := m.env.Sync.Registry().Ensure(g.ID)
	points := g.Coords.Points()

	m.env.Sync.CreateOrUpdateMarker(set, idx, pos, m.markerOpts(g))
	if len(points) == 2 {
		other := points[1-idx]
		positions := []geo.Coordinate{points[0], points[1]}
		m.env.Sync.CreateOrUpdateLine(set, 0, positions, m.lineOpts(g))
		value, unit := geo.FormatDistanceParts(geo.Distance(other, pos))
		m.env.Sync.CreateOrUpdateLabel(set, 0, positions, value, unit, m.labelOpts(g))
	}
}

func (m *distanceMode) FinalizeDrag(g *Group, idx int) {
	points := g.Coords.Points()
	if len(points) != 2 {
		return
	}
	d := geo.Distance(points[0], points[1])
	g.Records.Distances = []float64{d}
	g.Records.TotalDistance = d
}
