package measure

import (
	"fmt"

	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// curveMode captures exactly three control points and draws a smooth
// interpolated path through them. The label and the persisted distance are
// measured along the interpolated path, not the chord.
type curveMode struct {
	modeBase
	capturing bool
}

func newCurveMode(env Env) *curveMode {
	return &curveMode{modeBase: newModeBase(KindCurve, env)}
}

func (m *curveMode) Activate() {}

func (m *curveMode) Deactivate() {
	m.capturing = false
	m.deactivate()
}

func (m *curveMode) HandleInput(ev backend.InputEvent) {
	m.trackHover(ev)

	switch ev.Kind {
	case backend.MouseMove:
		if m.capturing {
			m.preview(ev)
		}
	case backend.LeftClick:
		m.handleLeftClick(ev)
	case backend.MiddleClick:
		m.handleDelete(ev)
	}
}

func (m *curveMode) handleLeftClick(ev backend.InputEvent) {
	if !ev.Valid {
		return
	}
	if m.capturing && m.nearExistingIndex(ev) >= 0 {
		return
	}

	if !m.capturing {
		g := m.begin()
		g.Coords.Append(ev.MapPoint)
		m.capturing = true
		m.env.Sync.CreateOrUpdateMarker(m.set(), 0, ev.MapPoint, m.markerOpts(g))
		m.env.Store.UpdateOrAddMeasure(g)
		return
	}

	g := m.current
	set := m.set()
	m.env.Sync.RemoveMoving(set)

	g.Coords.Append(ev.MapPoint)
	m.env.Sync.CreateOrUpdateMarker(set, g.Coords.Len()-1, ev.MapPoint, m.markerOpts(g))

	if g.Coords.Len() < 3 {
		m.env.Store.UpdateOrAddMeasure(g)
		return
	}
	m.finalize()
}

func (m *curveMode) preview(ev backend.InputEvent) {
	if !ev.Valid || m.current == nil || m.current.Coords.Len() == 0 {
		return
	}
	g := m.current
	anchor := g.Coords.At(g.Coords.Len() - 1)
	m.env.Sync.CreateOrUpdateMovingLine(m.set(), []geo.Coordinate{anchor, ev.MapPoint}, m.movingLineOpts(g))
}

// finalize densifies the three control points and completes the group with
// the distance measured along the interpolated path.
func (m *curveMode) finalize() {
	g := m.current
	set := m.set()
	m.env.Sync.RemoveMoving(set)

	g.InterpolatedPoints = geo.InterpolateCurve(g.Coords.Points(), geo.DefaultCurveSamples)
	along := geo.PathLength(g.InterpolatedPoints)
	g.Records.Distances = []float64{along}
	g.Records.TotalDistance = along
	g.Status = StatusCompleted

	m.env.Sync.CreateOrUpdateLine(set, 0, g.InterpolatedPoints, m.lineOpts(g))
	value, unit := geo.FormatDistanceParts(along)
	mid := g.Coords.At(1)
	m.env.Sync.CreateOrUpdateLabel(set, 0, []geo.Coordinate{mid}, value, unit, m.labelOpts(g))
	recolor(set, statusColor(g.Status))

	if err := g.Validate(); err != nil {
		fmt.Printf("Warning: finalized %s measurement violates invariant: %v\n", g.Kind, err)
	}
	m.env.Store.UpdateOrAddMeasure(g)
	m.capturing = false
	m.reset()
}

// handleDelete removes the whole curve: a three-point curve has no
// meaningful partial shape to keep.
func (m *curveMode) handleDelete(ev backend.InputEvent) {
	id := m.pickedOwnElement(ev, ElemPoint)
	if id == "" {
		return
	}
	g := m.env.Store.GetMeasureByID(id)
	if !m.owned(g) {
		return
	}
	if !m.env.Confirm("Delete this curve?") {
		return
	}
	m.env.Sync.RemoveGroup(g.ID)
	m.env.Store.RemoveMeasureByID(g.ID)
	if m.current == g {
		m.capturing = false
		m.reset()
	}
}

func (m *curveMode) UpdateGraphicsOnDrag(g *Group, idx int, pos geo.Coordinate) {
	set := m.env.Sync.Registry().Ensure(g.ID)
	m.env.Sync.CreateOrUpdateMarker(set, idx, pos, m.markerOpts(g))

	// The whole path depends on every control point, so the interpolation
	// is refreshed live.
	interpolated := geo.InterpolateCurve(g.Coords.Points(), geo.DefaultCurveSamples)
	if len(interpolated) >= 2 {
		m.env.Sync.CreateOrUpdateLine(set, 0, interpolated, m.lineOpts(g))
	}
}

func (m *curveMode) FinalizeDrag(g *Group, idx int) {
	if g.Coords.Len() != 3 {
		return
	}
	g.InterpolatedPoints = geo.InterpolateCurve(g.Coords.Points(), geo.DefaultCurveSamples)
	along := geo.PathLength(g.InterpolatedPoints)
	g.Records.Distances = []float64{along}
	g.Records.TotalDistance = along

	set := m.env.Sync.Registry().Ensure(g.ID)
	value, unit := geo.FormatDistanceParts(along)
	m.env.Sync.CreateOrUpdateLabel(set, 0, []geo.Coordinate{g.Coords.At(1)}, value, unit, m.labelOpts(g))
}
