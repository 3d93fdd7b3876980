package measure

import (
	"fmt"

	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// pointInfoMode places a single annotated point. Each click produces an
// immediately completed group; there is no multi-step capture.
type pointInfoMode struct {
	modeBase
}

func newPointInfoMode(env Env) *pointInfoMode {
	return &pointInfoMode{modeBase: newModeBase(KindPointInfo, env)}
}

func (m *pointInfoMode) Activate() {}

func (m *pointInfoMode) Deactivate() { m.deactivate() }

func (m *pointInfoMode) HandleInput(ev backend.InputEvent) {
	m.trackHover(ev)

	switch ev.Kind {
	case backend.LeftClick:
		if ev.Valid {
			m.place(ev.MapPoint)
		}
	case backend.MiddleClick:
		m.handleDelete(ev)
	}
}

func (m *pointInfoMode) place(p geo.Coordinate) {
	g := m.begin()
	g.Coords.Append(p)

	cartographic := p
	g.Records.Cartographic = &cartographic
	g.Status = StatusCompleted

	set := m.set()
	m.env.Sync.CreateOrUpdateMarker(set, 0, p, m.markerOpts(g))
	m.env.Sync.CreateOrUpdateLabel(set, 0, []geo.Coordinate{p}, geo.FormatCoordinate(p), "", m.labelOpts(g))

	if err := g.Validate(); err != nil {
		fmt.Printf("Warning: finalized %s measurement violates invariant: %v\n", g.Kind, err)
	}
	m.env.Store.UpdateOrAddMeasure(g)
	m.reset()
}

func (m *pointInfoMode) handleDelete(ev backend.InputEvent) {
	id := m.pickedOwnElement(ev, ElemPoint)
	if id == "" {
		return
	}
	g := m.env.Store.GetMeasureByID(id)
	if !m.owned(g) {
		return
	}
	if !m.env.Confirm("Delete this point?") {
		return
	}
	m.env.Sync.RemoveGroup(g.ID)
	m.env.Store.RemoveMeasureByID(g.ID)
}

func (m *pointInfoMode) UpdateGraphicsOnDrag(g *Group, idx int, pos geo.Coordinate) {
	set := m.env.Sync.Registry().Ensure(g.ID)
	m.env.Sync.CreateOrUpdateMarker(set, 0, pos, m.markerOpts(g))
	m.env.Sync.CreateOrUpdateLabel(set, 0, []geo.Coordinate{pos}, geo.FormatCoordinate(pos), "", m.labelOpts(g))
}

func (m *pointInfoMode) FinalizeDrag(g *Group, idx int) {
	if g.Coords.Len() != 1 {
		return
	}
	cartographic := g.Coords.At(0)
	g.Records.Cartographic = &cartographic
}
