package measure

import (
	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// DragEndEvent is the before/after snapshot emitted when a drag commits.
type DragEndEvent struct {
	MeasureID string
	Index     int
	Before    geo.Coordinate
	After     geo.Coordinate
}

// dragSession lives for exactly one drag gesture.
type dragSession struct {
	group       *Group
	index       int
	beginPos    geo.Coordinate
	beginScreen geo.ScreenPoint
	beginStatus Status
	lastScreen  geo.ScreenPoint
	traveled    float64
	endPos      geo.Coordinate
}

// DragHandler turns pointer-down/move/up sequences over point markers into
// drag edits. A gesture only becomes a drag once the cumulative screen
// distance exceeds the pixel threshold; below it, nothing is mutated and
// the backend's click event proceeds as usual.
type DragHandler struct {
	env        Env
	activeMode func() Mode
	session    *dragSession
	isDragMode bool

	// OnDragEnd receives a snapshot after every committed drag.
	OnDragEnd func(DragEndEvent)
}

// NewDragHandler creates a drag handler. activeMode returns the view's
// currently active mode, or nil.
func NewDragHandler(env Env, activeMode func() Mode) *DragHandler {
	return &DragHandler{env: env, activeMode: activeMode}
}

// IsDragMode reports whether a drag is currently in flight.
func (h *DragHandler) IsDragMode() bool { return h.isDragMode }

// Handle consumes an input event. It returns true when the event belongs
// to a drag gesture and must not reach the active mode.
func (h *DragHandler) Handle(ev backend.InputEvent) bool {
	switch ev.Kind {
	case backend.LeftDown:
		return h.handleDown(ev)
	case backend.MouseMove:
		return h.handleMove(ev)
	case backend.LeftUp:
		return h.handleUp(ev)
	}
	return false
}

func (h *DragHandler) handleDown(ev backend.InputEvent) bool {
	mode := h.activeMode()
	if mode == nil {
		return false
	}

	// Only a point marker belonging to the active mode arms a drag.
	for _, picked := range ev.Picked {
		kind, elem, id, ok := ParseTag(picked.Tag)
		if !ok || kind != mode.Kind() || elem != ElemPoint {
			continue
		}
		g := h.env.Store.GetMeasureByID(id)
		if g == nil {
			continue
		}
		// Mirrored copies of foreign measurements are read-only; only the
		// authoring view may drag its points.
		if g.MapName != h.env.Adapter.Name() {
			continue
		}
		point, ok := picked.Handle.(backend.Point)
		if !ok {
			continue
		}
		idx := indexOfCoordinate(g.Coords, point.Position())
		if idx < 0 {
			continue
		}

		h.session = &dragSession{
			group:       g,
			index:       idx,
			beginPos:    g.Coords.At(idx),
			beginScreen: ev.ScreenPoint,
			beginStatus: g.Status,
			lastScreen:  ev.ScreenPoint,
		}
		h.env.Adapter.SetPanEnabled(false)
		return true
	}
	return false
}

func (h *DragHandler) handleMove(ev backend.InputEvent) bool {
	s := h.session
	if s == nil {
		return false
	}

	s.traveled += s.lastScreen.Distance(ev.ScreenPoint)
	s.lastScreen = ev.ScreenPoint

	if !h.isDragMode {
		if s.traveled <= h.env.Tuning.DragThresholdPixels {
			return true
		}
		h.isDragMode = true
		s.group.Status = StatusPending
	}

	if !ev.Valid {
		return true
	}
	s.endPos = ev.MapPoint
	s.group.Coords.Set(s.index, ev.MapPoint)
	if mode := h.activeMode(); mode != nil {
		mode.UpdateGraphicsOnDrag(s.group, s.index, ev.MapPoint)
	}
	return true
}

func (h *DragHandler) handleUp(ev backend.InputEvent) bool {
	s := h.session
	if s == nil {
		return false
	}
	h.session = nil
	h.env.Adapter.SetPanEnabled(true)

	if !h.isDragMode {
		// A click, not a drag: nothing was mutated.
		return false
	}
	h.isDragMode = false

	if ev.Valid {
		s.endPos = ev.MapPoint
		s.group.Coords.Set(s.index, ev.MapPoint)
	}
	if mode := h.activeMode(); mode != nil {
		mode.UpdateGraphicsOnDrag(s.group, s.index, s.group.Coords.At(s.index))
		mode.FinalizeDrag(s.group, s.index)
	}
	s.group.Status = s.beginStatus
	recolor(h.env.Sync.Registry().Ensure(s.group.ID), statusColor(s.group.Status))
	h.env.Store.UpdateOrAddMeasure(s.group)

	if h.OnDragEnd != nil {
		h.OnDragEnd(DragEndEvent{
			MeasureID: s.group.ID,
			Index:     s.index,
			Before:    s.beginPos,
			After:     s.group.Coords.At(s.index),
		})
	}
	return true
}
