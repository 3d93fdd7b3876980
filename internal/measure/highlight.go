package measure

import (
	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// HighlightHandler draws a hover ring over the annotation point marker
// under the pointer. A single reusable marker follows the pointer between
// targets and disappears when nothing is hovered.
type HighlightHandler struct {
	adapter backend.Adapter
	ring    backend.Point
}

// NewHighlightHandler creates a hover highlighter for the given adapter.
func NewHighlightHandler(adapter backend.Adapter) *HighlightHandler {
	return &HighlightHandler{adapter: adapter}
}

// Handle consumes pointer-move events. It never swallows the event; the
// active mode still sees the move for its own rubber-band preview.
func (h *HighlightHandler) Handle(ev backend.InputEvent) {
	if ev.Kind != backend.MouseMove {
		return
	}

	for _, picked := range ev.Picked {
		kind, elem, id, ok := ParseTag(picked.Tag)
		if !ok || elem != ElemPoint {
			continue
		}
		point, ok := picked.Handle.(backend.Point)
		if !ok {
			continue
		}
		h.show(point.Position(), Tag(kind, ElemHighlight, id))
		return
	}
	h.Clear()
}

func (h *HighlightHandler) show(pos geo.Coordinate, tag string) {
	if alive(h.ring) {
		h.ring.SetPosition(pos)
		return
	}
	h.ring = h.adapter.AddPointMarker(pos, backend.MarkerOptions{
		Tag:       tag,
		Color:     backend.Green,
		PixelSize: 14,
	})
}

// Clear removes the hover ring if one is shown.
func (h *HighlightHandler) Clear() {
	if h.ring != nil {
		h.adapter.RemovePointMarker(h.ring)
		h.ring = nil
	}
}
