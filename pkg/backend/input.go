package backend

import "geomeasure/pkg/geo"

// EventKind identifies a normalized pointer event.
type EventKind int

const (
	LeftClick EventKind = iota
	RightClick
	MiddleClick
	MouseMove
	LeftDown
	LeftUp
	DoubleClick
)

// String returns the event name used in logs.
func (k EventKind) String() string {
	switch k {
	case LeftClick:
		return "leftclick"
	case RightClick:
		return "rightclick"
	case MiddleClick:
		return "middleclick"
	case MouseMove:
		return "mousemove"
	case LeftDown:
		return "leftdown"
	case LeftUp:
		return "leftup"
	case DoubleClick:
		return "doubleclick"
	}
	return "unknown"
}

// PickedFeature is one primitive under the pointer, as reported by the
// renderer's hit test.
type PickedFeature struct {
	Tag    string
	Handle Handle
}

// InputEvent is the single event shape every backend's input normalizer
// produces from its native pointer events.
type InputEvent struct {
	Kind EventKind

	// MapPoint is the geographic position under the pointer. Valid is
	// false when the pointer is off the map surface.
	MapPoint geo.Coordinate
	Valid    bool

	ScreenPoint geo.ScreenPoint
	Picked      []PickedFeature

	// Raw carries the backend's native event for callers that need it.
	Raw any
}

// PickedTag returns the first picked feature whose tag has the given
// prefix, or an empty string if none matched.
func (ev InputEvent) PickedTag(prefix string) string {
	for _, p := range ev.Picked {
		if len(p.Tag) >= len(prefix) && p.Tag[:len(prefix)] == prefix {
			return p.Tag
		}
	}
	return ""
}
