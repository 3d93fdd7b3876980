package measure

import (
	"fmt"

	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// Synchronizer implements the create-or-update protocol for derived
// graphics. Given the same positions and status, every operation is
// idempotent: a live handle is mutated in place and a new primitive is only
// allocated when the slot is empty or holds a stale reference.
type Synchronizer struct {
	adapter  backend.Adapter
	registry *Registry
}

// NewSynchronizer creates a synchronizer drawing through the given adapter
// and tracking ownership in the given registry.
func NewSynchronizer(adapter backend.Adapter, registry *Registry) *Synchronizer {
	return &Synchronizer{adapter: adapter, registry: registry}
}

// Registry returns the handle registry this synchronizer writes to.
func (s *Synchronizer) Registry() *Registry { return s.registry }

func alive(h backend.Handle) bool {
	return h != nil && h.Alive()
}

// CreateOrUpdateMarker keeps marker slot idx of the set in sync with pos.
func (s *Synchronizer) CreateOrUpdateMarker(set *HandleSet, idx int, pos geo.Coordinate, opts backend.MarkerOptions) backend.Point {
	if set == nil || idx < 0 {
		fmt.Printf("Warning: createOrUpdateMarker called with invalid arguments\n")
		return nil
	}
	for len(set.Markers) <= idx {
		set.Markers = append(set.Markers, nil)
	}
	if m := set.Markers[idx]; alive(m) {
		m.SetPosition(pos)
		m.SetColor(opts.Color)
		return m
	}
	m := s.adapter.AddPointMarker(pos, opts)
	if m == nil {
		fmt.Printf("Warning: backend %s failed to create point marker %s\n", s.adapter.Name(), opts.Tag)
	}
	set.Markers[idx] = m
	return m
}

// CreateOrUpdateLine keeps line slot idx of the set in sync with positions.
func (s *Synchronizer) CreateOrUpdateLine(set *HandleSet, idx int, positions []geo.Coordinate, opts backend.LineOptions) backend.Line {
	if set == nil || idx < 0 || len(positions) < 2 {
		fmt.Printf("Warning: createOrUpdateLine called with invalid positions\n")
		return nil
	}
	for len(set.Lines) <= idx {
		set.Lines = append(set.Lines, nil)
	}
	if l := set.Lines[idx]; alive(l) {
		l.SetPositions(positions)
		l.SetColor(opts.Color)
		return l
	}
	l := s.adapter.AddPolyline(positions, opts)
	if l == nil {
		fmt.Printf("Warning: backend %s failed to create polyline %s\n", s.adapter.Name(), opts.Tag)
	}
	set.Lines[idx] = l
	return l
}

// CreateOrUpdateLabel keeps label slot idx of the set in sync with the
// given anchors and text.
func (s *Synchronizer) CreateOrUpdateLabel(set *HandleSet, idx int, positions []geo.Coordinate, value, unit string, opts backend.LabelOptions) backend.Label {
	if set == nil || idx < 0 || len(positions) == 0 {
		fmt.Printf("Warning: createOrUpdateLabel called with invalid positions\n")
		return nil
	}
	for len(set.Labels) <= idx {
		set.Labels = append(set.Labels, nil)
	}
	if l := set.Labels[idx]; alive(l) {
		l.SetPositions(positions)
		l.SetText(value, unit)
		return l
	}
	l := s.adapter.AddLabel(positions, value, unit, opts)
	if l == nil {
		fmt.Printf("Warning: backend %s failed to create label %s\n", s.adapter.Name(), opts.Tag)
	}
	set.Labels[idx] = l
	return l
}

// CreateOrUpdatePolygon keeps the set's single polygon in sync.
func (s *Synchronizer) CreateOrUpdatePolygon(set *HandleSet, positions []geo.Coordinate, opts backend.PolygonOptions) backend.Polygon {
	if set == nil || len(positions) < 3 {
		fmt.Printf("Warning: createOrUpdatePolygon called with invalid positions\n")
		return nil
	}
	if alive(set.Polygon) {
		set.Polygon.SetPositions(positions)
		return set.Polygon
	}
	p := s.adapter.AddPolygon(positions, opts)
	if p == nil {
		fmt.Printf("Warning: backend %s failed to create polygon %s\n", s.adapter.Name(), opts.Tag)
	}
	set.Polygon = p
	return p
}

// CreateOrUpdateTotalLabel keeps the end-of-path summary label in sync.
func (s *Synchronizer) CreateOrUpdateTotalLabel(set *HandleSet, pos geo.Coordinate, value, unit string, opts backend.LabelOptions) backend.Label {
	if set == nil {
		return nil
	}
	if alive(set.TotalLabel) {
		set.TotalLabel.SetPositions([]geo.Coordinate{pos})
		set.TotalLabel.SetText(value, unit)
		return set.TotalLabel
	}
	l := s.adapter.AddLabel([]geo.Coordinate{pos}, value, unit, opts)
	if l == nil {
		fmt.Printf("Warning: backend %s failed to create label %s\n", s.adapter.Name(), opts.Tag)
	}
	set.TotalLabel = l
	return l
}

// CreateOrUpdateMovingLine keeps the rubber-band preview line in sync.
func (s *Synchronizer) CreateOrUpdateMovingLine(set *HandleSet, positions []geo.Coordinate, opts backend.LineOptions) backend.Line {
	if set == nil || len(positions) < 2 {
		return nil
	}
	if alive(set.MovingLine) {
		set.MovingLine.SetPositions(positions)
		return set.MovingLine
	}
	set.MovingLine = s.adapter.AddPolyline(positions, opts)
	return set.MovingLine
}

// CreateOrUpdateMovingLabel keeps the rubber-band preview label in sync.
func (s *Synchronizer) CreateOrUpdateMovingLabel(set *HandleSet, positions []geo.Coordinate, value, unit string, opts backend.LabelOptions) backend.Label {
	if set == nil || len(positions) == 0 {
		return nil
	}
	if alive(set.MovingLabel) {
		set.MovingLabel.SetPositions(positions)
		set.MovingLabel.SetText(value, unit)
		return set.MovingLabel
	}
	set.MovingLabel = s.adapter.AddLabel(positions, value, unit, opts)
	return set.MovingLabel
}

// RemoveMoving removes the rubber-band preview primitives. Always called
// before a terminal pending/completed primitive is drawn, so no preview
// graphics can leak into a finished measurement.
func (s *Synchronizer) RemoveMoving(set *HandleSet) {
	if set == nil {
		return
	}
	if set.MovingLine != nil {
		s.adapter.RemovePolyline(set.MovingLine)
		set.MovingLine = nil
	}
	if set.MovingLabel != nil {
		s.adapter.RemoveLabel(set.MovingLabel)
		set.MovingLabel = nil
	}
}

// RemoveMarkerAt removes marker slot idx and realigns the array.
func (s *Synchronizer) RemoveMarkerAt(set *HandleSet, idx int) {
	if set == nil || idx < 0 || idx >= len(set.Markers) {
		return
	}
	if set.Markers[idx] != nil {
		s.adapter.RemovePointMarker(set.Markers[idx])
	}
	set.Markers = append(set.Markers[:idx], set.Markers[idx+1:]...)
}

// RemoveLineAt removes line slot idx and realigns the array.
func (s *Synchronizer) RemoveLineAt(set *HandleSet, idx int) {
	if set == nil || idx < 0 || idx >= len(set.Lines) {
		return
	}
	if set.Lines[idx] != nil {
		s.adapter.RemovePolyline(set.Lines[idx])
	}
	set.Lines = append(set.Lines[:idx], set.Lines[idx+1:]...)
}

// RemoveLabelAt removes label slot idx and realigns the array.
func (s *Synchronizer) RemoveLabelAt(set *HandleSet, idx int) {
	if set == nil || idx < 0 || idx >= len(set.Labels) {
		return
	}
	if set.Labels[idx] != nil {
		s.adapter.RemoveLabel(set.Labels[idx])
	}
	set.Labels = append(set.Labels[:idx], set.Labels[idx+1:]...)
}

// InsertLineSlot makes room for a new line primitive before index idx.
func (s *Synchronizer) InsertLineSlot(set *HandleSet, idx int) {
	set.Lines = append(set.Lines, nil)
	copy(set.Lines[idx+1:], set.Lines[idx:])
	set.Lines[idx] = nil
}

// InsertLabelSlot makes room for a new label primitive before index idx.
func (s *Synchronizer) InsertLabelSlot(set *HandleSet, idx int) {
	set.Labels = append(set.Labels, nil)
	copy(set.Labels[idx+1:], set.Labels[idx:])
	set.Labels[idx] = nil
}

// InsertMarkerSlot makes room for a new marker primitive before index idx.
func (s *Synchronizer) InsertMarkerSlot(set *HandleSet, idx int) {
	set.Markers = append(set.Markers, nil)
	copy(set.Markers[idx+1:], set.Markers[idx:])
	set.Markers[idx] = nil
}

// RemoveSet removes every primitive of a handle set.
func (s *Synchronizer) RemoveSet(set *HandleSet) {
	if set == nil {
		return
	}
	s.RemoveMoving(set)
	for _, m := range set.Markers {
		if m != nil {
			s.adapter.RemovePointMarker(m)
		}
	}
	for _, l := range set.Lines {
		if l != nil {
			s.adapter.RemovePolyline(l)
		}
	}
	for _, l := range set.Labels {
		if l != nil {
			s.adapter.RemoveLabel(l)
		}
	}
	if set.TotalLabel != nil {
		s.adapter.RemoveLabel(set.TotalLabel)
	}
	if set.Polygon != nil {
		s.adapter.RemovePolygon(set.Polygon)
	}
	set.Markers, set.Lines, set.Labels = nil, nil, nil
	set.TotalLabel, set.Polygon = nil, nil
}

// RemoveGroup removes all primitives for a group id and forgets the set.
func (s *Synchronizer) RemoveGroup(id string) {
	set := s.registry.Get(id)
	if set == nil {
		return
	}
	s.RemoveSet(set)
	s.registry.Drop(id)
}
