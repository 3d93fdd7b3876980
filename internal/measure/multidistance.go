package measure

import (
	"fmt"

	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// multiDistanceMode measures a path of connected segments. It is the
// richest machine: capture, perimeter closing, resume from either end,
// mid-segment insertion, and point deletion with O(1) distance splices.
type multiDistanceMode struct {
	modeBase
	capturing bool
	isReverse bool
	armed     *armedAdd
}

// armedAdd marks a specific line segment as the insertion target while the
// mode is in add mode.
type armedAdd struct {
	measureID string
	segment   int
}

func newMultiDistanceMode(env Env) *multiDistanceMode {
	return &multiDistanceMode{modeBase: newModeBase(KindMultiDistance, env)}
}

func (m *multiDistanceMode) Activate() {}

func (m *multiDistanceMode) Deactivate() {
	m.capturing = false
	m.isReverse = false
	m.armed = nil
	m.deactivate()
}

func (m *multiDistanceMode) HandleInput(ev backend.InputEvent) {
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
	case backend.DoubleClick:
		if !m.capturing {
			m.armAddMode(ev)
		}
	}
}

func (m *multiDistanceMode) handleLeftClick(ev backend.InputEvent) {
	if m.armed != nil {
		m.insertIntoArmedSegment(ev)
		return
	}

	if m.capturing {
		if idx := m.nearExistingIndex(ev); idx >= 0 {
			if m.isClosingEndpoint(idx) && m.current.Coords.Len() >= 3 {
				m.closePerimeter()
			}
			// Any other coincident click is ignored to prevent
			// duplicate points.
			return
		}
		if ev.Valid {
			m.appendPoint(ev.MapPoint)
		}
		return
	}

	// Not capturing: an endpoint click resumes an existing measurement, a
	// line click arms add mode, anything else starts a new capture.
	if id := m.pickedOwnElement(ev, ElemPoint); id != "" {
		m.tryResume(ev, id)
		return
	}
	if m.pickedOwnElement(ev, ElemLine) != "" {
		m.armAddMode(ev)
		return
	}
	if ev.Valid {
		m.startCapture(ev.MapPoint)
	}
}

// isClosingEndpoint reports whether cache index idx is the end opposite the
// one being extended, i.e. the point that closes the perimeter.
func (m *multiDistanceMode) isClosingEndpoint(idx int) bool {
	if m.isReverse {
		return idx == m.current.Coords.Len()-1
	}
	return idx == 0
}

func (m *multiDistanceMode) startCapture(p geo.Coordinate) {
	g := m.begin()
	g.Coords.Append(p)
	m.capturing = true
	m.isReverse = false

	m.env.Sync.CreateOrUpdateMarker(m.set(), 0, p, m.markerOpts(g))
	m.env.Store.UpdateOrAddMeasure(g)
}

// appendPoint grows the path by one point at the extending end and draws
// the joining line and label.
func (m *multiDistanceMode) appendPoint(p geo.Coordinate) {
	g := m.current
	set := m.set()
	m.env.Sync.RemoveMoving(set)

	if m.isReverse {
		first := g.Coords.At(0)
		g.Coords.Prepend(p)
		m.env.Sync.InsertMarkerSlot(set, 0)
		m.env.Sync.InsertLineSlot(set, 0)
		m.env.Sync.InsertLabelSlot(set, 0)

		d := geo.Distance(p, first)
		m.env.Sync.CreateOrUpdateMarker(set, 0, p, m.markerOpts(g))
		m.env.Sync.CreateOrUpdateLine(set, 0, []geo.Coordinate{p, first}, m.lineOpts(g))
		value, unit := geo.FormatDistanceParts(d)
		m.env.Sync.CreateOrUpdateLabel(set, 0, []geo.Coordinate{p, first}, value, unit, m.labelOpts(g))

		g.Records.Distances = append([]float64{d}, g.Records.Distances...)
		g.Records.TotalDistance += d
	} else {
		last := g.Coords.At(g.Coords.Len() - 1)
		g.Coords.Append(p)
		n := g.Coords.Len()

		d := geo.Distance(last, p)
		m.env.Sync.CreateOrUpdateMarker(set, n-1, p, m.markerOpts(g))
		m.env.Sync.CreateOrUpdateLine(set, n-2, []geo.Coordinate{last, p}, m.lineOpts(g))
		value, unit := geo.FormatDistanceParts(d)
		m.env.Sync.CreateOrUpdateLabel(set, n-2, []geo.Coordinate{last, p}, value, unit, m.labelOpts(g))

		g.Records.Distances = append(g.Records.Distances, d)
		g.Records.TotalDistance += d
	}

	m.env.Store.UpdateOrAddMeasure(g)
}

// preview rubber-bands a moving line from the extending end to the pointer.
func (m *multiDistanceMode) preview(ev backend.InputEvent) {
	if !ev.Valid || m.current == nil || m.current.Coords.Len() == 0 {
		return
	}
	g := m.current
	anchor := g.Coords.At(g.Coords.Len() - 1)
	if m.isReverse {
		anchor = g.Coords.At(0)
	}

	set := m.set()
	positions := []geo.Coordinate{anchor, ev.MapPoint}
	m.env.Sync.CreateOrUpdateMovingLine(set, positions, m.movingLineOpts(g))
	value, unit := geo.FormatDistanceParts(geo.Distance(anchor, ev.MapPoint))
	m.env.Sync.CreateOrUpdateMovingLabel(set, positions, value, unit, m.movingLabelOpts(g))
}

// closePerimeter appends the opposite endpoint's coordinate again and
// finalizes as a closed shape. The closing segment reuses the existing
// endpoint markers; only a line and label are added.
func (m *multiDistanceMode) closePerimeter() {
	g := m.current
	set := m.set()
	m.env.Sync.RemoveMoving(set)

	n := g.Coords.Len()
	var from, to geo.Coordinate
	if m.isReverse {
		from, to = g.Coords.At(0), g.Coords.At(n-1)
		g.Coords.Prepend(to)
	} else {
		from, to = g.Coords.At(n-1), g.Coords.At(0)
		g.Coords.Append(to)
	}

	d := geo.Distance(from, to)
	lineIdx := len(set.Lines)
	labelIdx := len(set.Labels)
	if m.isReverse {
		m.env.Sync.InsertLineSlot(set, 0)
		m.env.Sync.InsertLabelSlot(set, 0)
		lineIdx, labelIdx = 0, 0
		g.Records.Distances = append([]float64{d}, g.Records.Distances...)
	} else {
		g.Records.Distances = append(g.Records.Distances, d)
	}
	m.env.Sync.CreateOrUpdateLine(set, lineIdx, []geo.Coordinate{from, to}, m.lineOpts(g))
	value, unit := geo.FormatDistanceParts(d)
	m.env.Sync.CreateOrUpdateLabel(set, labelIdx, []geo.Coordinate{from, to}, value, unit, m.labelOpts(g))
	g.Records.TotalDistance += d

	m.finalizeCommon()
}

// finalizeFromHover appends the current hover coordinate as the final point
// and finalizes.
func (m *multiDistanceMode) finalizeFromHover() {
	g := m.current
	if g == nil {
		return
	}

	if m.hoverValid && m.nearHover() < 0 {
		m.appendPoint(m.hover)
	}

	if g.Coords.Len() < 2 {
		// Nothing measurable was captured; discard the stub.
		m.env.Sync.RemoveGroup(g.ID)
		m.env.Store.RemoveMeasureByID(g.ID)
		m.capturing = false
		m.reset()
		return
	}
	m.finalizeCommon()
}

// nearHover returns the cache index coincident with the hover coordinate,
// or -1.
func (m *multiDistanceMode) nearHover() int {
	for i, p := range m.current.Coords.Points() {
		if geo.Distance(p, m.hover) < m.env.Tuning.NearPointMeters {
			return i
		}
	}
	return -1
}

// finalizeCommon marks the group completed, recolors its graphics, and
// draws the total label at the extending end.
func (m *multiDistanceMode) finalizeCommon() {
	g := m.current
	set := m.set()
	m.env.Sync.RemoveMoving(set)

	g.Status = StatusCompleted
	recolor(set, statusColor(g.Status))

	anchor := g.Coords.At(g.Coords.Len() - 1)
	if m.isReverse {
		anchor = g.Coords.At(0)
	}
	value, unit := geo.FormatDistanceParts(g.Records.TotalDistance)
	m.env.Sync.CreateOrUpdateTotalLabel(set, anchor, value, unit, backend.LabelOptions{
		Tag:      Tag(g.Kind, ElemTotalLabel, g.ID),
		Color:    backend.Cyan,
		FontSize: 16,
	})

	if err := g.Validate(); err != nil {
		fmt.Printf("Warning: finalized %s measurement violates invariant: %v\n", g.Kind, err)
	}
	m.env.Store.UpdateOrAddMeasure(g)
	m.capturing = false
	m.isReverse = false
	m.reset()
}

// recolor applies a terminal color to the whole handle set.
func recolor(set *HandleSet, color backend.Color) {
	for _, marker := range set.Markers {
		if marker != nil {
			marker.SetColor(color)
		}
	}
	for _, line := range set.Lines {
		if line != nil {
			line.SetColor(color)
		}
	}
}

// tryResume reloads a completed group's coordinates into the cache and
// continues capture from the clicked end.
func (m *multiDistanceMode) tryResume(ev backend.InputEvent, id string) {
	g := m.env.Store.GetMeasureByID(id)
	if !m.owned(g) {
		return
	}
	idx := m.pickedCoordinateIndex(ev, g)
	if idx != 0 && idx != g.Coords.Len()-1 {
		return
	}
	if !m.env.Confirm("Resume this measurement?") {
		return
	}

	// Remove the total label; it is redrawn on the next finalize.
	set := m.env.Sync.Registry().Ensure(g.ID)
	if set.TotalLabel != nil {
		m.env.Adapter.RemoveLabel(set.TotalLabel)
		set.TotalLabel = nil
	}

	m.current = g
	m.capturing = true
	m.isReverse = idx == 0
	g.Status = StatusPending
	recolor(set, statusColor(g.Status))
	m.env.Store.UpdateOrAddMeasure(g)
}

// pickedCoordinateIndex resolves the cache index of the picked marker, or
// -1.
func (m *multiDistanceMode) pickedCoordinateIndex(ev backend.InputEvent, g *Group) int {
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

// armAddMode marks the clicked line segment as the insertion target.
func (m *multiDistanceMode) armAddMode(ev backend.InputEvent) {
	id := m.pickedOwnElement(ev, ElemLine)
	if id == "" {
		return
	}
	g := m.env.Store.GetMeasureByID(id)
	if !m.owned(g) || g.Status != StatusCompleted {
		return
	}
	segment := m.pickedSegmentIndex(ev, g)
	if segment < 0 {
		return
	}
	if !m.env.Confirm("Add a point to this segment?") {
		return
	}
	m.armed = &armedAdd{measureID: id, segment: segment}
}

// pickedSegmentIndex resolves which line slot of the group was picked.
func (m *multiDistanceMode) pickedSegmentIndex(ev backend.InputEvent, g *Group) int {
	set := m.env.Sync.Registry().Get(g.ID)
	if set == nil {
		return -1
	}
	tag := Tag(g.Kind, ElemLine, g.ID)
	for _, p := range ev.Picked {
		if p.Tag != tag {
			continue
		}
		for idx, line := range set.Lines {
			if line != nil && line == p.Handle {
				return idx
			}
		}
	}
	// Fall back to the segment whose midpoint is closest to the click.
	if !ev.Valid {
		return -1
	}
	best, bestDist := -1, 0.0
	points := g.Coords.Points()
	for i := 0; i+1 < len(points); i++ {
		d := geo.Distance(geo.Midpoint(points[i], points[i+1]), ev.MapPoint)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// insertIntoArmedSegment splits the armed segment at the clicked
// coordinate: one line and label become two, and the distances array is
// renumbered at that index.
func (m *multiDistanceMode) insertIntoArmedSegment(ev backend.InputEvent) {
	armed := m.armed
	m.armed = nil
	if !ev.Valid {
		return
	}
	g := m.env.Store.GetMeasureByID(armed.measureID)
	if g == nil {
		return
	}
	seg := armed.segment
	if seg < 0 || seg >= g.Coords.Len()-1 {
		return
	}

	set := m.env.Sync.Registry().Ensure(g.ID)
	p := ev.MapPoint
	left := g.Coords.At(seg)
	right := g.Coords.At(seg + 1)

	g.Coords.InsertAt(seg+1, p)
	m.env.Sync.InsertMarkerSlot(set, seg+1)
	m.env.Sync.InsertLineSlot(set, seg+1)
	m.env.Sync.InsertLabelSlot(set, seg+1)

	d1 := geo.Distance(left, p)
	d2 := geo.Distance(p, right)
	color := statusColor(g.Status)
	markerOpts := m.markerOpts(g)
	markerOpts.Color = color
	lineOpts := m.lineOpts(g)
	lineOpts.Color = color

	m.env.Sync.CreateOrUpdateMarker(set, seg+1, p, markerOpts)
	m.env.Sync.CreateOrUpdateLine(set, seg, []geo.Coordinate{left, p}, lineOpts)
	m.env.Sync.CreateOrUpdateLine(set, seg+1, []geo.Coordinate{p, right}, lineOpts)
	value, unit := geo.FormatDistanceParts(d1)
	m.env.Sync.CreateOrUpdateLabel(set, seg, []geo.Coordinate{left, p}, value, unit, m.labelOpts(g))
	value, unit = geo.FormatDistanceParts(d2)
	m.env.Sync.CreateOrUpdateLabel(set, seg+1, []geo.Coordinate{p, right}, value, unit, m.labelOpts(g))

	old := g.Records.Distances[seg]
	distances := make([]float64, 0, len(g.Records.Distances)+1)
	distances = append(distances, g.Records.Distances[:seg]...)
	distances = append(distances, d1, d2)
	distances = append(distances, g.Records.Distances[seg+1:]...)
	g.Records.Distances = distances
	g.Records.TotalDistance += d1 + d2 - old

	m.refreshTotalLabel(g, set)
	m.env.Store.UpdateOrAddMeasure(g)
}

func (m *multiDistanceMode) refreshTotalLabel(g *Group, set *HandleSet) {
	if set.TotalLabel == nil {
		return
	}
	value, unit := geo.FormatDistanceParts(g.Records.TotalDistance)
	set.TotalLabel.SetText(value, unit)
}

// handleDeletePoint removes a point, reconnects its neighbors, and splices
// the distances array without recomputing the whole path.
func (m *multiDistanceMode) handleDeletePoint(ev backend.InputEvent) {
	id := m.pickedOwnElement(ev, ElemPoint)
	if id == "" {
		return
	}
	g := m.env.Store.GetMeasureByID(id)
	if !m.owned(g) {
		return
	}
	idx := m.pickedCoordinateIndex(ev, g)
	if idx < 0 {
		return
	}
	if !m.env.Confirm("Delete this point?") {
		return
	}
	m.deletePointAt(g, idx)
}

func (m *multiDistanceMode) deletePointAt(g *Group, idx int) {
	set := m.env.Sync.Registry().Ensure(g.ID)
	n := g.Coords.Len()
	d := g.Records.Distances

	switch {
	case idx == 0:
		// Head endpoint: its single segment and distance entry go away.
		g.Coords.RemoveAt(0)
		m.env.Sync.RemoveMarkerAt(set, 0)
		m.env.Sync.RemoveLineAt(set, 0)
		m.env.Sync.RemoveLabelAt(set, 0)
		if len(d) > 0 {
			g.Records.TotalDistance -= d[0]
			g.Records.Distances = d[1:]
		}
	case idx == n-1:
		// Tail endpoint: drop the last segment and entry.
		g.Coords.RemoveAt(idx)
		m.env.Sync.RemoveMarkerAt(set, idx)
		m.env.Sync.RemoveLineAt(set, idx-1)
		m.env.Sync.RemoveLabelAt(set, idx-1)
		if len(d) > 0 {
			g.Records.TotalDistance -= d[len(d)-1]
			g.Records.Distances = d[:len(d)-1]
		}
	default:
		// Interior point: the two adjacent entries collapse into the one
		// reconnecting distance at the same index. This is an O(1)
		// splice, not a whole-path recompute.
		left := g.Coords.At(idx - 1)
		right := g.Coords.At(idx + 1)
		reconnect := geo.Distance(left, right)

		g.Coords.RemoveAt(idx)
		m.env.Sync.RemoveMarkerAt(set, idx)
		m.env.Sync.RemoveLineAt(set, idx)
		m.env.Sync.RemoveLabelAt(set, idx)
		m.env.Sync.CreateOrUpdateLine(set, idx-1, []geo.Coordinate{left, right}, m.lineOpts(g))
		value, unit := geo.FormatDistanceParts(reconnect)
		m.env.Sync.CreateOrUpdateLabel(set, idx-1, []geo.Coordinate{left, right}, value, unit, m.labelOpts(g))

		g.Records.TotalDistance += reconnect - d[idx-1] - d[idx]
		spliced := make([]float64, 0, len(d)-1)
		spliced = append(spliced, d[:idx-1]...)
		spliced = append(spliced, reconnect)
		spliced = append(spliced, d[idx+1:]...)
		g.Records.Distances = spliced
	}

	// A single remaining point has no connecting line; the trailing point
	// is removed entirely along with the group.
	if g.Coords.Len() <= 1 {
		m.env.Sync.RemoveGroup(g.ID)
		m.env.Store.RemoveMeasureByID(g.ID)
		if m.current == g {
			m.capturing = false
			m.reset()
		}
		return
	}

	m.refreshTotalLabel(g, set)
	m.env.Store.UpdateOrAddMeasure(g)
}

func (m *multiDistanceMode) UpdateGraphicsOnDrag(g *Group, idx int, pos geo.Coordinate) {
	set := m.env.Sync.Registry().Ensure(g.ID)
	points := g.Coords.Points()

	m.env.Sync.CreateOrUpdateMarker(set, idx, pos, m.markerOpts(g))
	if idx > 0 {
		prev := points[idx-1]
		m.env.Sync.CreateOrUpdateLine(set, idx-1, []geo.Coordinate{prev, pos}, m.lineOpts(g))
		value, unit := geo.FormatDistanceParts(geo.Distance(prev, pos))
		m.env.Sync.CreateOrUpdateLabel(set, idx-1, []geo.Coordinate{prev, pos}, value, unit, m.labelOpts(g))
	}
	if idx < len(points)-1 {
		next := points[idx+1]
		m.env.Sync.CreateOrUpdateLine(set, idx, []geo.Coordinate{pos, next}, m.lineOpts(g))
		value, unit := geo.FormatDistanceParts(geo.Distance(pos, next))
		m.env.Sync.CreateOrUpdateLabel(set, idx, []geo.Coordinate{pos, next}, value, unit, m.labelOpts(g))
	}
}

func (m *multiDistanceMode) FinalizeDrag(g *Group, idx int) {
	points := g.Coords.Points()
	d := g.Records.Distances

	if idx > 0 && idx-1 < len(d) {
		updated := geo.Distance(points[idx-1], points[idx])
		g.Records.TotalDistance += updated - d[idx-1]
		d[idx-1] = updated
	}
	if idx < len(points)-1 && idx < len(d) {
		updated := geo.Distance(points[idx], points[idx+1])
		g.Records.TotalDistance += updated - d[idx]
		d[idx] = updated
	}
	m.refreshTotalLabel(g, m.env.Sync.Registry().Ensure(g.ID))
}
