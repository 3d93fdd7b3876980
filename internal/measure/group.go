// Package measure implements the measurement state machines and the
// create-or-update annotation protocol shared by every map view.
package measure

import (
	"fmt"
	"sync"
	"time"

	"geomeasure/pkg/geo"
)

// Kind identifies which state machine produced a measurement.
type Kind int

const (
	KindDistance Kind = iota
	KindMultiDistance
	KindArea
	KindCurve
	KindPointInfo
)

var kindNames = map[Kind]string{
	KindDistance:      "distance",
	KindMultiDistance: "multi_distances",
	KindArea:          "area",
	KindCurve:         "curve",
	KindPointInfo:     "pointInfo",
}

// String returns the wire name of the kind, as used in primitive tags.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindFromString resolves a wire name back to its Kind.
func KindFromString(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Status marks a measurement as in progress or finalized.
type Status string

const (
	// StatusPending marks a capture in progress or a group being dragged.
	StatusPending Status = "pending"
	// StatusCompleted marks a finalized measurement.
	StatusCompleted Status = "completed"
)

// Records holds the mode-specific derived values of a group. Which fields
// are populated depends on the kind: distance modes fill Distances and
// TotalDistance, area fills Area, pointInfo fills Cartographic.
type Records struct {
	Distances     []float64
	TotalDistance float64
	Area          float64
	Cartographic  *geo.Coordinate
}

// Cache is the mutable coordinate container shared between an active mode
// instance and its in-progress group. Both hold the same *Cache, so cache
// mutation and group mutation stay synchronized without copying.
type Cache struct {
	points []geo.Coordinate
}

// NewCache creates an empty coordinate cache.
func NewCache() *Cache { return &Cache{} }

// Points returns the live coordinate slice. Callers must treat it as
// read-only; mutation goes through the methods below.
func (c *Cache) Points() []geo.Coordinate { return c.points }

// Len returns the number of cached coordinates.
func (c *Cache) Len() int { return len(c.points) }

// At returns the coordinate at index i.
func (c *Cache) At(i int) geo.Coordinate { return c.points[i] }

// Set replaces the coordinate at index i.
func (c *Cache) Set(i int, p geo.Coordinate) { c.points[i] = p }

// Append adds a coordinate at the end.
func (c *Cache) Append(p geo.Coordinate) { c.points = append(c.points, p) }

// Prepend adds a coordinate at the front (reverse capture).
func (c *Cache) Prepend(p geo.Coordinate) {
	c.points = append([]geo.Coordinate{p}, c.points...)
}

// InsertAt inserts a coordinate before index i.
func (c *Cache) InsertAt(i int, p geo.Coordinate) {
	c.points = append(c.points, geo.Coordinate{})
	copy(c.points[i+1:], c.points[i:])
	c.points[i] = p
}

// RemoveAt removes the coordinate at index i.
func (c *Cache) RemoveAt(i int) {
	c.points = append(c.points[:i], c.points[i+1:]...)
}

// Clear drops all cached coordinates.
func (c *Cache) Clear() { c.points = nil }

// Snapshot returns a copy of the current coordinates.
func (c *Cache) Snapshot() []geo.Coordinate {
	return append([]geo.Coordinate(nil), c.points...)
}

// Group is one finished or in-progress measurement. Coordinates live in a
// shared Cache so the owning mode and the group always agree.
type Group struct {
	ID               string
	Kind             Kind
	Coords           *Cache
	LabelNumberIndex int
	Status           Status
	Records          Records

	// InterpolatedPoints is the densified path for curved modes. Derived,
	// never hand-edited.
	InterpolatedPoints []geo.Coordinate

	// MapName identifies the backend view that authored this group, used
	// to suppress redundant self-redraw.
	MapName string
}

// NewGroup creates a pending group with a fresh cache and a monotonic id.
func NewGroup(kind Kind, mapName string) *Group {
	return &Group{
		ID:      NewGroupID(),
		Kind:    kind,
		Coords:  NewCache(),
		Status:  StatusPending,
		MapName: mapName,
	}
}

// Coordinates returns the group's live coordinate slice.
func (g *Group) Coordinates() []geo.Coordinate {
	if g.Coords == nil {
		return nil
	}
	return g.Coords.Points()
}

// Validate checks the arity and records invariants for the group's kind.
// Pending groups are only checked for upper bounds; completed groups must
// satisfy the full contract.
func (g *Group) Validate() error {
	n := len(g.Coordinates())
	if g.Status != StatusCompleted {
		return nil
	}
	switch g.Kind {
	case KindDistance:
		if n != 2 {
			return fmt.Errorf("distance requires exactly 2 coordinates, have %d", n)
		}
		if len(g.Records.Distances) != 1 {
			return fmt.Errorf("distance requires exactly 1 record, have %d", len(g.Records.Distances))
		}
	case KindMultiDistance:
		if n < 2 {
			return fmt.Errorf("multi_distances requires at least 2 coordinates, have %d", n)
		}
		if len(g.Records.Distances) != n-1 {
			return fmt.Errorf("multi_distances requires %d records, have %d", n-1, len(g.Records.Distances))
		}
	case KindArea:
		if n < 3 {
			return fmt.Errorf("area requires at least 3 coordinates, have %d", n)
		}
	case KindCurve:
		if n != 3 {
			return fmt.Errorf("curve requires exactly 3 coordinates, have %d", n)
		}
	case KindPointInfo:
		if n != 1 {
			return fmt.Errorf("pointInfo requires exactly 1 coordinate, have %d", n)
		}
	}
	return nil
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NewGroupID returns a monotonic-timestamp id. Two ids created in the same
// millisecond still come out strictly increasing, so ordering and
// cross-view uniqueness hold.
func NewGroupID() string {
	idMu.Lock()
	defer idMu.Unlock()

	now := time.Now().UnixMilli()
	if now <= lastID {
		now = lastID + 1
	}
	lastID = now
	return fmt.Sprintf("measure_%d", now)
}

// Store is the slice of the data pool the mode machines write through.
// *pool.Pool implements it.
type Store interface {
	UpdateOrAddMeasure(g *Group)
	RemoveMeasureByID(id string)
	GetMeasureByID(id string) *Group
	NextLabelNumber() int
}
