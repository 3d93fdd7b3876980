package measure

import "geomeasure/pkg/backend"

// HandleSet owns every primitive one view created for one measurement
// group. Handle sets are never shared across views: each view allocates its
// own primitives even for the same group.
type HandleSet struct {
	Markers  []backend.Point
	Lines    []backend.Line
	Labels   []backend.Label
	Polygon  backend.Polygon
	// TotalLabel is the end-of-path summary label for distance modes.
	TotalLabel backend.Label

	// Moving primitives are rubber-band previews, always removed before a
	// terminal pending/completed primitive is drawn.
	MovingLine  backend.Line
	MovingLabel backend.Label
}

// Registry maps measurement group ids to the handle set this view owns for
// them.
type Registry struct {
	sets map[string]*HandleSet
}

// NewRegistry creates an empty handle registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*HandleSet)}
}

// Get returns the handle set for a group id, or nil.
func (r *Registry) Get(id string) *HandleSet { return r.sets[id] }

// Ensure returns the handle set for a group id, creating it if needed.
func (r *Registry) Ensure(id string) *HandleSet {
	if set, ok := r.sets[id]; ok {
		return set
	}
	set := &HandleSet{}
	r.sets[id] = set
	return set
}

// Drop forgets the handle set for a group id without touching primitives.
func (r *Registry) Drop(id string) { delete(r.sets, id) }

// IDs returns the group ids with registered handle sets.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.sets))
	for id := range r.sets {
		ids = append(ids, id)
	}
	return ids
}
