// Package pool holds the shared measurement data that every map view reads
// from and writes to. Views subscribe to change notifications; the pool
// dispatches synchronously in subscription order so a test can assert on
// state right after a mutation.
package pool

import (
	"sync"

	"github.com/google/uuid"

	"geomeasure/internal/measure"
)

// Event describes one pool mutation delivered to subscribers.
type Event struct {
	// Data is a snapshot of the full pool contents after the mutation.
	Data []*measure.Group
	// Changed is the group the mutation touched, nil for bulk removals.
	Changed *measure.Group
	// Removed holds the ids dropped by this mutation.
	Removed []string
}

// Handler receives pool events. Handlers run synchronously on the mutating
// goroutine and must not block.
type Handler func(Event)

type subscription struct {
	token   string
	handler Handler
}

// Pool is the process-wide measurement store. All methods are safe for
// concurrent use; the lock is never held while handlers run, so a handler
// may call back into the pool.
type Pool struct {
	mu     sync.Mutex
	groups []*measure.Group
	// subscriptions is an ordered slice, not a map, so dispatch order is
	// deterministic.
	subscriptions []subscription
	labelCounter  int
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{}
}

// UpdateOrAddMeasure upserts a group by id. The pool keeps the pointer; the
// caller's coordinate cache stays aliased, matching how capture modes edit
// a group in place between upserts.
func (p *Pool) UpdateOrAddMeasure(g *measure.Group) {
	if g == nil || g.ID == "" {
		return
	}
	p.mu.Lock()
	replaced := false
	for i, existing := range p.groups {
		if existing.ID == g.ID {
			p.groups[i] = g
			replaced = true
			break
		}
	}
	if !replaced {
		p.groups = append(p.groups, g)
	}
	ev := Event{Data: p.snapshotLocked(), Changed: g}
	handlers := p.handlersLocked()
	p.mu.Unlock()

	dispatch(handlers, ev)
}

// RemoveMeasureByID removes one group. Unknown ids are a no-op and emit
// nothing.
func (p *Pool) RemoveMeasureByID(id string) {
	p.mu.Lock()
	idx := -1
	for i, g := range p.groups {
		if g.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.mu.Unlock()
		return
	}
	p.groups = append(p.groups[:idx], p.groups[idx+1:]...)
	ev := Event{Data: p.snapshotLocked(), Removed: []string{id}}
	handlers := p.handlersLocked()
	p.mu.Unlock()

	dispatch(handlers, ev)
}

// RemoveByMapName removes every group authored on the named map.
func (p *Pool) RemoveByMapName(mapName string) {
	p.mu.Lock()
	var kept []*measure.Group
	var removed []string
	for _, g := range p.groups {
		if g.MapName == mapName {
			removed = append(removed, g.ID)
		} else {
			kept = append(kept, g)
		}
	}
	if len(removed) == 0 {
		p.mu.Unlock()
		return
	}
	p.groups = kept
	ev := Event{Data: p.snapshotLocked(), Removed: removed}
	handlers := p.handlersLocked()
	p.mu.Unlock()

	dispatch(handlers, ev)
}

// Clear empties the pool.
func (p *Pool) Clear() {
	p.mu.Lock()
	if len(p.groups) == 0 {
		p.mu.Unlock()
		return
	}
	removed := make([]string, len(p.groups))
	for i, g := range p.groups {
		removed[i] = g.ID
	}
	p.groups = nil
	ev := Event{Removed: removed}
	handlers := p.handlersLocked()
	p.mu.Unlock()

	dispatch(handlers, ev)
}

// GetMeasureByID returns the stored group, or nil.
func (p *Pool) GetMeasureByID(id string) *measure.Group {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, g := range p.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Data returns a snapshot slice of the current contents. The groups
// themselves are shared, the slice is the caller's.
func (p *Pool) Data() []*measure.Group {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// NextLabelNumber hands out the next display index for a new measurement.
func (p *Pool) NextLabelNumber() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.labelCounter++
	return p.labelCounter
}

// Subscribe registers a change handler and returns its token.
func (p *Pool) Subscribe(h Handler) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	token := uuid.NewString()
	p.subscriptions = append(p.subscriptions, subscription{token: token, handler: h})
	return token
}

// Unsubscribe removes the handler registered under token.
func (p *Pool) Unsubscribe(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.subscriptions {
		if s.token == token {
			p.subscriptions = append(p.subscriptions[:i], p.subscriptions[i+1:]...)
			return
		}
	}
}

func (p *Pool) snapshotLocked() []*measure.Group {
	out := make([]*measure.Group, len(p.groups))
	copy(out, p.groups)
	return out
}

func (p *Pool) handlersLocked() []Handler {
	out := make([]Handler, len(p.subscriptions))
	for i, s := range p.subscriptions {
		out[i] = s.handler
	}
	return out
}

func dispatch(handlers []Handler, ev Event) {
	for _, h := range handlers {
		h(ev)
	}
}
