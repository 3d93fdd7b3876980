// Package view wires one rendering backend to the shared pool. A view owns
// the measurement modes, the drag and hover handlers, and the mirroring of
// measurements authored on other maps.
package view

import (
	"errors"
	"fmt"

	"geomeasure/internal/measure"
	"geomeasure/internal/pool"
	"geomeasure/pkg/backend"
	"geomeasure/pkg/geo"
)

// Config tunes a view. The zero value is usable.
type Config struct {
	// Confirm answers destructive prompts. Defaults to auto-confirm.
	Confirm measure.ConfirmFunc
	Tuning  measure.Tuning
}

// remoteState is what the view last drew for a foreign group, used to skip
// redundant redraws.
type remoteState struct {
	coords []geo.Coordinate
	status measure.Status
}

// View is one map surface participating in cross-view measurement sync.
type View struct {
	adapter  backend.Adapter
	pool     *pool.Pool
	sync     *measure.Synchronizer
	registry *measure.Registry

	env       measure.Env
	modes     map[measure.Kind]measure.Mode
	active    measure.Mode
	drag      *measure.DragHandler
	highlight *measure.HighlightHandler

	remote map[string]remoteState
	token  string
}

// New connects an adapter to the pool and starts listening for input and
// pool changes.
func New(adapter backend.Adapter, p *pool.Pool, cfg Config) (*View, error) {
	if adapter == nil {
		return nil, errors.New("view: adapter is required")
	}
	if p == nil {
		return nil, errors.New("view: pool is required")
	}
	if adapter.Name() == "" {
		return nil, errors.New("view: adapter must report a map name")
	}
	if cfg.Confirm == nil {
		cfg.Confirm = measure.AutoConfirm
	}
	if cfg.Tuning == (measure.Tuning{}) {
		cfg.Tuning = measure.DefaultTuning()
	}

	registry := measure.NewRegistry()
	sync := measure.NewSynchronizer(adapter, registry)
	v := &View{
		adapter:  adapter,
		pool:     p,
		sync:     sync,
		registry: registry,
		modes:    make(map[measure.Kind]measure.Mode),
		remote:   make(map[string]remoteState),
	}
	v.env = measure.Env{
		Adapter: adapter,
		Store:   p,
		Sync:    sync,
		Confirm: cfg.Confirm,
		Tuning:  cfg.Tuning,
	}
	v.drag = measure.NewDragHandler(v.env, v.activeMode)
	v.highlight = measure.NewHighlightHandler(adapter)

	adapter.OnInput(v.route)
	v.token = p.Subscribe(v.onData)
	v.drawFromDataArray(p.Data(), nil)
	return v, nil
}

// Name returns the map name this view draws on.
func (v *View) Name() string { return v.adapter.Name() }

// OnDragEnd registers a callback fired after every committed drag.
func (v *View) OnDragEnd(fn func(measure.DragEndEvent)) {
	v.drag.OnDragEnd = fn
}

func (v *View) activeMode() measure.Mode { return v.active }

// ActiveKind returns the active measurement kind and whether one is active.
func (v *View) ActiveKind() (measure.Kind, bool) {
	if v.active == nil {
		return 0, false
	}
	return v.active.Kind(), true
}

// ActivateMode switches the view to the given measurement kind. At most one
// mode is active; the previous one is deactivated first.
func (v *View) ActivateMode(kind measure.Kind) error {
	mode, ok := v.modes[kind]
	if !ok {
		mode = measure.NewMode(kind, v.env)
		if mode == nil {
			return fmt.Errorf("view: unknown measurement kind %d", kind)
		}
		v.modes[kind] = mode
	}
	if v.active == mode {
		return nil
	}
	v.DeactivateMode()
	v.active = mode
	mode.Activate()
	return nil
}

// DeactivateMode leaves measuring. An unfinished capture stays pending in
// the pool.
func (v *View) DeactivateMode() {
	if v.active != nil {
		v.active.Deactivate()
		v.active = nil
	}
	v.highlight.Clear()
}

// route is the single input entry point. Drag gestures get first refusal,
// then hover highlighting, then the active mode.
func (v *View) route(ev backend.InputEvent) {
	if v.drag.Handle(ev) {
		return
	}
	v.highlight.Handle(ev)
	if v.active != nil {
		v.active.HandleInput(ev)
	}
}

func (v *View) onData(ev pool.Event) {
	v.drawFromDataArray(ev.Data, ev.Removed)
}

// drawFromDataArray mirrors foreign measurements onto this view. Groups
// authored here are skipped; their graphics are owned by the local modes.
func (v *View) drawFromDataArray(data []*measure.Group, removed []string) {
	for _, id := range removed {
		v.sync.RemoveGroup(id)
		delete(v.remote, id)
	}

	var dirty []*measure.Group
	for _, g := range data {
		if g.MapName == v.adapter.Name() {
			continue
		}
		prev, seen := v.remote[g.ID]
		if seen && prev.status == g.Status && geo.SamePath(prev.coords, g.Coords.Points()) {
			continue
		}
		dirty = append(dirty, g)
	}
	if len(dirty) == 0 {
		return
	}

	if len(dirty) <= v.env.Tuning.BatchThreshold {
		for _, g := range dirty {
			v.redrawRemote(g)
		}
		return
	}
	// Large updates are spread over frames to keep the renderer responsive.
	v.scheduleBatch(dirty)
}

func (v *View) scheduleBatch(groups []*measure.Group) {
	size := v.env.Tuning.BatchSize
	if size <= 0 {
		size = len(groups)
	}
	chunk := groups[:min(size, len(groups))]
	rest := groups[len(chunk):]
	v.adapter.Scheduler().Schedule(func() {
		for _, g := range chunk {
			v.redrawRemote(g)
		}
		if len(rest) > 0 {
			v.scheduleBatch(rest)
		}
	})
}

// redrawRemote removes and recreates one foreign group. Tearing down first
// keeps stale primitives from surviving a shrink of the coordinate list.
func (v *View) redrawRemote(g *measure.Group) {
	if _, seen := v.remote[g.ID]; seen {
		v.sync.RemoveGroup(g.ID)
	}
	measure.RenderGroup(v.sync, g)
	v.remote[g.ID] = remoteState{coords: g.Coords.Snapshot(), status: g.Status}
}

// ClearOwn deletes every measurement authored on this view from the pool.
func (v *View) ClearOwn() {
	v.DeactivateMode()
	for _, id := range v.registry.IDs() {
		if g := v.pool.GetMeasureByID(id); g != nil && g.MapName != v.adapter.Name() {
			continue
		}
		v.sync.RemoveGroup(id)
	}
	v.pool.RemoveByMapName(v.adapter.Name())
}

// Close detaches the view from the pool and removes everything it drew.
func (v *View) Close() {
	v.pool.Unsubscribe(v.token)
	v.DeactivateMode()
	for _, id := range v.registry.IDs() {
		v.sync.RemoveGroup(id)
	}
	v.remote = make(map[string]remoteState)
}
