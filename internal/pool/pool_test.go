package pool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geomeasure/internal/measure"
	"geomeasure/internal/pool"
	"geomeasure/pkg/geo"
)

func newGroup(mapName string) *measure.Group {
	g := measure.NewGroup(measure.KindDistance, mapName)
	g.Coords.Append(geo.Coordinate{Lat: 48.1, Lng: 11.5})
	return g
}

func TestUpdateOrAddMeasureUpserts(t *testing.T) {
	p := pool.New()
	g := newGroup("cesium")

	p.UpdateOrAddMeasure(g)
	require.Len(t, p.Data(), 1)

	g.Status = measure.StatusCompleted
	p.UpdateOrAddMeasure(g)
	require.Len(t, p.Data(), 1, "same id must update, not duplicate")
	require.Same(t, g, p.GetMeasureByID(g.ID))
}

func TestSubscribersRunInRegistrationOrder(t *testing.T) {
	p := pool.New()
	var order []string
	p.Subscribe(func(pool.Event) { order = append(order, "first") })
	p.Subscribe(func(pool.Event) { order = append(order, "second") })
	p.Subscribe(func(pool.Event) { order = append(order, "third") })

	p.UpdateOrAddMeasure(newGroup("cesium"))
	require.Equal(t, []string{"first", "second", "third"}, order)
}

func TestEventCarriesSnapshotAndChange(t *testing.T) {
	p := pool.New()
	var events []pool.Event
	p.Subscribe(func(ev pool.Event) { events = append(events, ev) })

	g := newGroup("cesium")
	p.UpdateOrAddMeasure(g)
	require.Len(t, events, 1)
	require.Len(t, events[0].Data, 1)
	require.Same(t, g, events[0].Changed)
	require.Empty(t, events[0].Removed)

	p.RemoveMeasureByID(g.ID)
	require.Len(t, events, 2)
	require.Empty(t, events[1].Data)
	require.Nil(t, events[1].Changed)
	require.Equal(t, []string{g.ID}, events[1].Removed)
}

func TestRemoveUnknownIDEmitsNothing(t *testing.T) {
	p := pool.New()
	calls := 0
	p.Subscribe(func(pool.Event) { calls++ })

	p.RemoveMeasureByID("measure_404")
	require.Zero(t, calls)
}

func TestRemoveByMapName(t *testing.T) {
	p := pool.New()
	a := newGroup("cesium")
	b := newGroup("google")
	c := newGroup("cesium")
	p.UpdateOrAddMeasure(a)
	p.UpdateOrAddMeasure(b)
	p.UpdateOrAddMeasure(c)

	var removed []string
	p.Subscribe(func(ev pool.Event) { removed = ev.Removed })

	p.RemoveByMapName("cesium")
	require.ElementsMatch(t, []string{a.ID, c.ID}, removed)
	require.Len(t, p.Data(), 1)
	require.Same(t, b, p.GetMeasureByID(b.ID))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	p := pool.New()
	calls := 0
	token := p.Subscribe(func(pool.Event) { calls++ })

	p.UpdateOrAddMeasure(newGroup("cesium"))
	p.Unsubscribe(token)
	p.UpdateOrAddMeasure(newGroup("cesium"))

	require.Equal(t, 1, calls)
}

func TestHandlerMayReenterPool(t *testing.T) {
	p := pool.New()
	var seen *measure.Group
	p.Subscribe(func(ev pool.Event) {
		if ev.Changed != nil {
			// Reading back during dispatch must not deadlock.
			seen = p.GetMeasureByID(ev.Changed.ID)
		}
	})

	g := newGroup("cesium")
	p.UpdateOrAddMeasure(g)
	require.Same(t, g, seen)
}

func TestNextLabelNumberIncrements(t *testing.T) {
	p := pool.New()
	require.Equal(t, 1, p.NextLabelNumber())
	require.Equal(t, 2, p.NextLabelNumber())
	require.Equal(t, 3, p.NextLabelNumber())
}

func TestClearEmptiesPool(t *testing.T) {
	p := pool.New()
	p.UpdateOrAddMeasure(newGroup("cesium"))
	p.UpdateOrAddMeasure(newGroup("google"))

	var removed []string
	p.Subscribe(func(ev pool.Event) { removed = ev.Removed })

	p.Clear()
	require.Empty(t, p.Data())
	require.Len(t, removed, 2)

	// Clearing an empty pool is silent.
	removed = nil
	p.Clear()
	require.Nil(t, removed)
}
