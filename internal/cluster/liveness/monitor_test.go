package liveness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/distcluster/coordinator/internal/cluster/events"
	"github.com/distcluster/coordinator/internal/cluster/node"
	"github.com/distcluster/coordinator/internal/cluster/stats"
	"github.com/distcluster/coordinator/internal/logger"
)

func TestMonitor_SweepOnce_DemotesStaleNodesAndPublishes(t *testing.T) {
	registry := node.NewRegistry()
	st := stats.New(time.Now())
	bus := events.NewBus(logger.Noop())
	sub := bus.Subscribe(events.Event{Type: events.TypeInitialStatus})
	<-sub.Outbound

	past := time.Now().Add(-time.Hour)
	registry.Register(node.Registration{ID: "stale"}, past)

	m := New(registry, st, bus, logger.Noop(), time.Second, time.Minute)
	m.sweepOnce()

	require.Equal(t, 0, registry.OnlineCount())
	require.Equal(t, 0, st.Snapshot().NodesOnline)

	select {
	case ev := <-sub.Outbound:
		require.Equal(t, events.TypeNodeOffline, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a node_offline event")
	}
}

func TestMonitor_SweepOnce_LeavesFreshNodesOnline(t *testing.T) {
	registry := node.NewRegistry()
	st := stats.New(time.Now())
	bus := events.NewBus(logger.Noop())

	registry.Register(node.Registration{ID: "fresh"}, time.Now())

	m := New(registry, st, bus, logger.Noop(), time.Hour, time.Minute)
	m.sweepOnce()

	require.Equal(t, 1, registry.OnlineCount())
}
