// Package liveness implements the Liveness Monitor (spec §4.4): a periodic
// sweep that demotes nodes whose last heartbeat has gone stale.
package liveness

import (
	"context"
	"time"

	"github.com/distcluster/coordinator/internal/cluster/events"
	"github.com/distcluster/coordinator/internal/cluster/node"
	"github.com/distcluster/coordinator/internal/cluster/stats"
	"github.com/distcluster/coordinator/internal/logger"
)

// Monitor periodically sweeps the Node Registry for stale heartbeats.
type Monitor struct {
	registry *node.Registry
	stats    *stats.Stats
	bus      *events.Bus
	log      *logger.Logger

	timeout       time.Duration
	sweepInterval time.Duration
}

func New(registry *node.Registry, st *stats.Stats, bus *events.Bus, log *logger.Logger, timeout, sweepInterval time.Duration) *Monitor {
	return &Monitor{
		registry:      registry,
		stats:         st,
		bus:           bus,
		log:           log.With("component", "LivenessMonitor"),
		timeout:       timeout,
		sweepInterval: sweepInterval,
	}
}

// Run blocks, sweeping on sweepInterval until ctx is cancelled. A panic in
// one sweep is recovered and logged; the loop keeps running (spec §7).
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweepOnce()
		}
	}
}

func (m *Monitor) sweepOnce() {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("liveness sweep panicked", "panic", r)
		}
	}()

	demoted := m.registry.DemoteStale(m.timeout, time.Now())
	for _, id := range demoted {
		m.log.Warn("node marked offline", "node_id", id)
		m.bus.Publish(events.Event{Type: events.TypeNodeOffline, Data: map[string]any{"node_id": id}})
	}
	m.stats.SetNodesOnline(m.registry.OnlineCount())
}
