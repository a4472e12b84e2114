// Package dispatcher implements the Dispatcher control loop (spec §4.2):
// pull next job, pick node, send, observe outcome, requeue on no-capacity.
package dispatcher

import (
	"context"
	"time"

	"github.com/distcluster/coordinator/internal/cluster/events"
	"github.com/distcluster/coordinator/internal/cluster/job"
	"github.com/distcluster/coordinator/internal/cluster/node"
	"github.com/distcluster/coordinator/internal/cluster/queue"
	"github.com/distcluster/coordinator/internal/cluster/stats"
	"github.com/distcluster/coordinator/internal/logger"
	"github.com/distcluster/coordinator/internal/workerclient"
)

// Dispatcher is the single logical control loop described in spec §4.2.
// Implementations may use multiple goroutines; this one is conceptually
// serial, which is the simplest way to hold the per-class FIFO and
// class-priority invariants without extra coordination.
type Dispatcher struct {
	store    *job.Store
	registry *node.Registry
	queues   *queue.Set
	stats    *stats.Stats
	bus      *events.Bus
	worker   *workerclient.Client
	log      *logger.Logger

	pollInterval     time.Duration
	requeueBackoff   time.Duration
	workerRPCTimeout time.Duration
}

func New(
	store *job.Store,
	registry *node.Registry,
	queues *queue.Set,
	st *stats.Stats,
	bus *events.Bus,
	worker *workerclient.Client,
	log *logger.Logger,
	pollInterval, requeueBackoff, workerRPCTimeout time.Duration,
) *Dispatcher {
	return &Dispatcher{
		store:            store,
		registry:         registry,
		queues:           queues,
		stats:            st,
		bus:              bus,
		worker:           worker,
		log:              log.With("component", "Dispatcher"),
		pollInterval:     pollInterval,
		requeueBackoff:   requeueBackoff,
		workerRPCTimeout: workerRPCTimeout,
	}
}

// Run blocks, draining the Queue Set until ctx is cancelled. Safe to run in
// its own goroutine; it never terminates on its own short of ctx.Done, and
// a panic inside a single iteration is recovered so the loop survives it
// (spec §7: "A background loop must never terminate the process").
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.runOnce(ctx)
	}
}

func (d *Dispatcher) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("dispatcher iteration panicked", "panic", r)
			d.sleep(ctx, d.pollInterval)
		}
	}()

	id, class, ok := d.queues.Dequeue()
	if !ok {
		d.sleep(ctx, d.pollInterval)
		return
	}

	j, ok := d.store.Get(id)
	if !ok || j.Status != job.StatusQueued {
		// Stale queue entry (shouldn't happen under normal operation); drop it.
		return
	}

	candidates := d.registry.Online()
	selected := node.Select(candidates, j.GPUPreferred)
	if selected == nil {
		d.queues.Enqueue(class, id)
		d.log.Debug("no eligible node, requeued", "job_id", id, "class", class.String())
		d.sleep(ctx, d.requeueBackoff)
		return
	}

	assigned, err := d.store.Assign(id, selected.ID, time.Now())
	if err != nil {
		d.log.Warn("assign failed", "job_id", id, "error", err)
		return
	}

	// The RPC is detached from ctx's cancellation so an in-flight call can
	// finish or time out on shutdown; its outcome is discarded if ctx was
	// cancelled in the meantime.
	rpcCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.workerRPCTimeout)
	result, err := d.worker.Execute(rpcCtx, selected.Address, assigned)
	cancel()

	if ctx.Err() != nil {
		d.log.Info("discarding worker outcome received after shutdown", "job_id", id)
		return
	}
	if err != nil {
		d.handleFailure(id, err.Error())
		return
	}
	d.handleCompletion(id, result, selected.ID)
}

func (d *Dispatcher) handleCompletion(id string, result []byte, nodeID string) {
	now := time.Now()
	completed, err := d.store.Complete(id, result, now)
	if err != nil {
		d.log.Warn("complete failed", "job_id", id, "error", err)
		return
	}

	gpuEnabled, ok := d.registry.RecordJobOutcome(nodeID, completed.ExecutionTime.Seconds())
	if ok {
		d.stats.RecordCompletion(gpuEnabled)
	}

	d.log.Info("job completed", "job_id", id, "node_id", nodeID, "execution_time", completed.ExecutionTime)
	d.bus.Publish(events.Event{Type: events.TypeJobCompleted, Data: completed})
}

func (d *Dispatcher) handleFailure(id, reason string) {
	now := time.Now()
	failed, err := d.store.Fail(id, reason, now)
	if err != nil {
		d.log.Warn("fail transition failed", "job_id", id, "error", err)
		return
	}
	d.log.Warn("job failed", "job_id", id, "error", reason)
	d.bus.Publish(events.Event{Type: events.TypeJobFailed, Data: failed})
}

func (d *Dispatcher) sleep(ctx context.Context, dur time.Duration) {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
