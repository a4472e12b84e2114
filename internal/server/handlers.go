// Package server implements the Frontend (spec §6): the HTTP surface for
// submit/register/heartbeat/status and the observer push channel.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/distcluster/coordinator/internal/cluster/events"
	"github.com/distcluster/coordinator/internal/cluster/job"
	"github.com/distcluster/coordinator/internal/cluster/node"
	"github.com/distcluster/coordinator/internal/cluster/queue"
	"github.com/distcluster/coordinator/internal/cluster/stats"
	"github.com/distcluster/coordinator/internal/logger"
)

// Frontend wires the Queue Set, Job Store, Node Registry, Stats and Event
// Bus to gin handlers. It holds no business logic beyond request
// validation and translating into calls on those collaborators.
type Frontend struct {
	store    *job.Store
	registry *node.Registry
	queues   *queue.Set
	stats    *stats.Stats
	bus      *events.Bus
	log      *logger.Logger
}

func NewFrontend(store *job.Store, registry *node.Registry, queues *queue.Set, st *stats.Stats, bus *events.Bus, log *logger.Logger) *Frontend {
	return &Frontend{
		store:    store,
		registry: registry,
		queues:   queues,
		stats:    st,
		bus:      bus,
		log:      log.With("component", "Frontend"),
	}
}

// Register handles POST /api/register.
func (f *Frontend) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := f.registry.Register(node.Registration{
		ID:            req.NodeID,
		Address:       req.Address,
		Capabilities:  req.Capabilities,
		GPUEnabled:    req.GPUEnabled,
		WorkerThreads: req.WorkerThreads,
		NodeType:      req.NodeType,
	}, time.Now())
	f.stats.SetNodesOnline(f.registry.OnlineCount())

	f.log.Info("node registered", "node_id", n.ID, "gpu_enabled", n.GPUEnabled, "worker_threads", n.WorkerThreads)
	f.bus.Publish(events.Event{Type: events.TypeNodeRegistered, Data: n})

	c.JSON(http.StatusOK, registerResponse{Status: "registered", NodeID: n.ID})
}

// Heartbeat handles POST /api/heartbeat.
func (f *Frontend) Heartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recovered, ok := f.registry.Heartbeat(req.NodeID, req.LoadScore, time.Now())
	if !ok {
		c.JSON(http.StatusBadRequest, heartbeatResponse{Status: "unknown_node"})
		return
	}
	if recovered {
		f.stats.SetNodesOnline(f.registry.OnlineCount())
	}
	c.JSON(http.StatusOK, heartbeatResponse{Status: "acknowledged"})
}

// Submit handles POST /api/submit.
func (f *Frontend) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	priority := req.Priority
	if priority == "" {
		priority = job.PriorityNormal
	}
	if err := job.ValidateSubmission(req.Type, priority); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	j := &job.Job{
		ID:           job.NewID(now),
		Type:         req.Type,
		Priority:     priority,
		Parameters:   req.Parameters,
		GPUPreferred: req.GPUPreferred,
		SubmittedAt:  now,
		Status:       job.StatusQueued,
	}
	f.store.Submit(j)

	class := queue.ClassFor(priority == job.PriorityHigh, req.Type == job.TypeCollatz)
	f.queues.Enqueue(class, j.ID)

	wait := node.EstimateWaitSeconds(f.registry.Online(), req.GPUPreferred)
	f.log.Info("job submitted", "job_id", j.ID, "type", j.Type, "priority", j.Priority)

	c.JSON(http.StatusOK, submitResponse{JobID: j.ID, Status: "queued", EstimatedWaitTime: wait})
}

// Status handles GET /api/status.
func (f *Frontend) Status(c *gin.Context) {
	active, terminal := f.store.Counts()
	c.JSON(http.StatusOK, statusResponse{
		Nodes:         f.registry.Snapshot(),
		Stats:         f.stats.Snapshot(),
		ActiveJobs:    active,
		CompletedJobs: terminal,
		QueueSizes:    toQueueSizes(f.queues.Depths()),
	})
}

// Health handles GET /health.
func (f *Frontend) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "healthy", NodesOnline: f.stats.Snapshot().NodesOnline})
}
