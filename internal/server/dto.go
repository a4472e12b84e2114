package server

import (
	"encoding/json"

	"github.com/distcluster/coordinator/internal/cluster/job"
	"github.com/distcluster/coordinator/internal/cluster/node"
	"github.com/distcluster/coordinator/internal/cluster/queue"
	"github.com/distcluster/coordinator/internal/cluster/stats"
)

// registerRequest is the POST /api/register body (spec §6).
type registerRequest struct {
	NodeID        string   `json:"node_id" binding:"required"`
	Address       string   `json:"address" binding:"required"`
	Capabilities  []string `json:"capabilities"`
	GPUEnabled    bool     `json:"gpu_enabled"`
	WorkerThreads int      `json:"worker_threads"`
	NodeType      string   `json:"node_type"`
}

type registerResponse struct {
	Status string `json:"status"`
	NodeID string `json:"node_id"`
}

// heartbeatRequest is the POST /api/heartbeat body. Extra worker-reported
// fields beyond load_score are accepted and ignored (spec §6: "…").
type heartbeatRequest struct {
	NodeID    string  `json:"node_id" binding:"required"`
	LoadScore float64 `json:"load_score"`
}

type heartbeatResponse struct {
	Status string `json:"status"`
}

// submitRequest is the POST /api/submit body.
type submitRequest struct {
	Type         job.Type        `json:"type" binding:"required"`
	Priority     job.Priority    `json:"priority"`
	Parameters   json.RawMessage `json:"parameters"`
	GPUPreferred bool            `json:"gpu_preferred"`
}

type submitResponse struct {
	JobID             string  `json:"job_id"`
	Status            string  `json:"status"`
	EstimatedWaitTime float64 `json:"estimated_wait_time"`
}

// statusResponse is the GET /api/status body.
type statusResponse struct {
	Nodes         map[string]*node.Node `json:"nodes"`
	Stats         stats.Snapshot        `json:"stats"`
	ActiveJobs    int                   `json:"active_jobs"`
	CompletedJobs int                   `json:"completed_jobs"`
	QueueSizes    queueSizes            `json:"queue_sizes"`
}

type queueSizes struct {
	Priority int `json:"priority"`
	Collatz  int `json:"collatz"`
	Thread   int `json:"thread"`
}

func toQueueSizes(d queue.Depths) queueSizes {
	return queueSizes{Priority: d.Priority, Collatz: d.Collatz, Thread: d.Thread}
}

// healthResponse is the GET /health body.
type healthResponse struct {
	Status      string `json:"status"`
	NodesOnline int    `json:"nodes_online"`
}

// initialStatusPayload is the data carried by the first event a /ws
// subscriber receives (spec §4.5).
type initialStatusPayload struct {
	Nodes map[string]*node.Node `json:"nodes"`
	Stats stats.Snapshot        `json:"stats"`
}
