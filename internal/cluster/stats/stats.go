// Package stats tracks the cluster-wide totals described in spec §3.
package stats

import (
	"sync"
	"time"
)

// Stats holds the running totals. All fields are read via Snapshot; writers
// go through the mutating methods so total/gpu/cpu stay consistent.
type Stats struct {
	mu sync.RWMutex

	totalCalculations int64
	gpuCalculations   int64
	cpuCalculations   int64
	startTime         time.Time
	nodesOnline       int
}

func New(now time.Time) *Stats {
	return &Stats{startTime: now}
}

// RecordCompletion attributes one completed job to the gpu/cpu split based
// on whether the executing node was gpu_enabled at completion time (spec
// §4.2, §9 — attribution note: this is keyed on current capability, not on
// what actually ran, which the spec accepts as equivalent absent runtime
// capability changes).
func (s *Stats) RecordCompletion(nodeGPUEnabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalCalculations++
	if nodeGPUEnabled {
		s.gpuCalculations++
	} else {
		s.cpuCalculations++
	}
}

// SetNodesOnline recomputes the derived nodes_online count; called after
// every node-status transition (spec §3 invariant).
func (s *Stats) SetNodesOnline(n int) {
	s.mu.Lock()
	s.nodesOnline = n
	s.mu.Unlock()
}

// Snapshot is the read-only view exposed over /api/status and /health.
type Snapshot struct {
	TotalCalculations int64     `json:"total_calculations"`
	GPUCalculations   int64     `json:"gpu_calculations"`
	CPUCalculations   int64     `json:"cpu_calculations"`
	StartTime         time.Time `json:"start_time"`
	NodesOnline       int       `json:"nodes_online"`
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		TotalCalculations: s.totalCalculations,
		GPUCalculations:   s.gpuCalculations,
		CPUCalculations:   s.cpuCalculations,
		StartTime:         s.startTime,
		NodesOnline:       s.nodesOnline,
	}
}
