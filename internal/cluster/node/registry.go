package node

import (
	"sort"
	"sync"
	"time"
)

// Registration is the payload a worker presents on /api/register or
// implicitly re-presents via heartbeat identity.
type Registration struct {
	ID            string
	Address       string
	Capabilities  []string
	GPUEnabled    bool
	WorkerThreads int
	NodeType      string
}

// Registry holds one record per known node and owns the online/offline
// state machine (spec §4.4). A prior record for the same id is replaced in
// full on re-registration, which is idempotent on identity.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*Node)}
}

// Register creates (or overwrites) a node record and marks it online.
func (r *Registry) Register(reg Registration, now time.Time) *Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := &Node{
		ID:            reg.ID,
		Address:       reg.Address,
		Capabilities:  append([]string(nil), reg.Capabilities...),
		GPUEnabled:    reg.GPUEnabled,
		WorkerThreads: reg.WorkerThreads,
		NodeType:      reg.NodeType,
		Status:        StatusOnline,
		LastHeartbeat: now,
	}
	r.nodes[reg.ID] = n
	return n.Clone()
}

// Heartbeat refreshes last_heartbeat and overwrites load_score for a known
// node, re-promoting it to online if it had been demoted (spec §4.4: "No
// special logging" — confirmed intentional, see DESIGN.md). Returns false
// if the node id is unknown, in which case the caller must reject the
// request without any state change (spec §6/§7).
func (r *Registry) Heartbeat(id string, loadScore float64, now time.Time) (recovered bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, exists := r.nodes[id]
	if !exists {
		return false, false
	}
	recovered = n.Status == StatusOffline
	n.Status = StatusOnline
	n.LastHeartbeat = now
	n.LoadScore = loadScore
	return recovered, true
}

// Get returns a clone of the node record, if known.
func (r *Registry) Get(id string) (*Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// RecordJobOutcome updates a node's completion counters after a successful
// execution. No-op (returns false) if the node was removed in the interim
// — the spec places no floor on node lifetime, only on record identity.
func (r *Registry) RecordJobOutcome(id string, execSeconds float64) (gpuEnabled bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, exists := r.nodes[id]
	if !exists {
		return false, false
	}
	n.RecordCompletion(execSeconds)
	return n.GPUEnabled, true
}

// Online returns clones of every node currently online.
func (r *Registry) Online() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		if n.Status == StatusOnline {
			out = append(out, n.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OnlineCount returns the number of nodes currently online, used to derive
// stats.nodes_online (spec §3).
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, node := range r.nodes {
		if node.Status == StatusOnline {
			n++
		}
	}
	return n
}

// Snapshot returns clones of every known node, keyed by id.
func (r *Registry) Snapshot() map[string]*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Node, len(r.nodes))
	for id, n := range r.nodes {
		out[id] = n.Clone()
	}
	return out
}

// DemoteStale transitions every online node whose last heartbeat is older
// than timeout (as of now) to offline, returning the ids demoted. This is
// the Liveness Monitor's only write path (spec §4.4).
func (r *Registry) DemoteStale(timeout time.Duration, now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var demoted []string
	for id, n := range r.nodes {
		if n.Status == StatusOnline && now.Sub(n.LastHeartbeat) > timeout {
			n.Status = StatusOffline
			demoted = append(demoted, id)
		}
	}
	return demoted
}
