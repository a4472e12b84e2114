package job

import (
	"fmt"
	"sync"
	"time"
)

// Store is the authoritative mapping from job id to job record: an active
// map and a bounded-by-retention terminal map, with disjoint keyspaces
// (spec §3 "Ownership"). Failed jobs are moved into the terminal map
// alongside completed ones — see DESIGN.md for why this departs from the
// original's "failed jobs never leave the active map" behavior, which spec
// §9 flags as a likely bug.
type Store struct {
	mu       sync.RWMutex
	active   map[string]*Job
	terminal map[string]*Job
}

func NewStore() *Store {
	return &Store{
		active:   make(map[string]*Job),
		terminal: make(map[string]*Job),
	}
}

// Submit inserts a brand-new queued job into the active map.
func (s *Store) Submit(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[j.ID] = j
}

// Assign transitions a queued job to assigned, recording the node and
// assigned_at. Returns a clone of the updated record, or an error if the
// job is not active or not currently queued.
func (s *Store) Assign(id, nodeID string, now time.Time) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.active[id]
	if !ok {
		return nil, fmt.Errorf("job %s not active", id)
	}
	if j.Status != StatusQueued {
		return nil, fmt.Errorf("job %s not queued (status=%s)", id, j.Status)
	}
	j.Status = StatusAssigned
	j.AssignedNode = nodeID
	j.AssignedAt = now
	return j.Clone(), nil
}

// Complete moves an assigned job into the terminal map as completed,
// computing execution_time from assigned_at. Returns the final record.
func (s *Store) Complete(id string, result []byte, now time.Time) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.active[id]
	if !ok {
		return nil, fmt.Errorf("job %s not active", id)
	}
	j.Status = StatusCompleted
	j.CompletedAt = now
	j.ExecutionTime = now.Sub(j.AssignedAt)
	j.Result = result
	delete(s.active, id)
	s.terminal[id] = j
	return j.Clone(), nil
}

// Fail moves an assigned (or queued, in the dispatch-failure case) job into
// the terminal map as failed, recording a human-readable error.
func (s *Store) Fail(id, errMsg string, now time.Time) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.active[id]
	if !ok {
		return nil, fmt.Errorf("job %s not active", id)
	}
	j.Status = StatusFailed
	j.FailedAt = now
	j.Error = errMsg
	delete(s.active, id)
	s.terminal[id] = j
	return j.Clone(), nil
}

// Get returns a clone of the job record, active or terminal.
func (s *Store) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.active[id]
	if !ok {
		j, ok = s.terminal[id]
	}
	if !ok {
		return nil, false
	}
	return j.Clone(), true
}

// Counts returns the number of active and terminal (completed+failed) jobs.
func (s *Store) Counts() (active, terminal int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active), len(s.terminal)
}

// Snapshot returns clones of every job currently known, active first.
func (s *Store) Snapshot() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Job, 0, len(s.active)+len(s.terminal))
	for _, j := range s.active {
		out = append(out, j.Clone())
	}
	for _, j := range s.terminal {
		out = append(out, j.Clone())
	}
	return out
}

// EvictTerminalBefore removes terminal records (completed or failed) whose
// terminal timestamp is older than cutoff. Implements the Retention Sweeper
// (spec §4.6), generalized to cover failed jobs per the §9 open question.
func (s *Store) EvictTerminalBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, j := range s.terminal {
		ts := j.CompletedAt
		if j.Status == StatusFailed {
			ts = j.FailedAt
		}
		if ts.Before(cutoff) {
			delete(s.terminal, id)
			evicted++
		}
	}
	return evicted
}
