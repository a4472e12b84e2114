// Package job holds the Job record, its lifecycle, and the JobStore that is
// the authoritative mapping from job id to job record (spec §3, §4.1-4.2).
package job

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type is the computation kind requested by the client.
type Type string

const (
	TypeThread  Type = "thread"
	TypeCollatz Type = "collatz"
)

// Priority selects which of the three queues a job lands in (spec §4.1).
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Status is the job's position in the queued -> assigned -> {completed |
// failed} lifecycle. Once terminal, a Job is immutable except for eviction.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is the coordinator's record for one submitted unit of work. Parameters
// and Result are opaque structured documents: the coordinator never parses
// them, only forwards them verbatim (spec §9 "Dynamic payloads").
type Job struct {
	ID           string          `json:"id"`
	Type         Type            `json:"type"`
	Priority     Priority        `json:"priority"`
	Parameters   json.RawMessage `json:"parameters,omitempty"`
	GPUPreferred bool            `json:"gpu_preferred"`
	SubmittedAt  time.Time       `json:"submitted_at"`

	Status        Status          `json:"status"`
	AssignedNode  string          `json:"assigned_node,omitempty"`
	AssignedAt    time.Time       `json:"assigned_at,omitzero"`
	CompletedAt   time.Time       `json:"completed_at,omitzero"`
	FailedAt      time.Time       `json:"failed_at,omitzero"`
	ExecutionTime time.Duration   `json:"execution_time,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// Clone returns a deep-enough copy safe to hand to a caller outside the
// store's lock (RawMessage slices are treated as immutable once set).
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	return &cp
}

// ValidateSubmission checks the fields a client controls at submission time.
func ValidateSubmission(t Type, p Priority) error {
	switch t {
	case TypeThread, TypeCollatz:
	default:
		return fmt.Errorf("invalid job type %q", t)
	}
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, "":
	default:
		return fmt.Errorf("invalid priority %q", p)
	}
	return nil
}
