package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_SubmitAssignCompleteLifecycle(t *testing.T) {
	s := NewStore()
	now := time.Now()

	j := &Job{ID: "job_1", Type: TypeCollatz, Priority: PriorityNormal, Status: StatusQueued, SubmittedAt: now}
	s.Submit(j)

	active, terminal := s.Counts()
	require.Equal(t, 1, active)
	require.Equal(t, 0, terminal)

	assigned, err := s.Assign("job_1", "node-a", now.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, StatusAssigned, assigned.Status)
	require.Equal(t, "node-a", assigned.AssignedNode)

	completed, err := s.Complete("job_1", []byte(`{"ok":true}`), now.Add(2*time.Second))
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, completed.Status)

	active, terminal = s.Counts()
	require.Equal(t, 0, active)
	require.Equal(t, 1, terminal)
}

func TestStore_FailMovesJobToTerminal(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.Submit(&Job{ID: "job_2", Type: TypeThread, Priority: PriorityLow, Status: StatusQueued, SubmittedAt: now})

	_, err := s.Assign("job_2", "node-a", now)
	require.NoError(t, err)

	failed, err := s.Fail("job_2", "worker unreachable", now.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, StatusFailed, failed.Status)
	require.Equal(t, "worker unreachable", failed.Error)

	active, terminal := s.Counts()
	require.Equal(t, 0, active, "a failed job must not linger in the active map")
	require.Equal(t, 1, terminal)
}

func TestStore_EvictTerminalBefore(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.Submit(&Job{ID: "job_3", Status: StatusQueued, SubmittedAt: now})
	_, err := s.Assign("job_3", "node-a", now)
	require.NoError(t, err)
	_, err = s.Complete("job_3", nil, now.Add(time.Hour))
	require.NoError(t, err)

	evicted := s.EvictTerminalBefore(now.Add(30 * time.Minute))
	require.Equal(t, 0, evicted, "job completed after the cutoff must survive")

	evicted = s.EvictTerminalBefore(now.Add(2 * time.Hour))
	require.Equal(t, 1, evicted)

	_, terminal := s.Counts()
	require.Equal(t, 0, terminal)
}

func TestStore_GetUnknownJob(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("missing")
	require.False(t, ok)
}

func TestValidateSubmission(t *testing.T) {
	require.NoError(t, ValidateSubmission(TypeThread, PriorityHigh))
	require.NoError(t, ValidateSubmission(TypeCollatz, ""))
	require.Error(t, ValidateSubmission("bogus", PriorityNormal))
	require.Error(t, ValidateSubmission(TypeThread, "urgent"))
}
