package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/distcluster/coordinator/internal/cluster/job"
	"github.com/distcluster/coordinator/internal/logger"
)

func TestSweeper_SweepOnce_EvictsOldTerminalJobs(t *testing.T) {
	store := job.NewStore()
	now := time.Now()
	store.Submit(&job.Job{ID: "old", Status: job.StatusQueued, SubmittedAt: now.Add(-2 * time.Hour)})
	_, err := store.Assign("old", "node-a", now.Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = store.Complete("old", nil, now.Add(-2*time.Hour))
	require.NoError(t, err)

	s := New(store, logger.Noop(), time.Hour, time.Minute)
	s.sweepOnce()

	_, terminal := store.Counts()
	require.Equal(t, 0, terminal)
}

func TestSweeper_SweepOnce_KeepsRecentTerminalJobs(t *testing.T) {
	store := job.NewStore()
	now := time.Now()
	store.Submit(&job.Job{ID: "recent", Status: job.StatusQueued, SubmittedAt: now})
	_, err := store.Assign("recent", "node-a", now)
	require.NoError(t, err)
	_, err = store.Complete("recent", nil, now)
	require.NoError(t, err)

	s := New(store, logger.Noop(), time.Hour, time.Minute)
	s.sweepOnce()

	_, terminal := store.Counts()
	require.Equal(t, 1, terminal)
}
