package node

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, rfc3339 string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, rfc3339)
	require.NoError(t, err)
	return tm
}

func TestNode_RecordCompletion_RunningMean(t *testing.T) {
	n := &Node{}
	n.RecordCompletion(10)
	require.Equal(t, 1, n.JobsCompleted)
	require.InDelta(t, 10.0, n.AverageJobTime, 0.0001)

	n.RecordCompletion(20)
	require.Equal(t, 2, n.JobsCompleted)
	require.InDelta(t, 15.0, n.AverageJobTime, 0.0001)

	n.RecordCompletion(30)
	require.InDelta(t, 20.0, n.AverageJobTime, 0.0001)
}

func TestNode_Clone_IsIndependentOfCapabilities(t *testing.T) {
	n := &Node{ID: "a", Capabilities: []string{"gpu_acceleration"}}
	cp := n.Clone()
	cp.Capabilities[0] = "mutated"
	require.Equal(t, "gpu_acceleration", n.Capabilities[0])
}

func TestSelect_PrefersLowestLoadScore(t *testing.T) {
	candidates := []*Node{
		{ID: "b", LoadScore: 0.5},
		{ID: "a", LoadScore: 0.1},
		{ID: "c", LoadScore: 0.9},
	}
	got := Select(candidates, false)
	require.Equal(t, "a", got.ID)
}

func TestSelect_TieBreaksOnID(t *testing.T) {
	candidates := []*Node{
		{ID: "z", LoadScore: 0.5},
		{ID: "a", LoadScore: 0.5},
	}
	got := Select(candidates, false)
	require.Equal(t, "a", got.ID)
}

func TestSelect_NarrowsToGPUWhenPreferredAndAvailable(t *testing.T) {
	candidates := []*Node{
		{ID: "cpu-low", LoadScore: 0.0, GPUEnabled: false},
		{ID: "gpu-high", LoadScore: 0.8, GPUEnabled: true},
	}
	got := Select(candidates, true)
	require.Equal(t, "gpu-high", got.ID, "GPU preference must narrow the pool even if a CPU node has a lower score")
}

func TestSelect_FallsBackToCPUWhenNoGPUNodeExists(t *testing.T) {
	candidates := []*Node{
		{ID: "cpu-only", LoadScore: 0.3, GPUEnabled: false},
	}
	got := Select(candidates, true)
	require.Equal(t, "cpu-only", got.ID)
}

func TestSelect_EmptyCandidates(t *testing.T) {
	require.Nil(t, Select(nil, false))
}

func TestRegistry_RegisterHeartbeatDemote(t *testing.T) {
	r := NewRegistry()
	now := mustTime(t, "2026-01-01T00:00:00Z")

	r.Register(Registration{ID: "n1", GPUEnabled: true}, now)
	require.Equal(t, 1, r.OnlineCount())

	recovered, ok := r.Heartbeat("n1", 0.2, now.Add(time.Second))
	require.True(t, ok)
	require.False(t, recovered)

	demoted := r.DemoteStale(5*time.Second, now.Add(10*time.Second))
	require.Equal(t, []string{"n1"}, demoted)
	require.Equal(t, 0, r.OnlineCount())

	recovered, ok = r.Heartbeat("n1", 0.1, now.Add(20*time.Second))
	require.True(t, ok)
	require.True(t, recovered, "a heartbeat from an offline node must silently re-promote it")
	require.Equal(t, 1, r.OnlineCount())
}

func TestRegistry_HeartbeatUnknownNode(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Heartbeat("ghost", 0, mustTime(t, "2026-01-01T00:00:00Z"))
	require.False(t, ok)
}
