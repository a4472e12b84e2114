package node

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateWaitSeconds_NoNodesOnline(t *testing.T) {
	require.Equal(t, 300.0, EstimateWaitSeconds(nil, false))
}

func TestEstimateWaitSeconds_FloorsAtThirtySecondsForCPU(t *testing.T) {
	online := []*Node{{ID: "a", AverageJobTime: 2}}
	require.Equal(t, 30.0, EstimateWaitSeconds(online, false))
}

func TestEstimateWaitSeconds_UsesMeanAboveFloor(t *testing.T) {
	online := []*Node{{ID: "a", AverageJobTime: 40}, {ID: "b", AverageJobTime: 60}}
	require.Equal(t, 50.0, EstimateWaitSeconds(online, false))
}

func TestEstimateWaitSeconds_GPUPreferredFloorsAtTenSeconds(t *testing.T) {
	online := []*Node{
		{ID: "cpu", AverageJobTime: 100, GPUEnabled: false},
		{ID: "gpu", AverageJobTime: 1, GPUEnabled: true},
	}
	require.Equal(t, 10.0, EstimateWaitSeconds(online, true))
}

func TestEstimateWaitSeconds_GPUPreferredFallsBackWhenNoGPUOnline(t *testing.T) {
	online := []*Node{{ID: "cpu", AverageJobTime: 50, GPUEnabled: false}}
	require.Equal(t, 50.0, EstimateWaitSeconds(online, true))
}
