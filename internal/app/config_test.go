package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/distcluster/coordinator/internal/logger"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(logger.Noop())
	require.Equal(t, 3, cfg.ClusterSize)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, 60*time.Second, cfg.LivenessTimeout)
	require.Equal(t, time.Hour, cfg.RetentionHorizon)
	require.Equal(t, "", cfg.RedisAddr)
}

func TestLoadConfig_ReadsFromEnvironment(t *testing.T) {
	t.Setenv("COORDINATOR_PORT", "4000")
	t.Setenv("CLUSTER_SIZE", "8")
	t.Setenv("LIVENESS_TIMEOUT", "10")

	cfg := LoadConfig(logger.Noop())
	require.Equal(t, "4000", cfg.Port)
	require.Equal(t, 8, cfg.ClusterSize)
	require.Equal(t, 10*time.Second, cfg.LivenessTimeout)
}

func TestLoadConfig_MalformedIntFallsBackToDefault(t *testing.T) {
	t.Setenv("CLUSTER_SIZE", "not-a-number")
	cfg := LoadConfig(logger.Noop())
	require.Equal(t, 3, cfg.ClusterSize)
}
