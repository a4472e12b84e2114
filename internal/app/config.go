package app

import (
	"time"

	"github.com/distcluster/coordinator/internal/config"
	"github.com/distcluster/coordinator/internal/logger"
)

// Config aggregates every environment-driven knob the coordinator reads at
// startup. None of it is persisted; a restart re-reads from the environment.
type Config struct {
	ClusterSize int  // CLUSTER_SIZE, advisory only
	GPUEnabled  bool // GPU_ENABLED, advisory only

	Port        string // COORDINATOR_PORT
	MetricsPort string // METRICS_PORT, reserved, unused by the core

	LogMode string // LOG_MODE: "production" or "development"

	LivenessTimeout       time.Duration // §4.4: node demoted past this heartbeat age
	LivenessSweepInterval time.Duration // §4.4: Liveness Monitor cadence

	RetentionHorizon       time.Duration // §4.6: completed-job retention window
	RetentionSweepInterval time.Duration // §4.6: Retention Sweeper cadence

	DispatchPollInterval   time.Duration // §4.2: idle poll interval
	DispatchRequeueBackoff time.Duration // §4.1: backoff after a no-capacity requeue

	WorkerRPCTimeout time.Duration // §4.2: deadline on the worker execute RPC

	RedisAddr    string // optional, enables the cross-process event forwarder
	RedisChannel string

	SeedFile string // optional YAML seed-node file, see internal/seed
}

// LoadConfig reads Config from the environment. Through the config helpers'
// own logging, a string variable that falls back to its default is logged
// at debug level and a malformed numeric, bool or duration value at warn
// level; values read successfully from the environment are not logged.
func LoadConfig(log *logger.Logger) Config {
	return Config{
		ClusterSize: config.GetEnvAsInt("CLUSTER_SIZE", 3, log),
		GPUEnabled:  config.GetEnvAsBool("GPU_ENABLED", true, log),

		Port:        config.GetEnv("COORDINATOR_PORT", "3000", log),
		MetricsPort: config.GetEnv("METRICS_PORT", "9090", log),

		LogMode: config.GetEnv("LOG_MODE", "development", log),

		LivenessTimeout:       config.GetEnvAsDuration("LIVENESS_TIMEOUT", 60*time.Second, log),
		LivenessSweepInterval: config.GetEnvAsDuration("LIVENESS_SWEEP_INTERVAL", 30*time.Second, log),

		RetentionHorizon:       config.GetEnvAsDuration("RETENTION_HORIZON", time.Hour, log),
		RetentionSweepInterval: config.GetEnvAsDuration("RETENTION_SWEEP_INTERVAL", 5*time.Minute, log),

		DispatchPollInterval:   config.GetEnvAsDuration("DISPATCH_POLL_INTERVAL", time.Second, log),
		DispatchRequeueBackoff: config.GetEnvAsDuration("DISPATCH_REQUEUE_BACKOFF", 5*time.Second, log),

		WorkerRPCTimeout: config.GetEnvAsDuration("WORKER_RPC_TIMEOUT", 300*time.Second, log),

		RedisAddr:    config.GetEnv("REDIS_ADDR", "", log),
		RedisChannel: config.GetEnv("REDIS_CHANNEL", "cluster-events", log),

		SeedFile: config.GetEnv("SEED_FILE", "", log),
	}
}
