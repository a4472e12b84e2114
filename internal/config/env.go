// Package config reads coordinator configuration from the environment,
// the same GetEnv/GetEnvAsInt pattern used throughout the teacher codebase.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/distcluster/coordinator/internal/logger"
)

// GetEnv returns the environment variable's value, or defaultVal if unset.
func GetEnv(key, defaultVal string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	return val
}

// GetEnvAsInt parses the environment variable as an int, falling back to
// defaultVal if unset or malformed.
func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	if log != nil {
		log = log.With("env_var", key)
	}
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		if log != nil {
			log.Warn("could not parse env var as int, using default", "value", valStr, "default", defaultVal, "error", err)
		}
		return defaultVal
	}
	return i
}

// GetEnvAsBool parses the environment variable as a bool, falling back to
// defaultVal if unset or malformed.
func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	if log != nil {
		log = log.With("env_var", key)
	}
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	switch strings.ToLower(strings.TrimSpace(valStr)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		if log != nil {
			log.Warn("could not parse env var as bool, using default", "value", valStr, "default", defaultVal)
		}
		return defaultVal
	}
}

// GetEnvAsDuration parses the environment variable as seconds, returning a
// time.Duration, falling back to defaultVal if unset or malformed.
func GetEnvAsDuration(key string, defaultVal time.Duration, log *logger.Logger) time.Duration {
	secs := GetEnvAsInt(key, int(defaultVal/time.Second), log)
	return time.Duration(secs) * time.Second
}
