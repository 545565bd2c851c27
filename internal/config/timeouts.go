package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the operational tuning loaded from the environment.
type Timeouts struct {
	Rollout           time.Duration // budget for one rollout wait
	PollInterval      time.Duration // gap between rollout observations
	RetryMaxAttempts  int           // probe retry attempts
	RetryInitialDelay time.Duration // first retry backoff
}

// LoadTimeouts loads timeout configuration from environment variables.
// Unset or unparseable variables fall back to the default.
//
// Environment variables:
//   - ANNEAL_TIMEOUT_ROLLOUT (default: 5m)
//   - ANNEAL_POLL_INTERVAL (default: 5s)
//   - ANNEAL_RETRY_MAX_ATTEMPTS (default: 5)
//   - ANNEAL_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Rollout:           parseDuration("ANNEAL_TIMEOUT_ROLLOUT", 5*time.Minute),
		PollInterval:      parseDuration("ANNEAL_POLL_INTERVAL", 5*time.Second),
		RetryMaxAttempts:  parseInt("ANNEAL_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("ANNEAL_RETRY_INITIAL_DELAY", time.Second),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
