package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	timeouts := LoadTimeouts()

	assert.Equal(t, 5*time.Minute, timeouts.Rollout)
	assert.Equal(t, 5*time.Second, timeouts.PollInterval)
	assert.Equal(t, 5, timeouts.RetryMaxAttempts)
	assert.Equal(t, time.Second, timeouts.RetryInitialDelay)
}

func TestLoadTimeouts_EnvOverrides(t *testing.T) {
	t.Setenv("ANNEAL_TIMEOUT_ROLLOUT", "12m")
	t.Setenv("ANNEAL_POLL_INTERVAL", "250ms")
	t.Setenv("ANNEAL_RETRY_MAX_ATTEMPTS", "3")
	t.Setenv("ANNEAL_RETRY_INITIAL_DELAY", "2s")

	timeouts := LoadTimeouts()

	assert.Equal(t, 12*time.Minute, timeouts.Rollout)
	assert.Equal(t, 250*time.Millisecond, timeouts.PollInterval)
	assert.Equal(t, 3, timeouts.RetryMaxAttempts)
	assert.Equal(t, 2*time.Second, timeouts.RetryInitialDelay)
}

func TestLoadTimeouts_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ANNEAL_TIMEOUT_ROLLOUT", "soon")
	t.Setenv("ANNEAL_RETRY_MAX_ATTEMPTS", "many")

	timeouts := LoadTimeouts()

	assert.Equal(t, 5*time.Minute, timeouts.Rollout)
	assert.Equal(t, 5, timeouts.RetryMaxAttempts)
}
