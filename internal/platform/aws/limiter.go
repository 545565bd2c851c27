package aws

import (
	"golang.org/x/time/rate"
)

const (
	defaultRateLimitRPS = 20
	minRateLimitRPS     = 1
	maxRateLimitRPS     = 100
)

// newLimiter builds the shared API limiter. Values outside the valid range
// fall back to the default so a typo in configuration cannot disable
// throttling or stall the run.
func newLimiter(rps int) *rate.Limiter {
	if rps < minRateLimitRPS || rps > maxRateLimitRPS {
		rps = defaultRateLimitRPS
	}
	return rate.NewLimiter(rate.Limit(rps), rps)
}
