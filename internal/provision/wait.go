package provision

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

const (
	// DefaultPollInterval is the gap between rollout observations.
	DefaultPollInterval = 5 * time.Second

	// DefaultRolloutTimeout bounds a rollout wait when neither the spec nor
	// the run options set a budget.
	DefaultRolloutTimeout = 5 * time.Minute
)

// Waiter polls rollout handles to convergence within their budgets. The
// zero value polls every DefaultPollInterval.
type Waiter struct {
	// Interval between polls. Zero means DefaultPollInterval. Tests shrink
	// this to keep timeout paths fast.
	Interval time.Duration
}

// Await polls handle.Poll until it reports done, the budget expires, or the
// run is interrupted. Poll errors are transient: the error text becomes the
// last-known status and polling continues until the budget runs out. On
// expiry the returned TimeoutError carries that status for triage.
func (w *Waiter) Await(ctx context.Context, handle *RolloutHandle) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	budget := handle.TimeoutBudget
	if budget <= 0 {
		budget = DefaultRolloutTimeout
	}

	var lastStatus string
	err := wait.PollUntilContextTimeout(ctx, interval, budget, true, func(ctx context.Context) (bool, error) {
		done, status, err := handle.Poll(ctx)
		if err != nil {
			lastStatus = fmt.Sprintf("poll error: %v", err)
			return false, nil
		}
		if status != "" {
			lastStatus = status
		}
		return done, nil
	})
	if err == nil {
		return nil
	}

	// The parent being interrupted is a cancellation, not a timeout.
	if ctx.Err() != nil {
		return fmt.Errorf("waiting for %s: %w", handle.ResourceKey, ErrCancelled)
	}

	return &TimeoutError{
		Key:        handle.ResourceKey,
		Budget:     budget,
		LastStatus: lastStatus,
	}
}
