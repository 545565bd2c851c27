package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anneal-io/anneal/internal/util/async"
)

const (
	// DefaultTailLines bounds how many recent log lines a bundle carries.
	DefaultTailLines = 80

	// DefaultCollectTimeout bounds the whole collection so triage never
	// stalls an already-failed run.
	DefaultCollectTimeout = 15 * time.Second
)

// Collector gathers best-effort triage context for failed resources. The
// zero value uses the package defaults.
type Collector struct {
	TailLines int
	Timeout   time.Duration
}

// Collect assembles a diagnostic bundle for a failed resource. It never
// fails: fields the handler cannot supply stay empty, and the hint is
// derived from the failure class alone. Status and logs are fetched
// concurrently; either may be missing from the bundle.
func (c *Collector) Collect(ctx context.Context, handler Handler, spec ResourceSpec, cause error) *DiagnosticBundle {
	bundle := &DiagnosticBundle{
		ResourceKey: spec.Key,
		Hint:        hintFor(cause),
		CollectedAt: time.Now(),
	}

	diagnoser, ok := handler.(Diagnoser)
	if !ok {
		return bundle
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCollectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tail := c.TailLines
	if tail <= 0 {
		tail = DefaultTailLines
	}

	var (
		status string
		lines  []string
	)
	errs := async.Gather(ctx, []async.Task{
		{Name: "status", Func: func(ctx context.Context) error {
			s, err := diagnoser.Status(ctx, spec)
			if err != nil {
				return err
			}
			status = s
			return nil
		}},
		{Name: "logs", Func: func(ctx context.Context) error {
			l, err := diagnoser.Logs(ctx, spec, tail)
			if err != nil {
				return err
			}
			lines = l
			return nil
		}},
	})
	if errs["status"] == nil {
		bundle.StatusSnapshot = status
	}
	if errs["logs"] == nil {
		bundle.RecentLogLines = lines
	}
	return bundle
}

// hintFor maps a failure class to a first-move triage hint.
func hintFor(err error) string {
	var te *TimeoutError
	var me *MutationError
	var pe *ProbeError
	switch {
	case errors.As(err, &te):
		return "rollout did not converge in time: inspect the workload status and recent logs, then re-run to resume"
	case errors.As(err, &me):
		return fmt.Sprintf("the %s call was rejected: check permissions and quotas for the target account", me.Op)
	case errors.As(err, &pe):
		return "current state could not be read: verify credentials and endpoint reachability"
	default:
		return "inspect the error and re-run; converged resources are not touched again"
	}
}
