package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many independent resources reconcile at
// once within a level.
const DefaultConcurrency = 4

// Phase names used in events.
const (
	phasePlan      = "plan"
	phaseReconcile = "reconcile"
	phaseWait      = "wait"
	phaseDiagnose  = "diagnose"
)

// Options tune a run. The zero value is usable.
type Options struct {
	// Concurrency bounds parallel reconciliations within a level. Zero
	// means DefaultConcurrency.
	Concurrency int

	// FailurePolicy is the run-level default for specs that do not set
	// their own. Left as FailurePolicyDefault, the policy follows the
	// graph: fatal for resources with dependents, best-effort for leaves.
	FailurePolicy FailurePolicy

	// RolloutTimeout bounds rollout waits for specs without their own
	// budget. Zero means DefaultRolloutTimeout.
	RolloutTimeout time.Duration

	// ForceReinstall tears down owned resources before recreating them,
	// for kinds that support teardown.
	ForceReinstall bool

	// RetryMaxAttempts and RetryInitialDelay tune probe retries. Zero
	// values keep the retry package defaults.
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration

	// PollInterval overrides the rollout poll cadence.
	PollInterval time.Duration

	// TailLines bounds diagnostic log collection.
	TailLines int

	// EnableMetrics turns on Prometheus recording.
	EnableMetrics bool
}

// Engine reconciles resource specs through registered handlers, honoring
// dependency order, failure policy, and rollout budgets.
type Engine struct {
	registry  *Registry
	observer  Observer
	waiter    *Waiter
	collector *Collector
	opts      Options
}

// NewEngine assembles an engine. A nil observer discards all output.
func NewEngine(registry *Registry, observer Observer, opts Options) *Engine {
	if observer == nil {
		observer = NewNopObserver()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.RolloutTimeout <= 0 {
		opts.RolloutTimeout = DefaultRolloutTimeout
	}
	return &Engine{
		registry:  registry,
		observer:  observer,
		waiter:    &Waiter{Interval: opts.PollInterval},
		collector: &Collector{TailLines: opts.TailLines},
		opts:      opts,
	}
}

// Run reconciles every spec in dependency order and returns the complete
// report: one outcome per planned resource, attempted or not. The returned
// error is non-nil only for configuration problems that prevent the run
// from starting; per-resource failures land in the report.
func (e *Engine) Run(ctx context.Context, specs []ResourceSpec) (*Report, error) {
	plan, err := e.plan(specs)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome, plan.Size()),
	}

	e.observer.Event(Event{
		Type:    EventRunStarted,
		Phase:   phasePlan,
		Message: fmt.Sprintf("run %s: %d resources in %d levels", report.RunID, plan.Size(), len(plan.Levels)),
	})

	var (
		mu          sync.Mutex
		abortReason string
	)
	setAbort := func(reason string) {
		mu.Lock()
		if abortReason == "" {
			abortReason = reason
		}
		mu.Unlock()
	}

	done := 0
	for _, level := range plan.Levels {
		mu.Lock()
		stop := abortReason
		mu.Unlock()

		if stop != "" {
			for _, spec := range level {
				pos, _ := plan.Position(spec.Key)
				report.Outcomes[pos] = Outcome{
					Key:    spec.Key,
					Kind:   spec.Kind,
					Status: StatusSkipped,
					Reason: "not attempted: " + stop,
				}
			}
			done += len(level)
			continue
		}

		// A fatal failure never interrupts its siblings: the whole level
		// finishes before the abort takes effect.
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(e.opts.Concurrency)

		for _, spec := range level {
			group.Go(func() error {
				pos, _ := plan.Position(spec.Key)

				if reason := e.gate(plan, report, spec); reason != "" {
					report.Outcomes[pos] = Outcome{
						Key:    spec.Key,
						Kind:   spec.Kind,
						Status: StatusSkipped,
						Reason: reason,
					}
					e.observer.Event(Event{
						Type:     EventResourceSkipped,
						Phase:    phaseReconcile,
						Resource: spec.Key,
						Message:  reason,
					})
					return nil
				}

				outcome := e.reconcileOne(groupCtx, spec)
				report.Outcomes[pos] = outcome

				if outcome.Status == StatusFailed && e.policyFor(plan, spec) == FailurePolicyFatal {
					setAbort(fmt.Sprintf("run aborted after %s failed", spec.Key))
				}
				return nil
			})
		}
		_ = group.Wait()

		if ctx.Err() != nil {
			setAbort("run cancelled")
		}

		done += len(level)
		e.observer.Progress(phaseReconcile, done, plan.Size())
	}

	report.FinishedAt = time.Now()
	report.Status = summarize(report.Outcomes, abortReason != "")
	e.recordRun(report.Status)

	eventType := EventRunCompleted
	if report.Status != RunSuccess {
		eventType = EventRunFailed
	}
	e.observer.Event(Event{
		Type:    eventType,
		Phase:   phaseReconcile,
		Message: fmt.Sprintf("run %s finished: %s in %s", report.RunID, report.Status, report.Duration().Round(time.Millisecond)),
	})

	return report, nil
}

// PlannedAction is one row of a dry run: the action Run would take for a
// resource, derived from a read-only probe.
type PlannedAction struct {
	Key    string
	Kind   Kind
	Action Decision
	Detail string // drifted attribute names or a skip reason
	Err    error  // probe failure; the action is then unknown
}

// Plan probes every resource without mutating anything and reports the
// action a run would take, in plan order. Probe failures are recorded per
// resource rather than aborting the dry run.
func (e *Engine) Plan(ctx context.Context, specs []ResourceSpec) ([]PlannedAction, error) {
	plan, err := e.plan(specs)
	if err != nil {
		return nil, err
	}

	actions := make([]PlannedAction, plan.Size())
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.opts.Concurrency)

	for i, spec := range plan.Order {
		group.Go(func() error {
			action := PlannedAction{Key: spec.Key, Kind: spec.Kind}
			defer func() { actions[i] = action }()

			handler, err := e.registry.Handler(spec.Kind)
			if err != nil {
				action.Err = err
				return nil
			}

			observed, err := e.probe(groupCtx, handler, spec)
			if err != nil {
				var se *SkipError
				if errors.As(err, &se) {
					action.Action = DecisionSkip
					action.Detail = se.Reason
					return nil
				}
				action.Err = NewProbeError(spec.Key, err)
				return nil
			}

			action.Action = Decide(spec, observed, handler.Mutable())
			if action.Action == DecisionUpdate || action.Action == DecisionSkipImmutable {
				action.Detail = strings.Join(driftedAttributes(spec.Attributes, observed.Attributes), ",")
			}
			return nil
		})
	}
	_ = group.Wait()

	return actions, nil
}

// plan validates every kind against the registry, then sequences the specs.
func (e *Engine) plan(specs []ResourceSpec) (*Plan, error) {
	for _, spec := range specs {
		if _, err := e.registry.Handler(spec.Kind); err != nil {
			return nil, err
		}
	}
	return Sequence(specs)
}

// gate returns a skip reason when any dependency of spec did not converge.
// Gated resources are never probed.
func (e *Engine) gate(plan *Plan, report *Report, spec ResourceSpec) string {
	for _, dep := range spec.DependsOn {
		pos, ok := plan.Position(dep)
		if !ok {
			continue
		}
		outcome := report.Outcomes[pos]
		if outcome.Converged() {
			continue
		}
		if outcome.Status == StatusFailed {
			return fmt.Sprintf("dependency %s failed", dep)
		}
		return fmt.Sprintf("dependency %s skipped", dep)
	}
	return ""
}

// policyFor resolves the failure policy of one spec: its own override
// first, then the run default, then the graph shape.
func (e *Engine) policyFor(plan *Plan, spec ResourceSpec) FailurePolicy {
	if spec.FailurePolicy != FailurePolicyDefault {
		return spec.FailurePolicy
	}
	if e.opts.FailurePolicy != FailurePolicyDefault {
		return e.opts.FailurePolicy
	}
	if plan.HasDependents(spec.Key) {
		return FailurePolicyFatal
	}
	return FailurePolicyBestEffort
}
