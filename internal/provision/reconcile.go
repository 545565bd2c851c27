package provision

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anneal-io/anneal/internal/util/retry"
)

// Decision is the action the decision table selects for one resource.
type Decision string

const (
	// DecisionCreate means the resource is absent and must be created.
	DecisionCreate Decision = "create"
	// DecisionAlreadySatisfied means the observation matches the spec.
	DecisionAlreadySatisfied Decision = "already-satisfied"
	// DecisionUpdate means the resource drifted and its kind converges in
	// place.
	DecisionUpdate Decision = "update"
	// DecisionSkipImmutable means the resource drifted but its kind cannot
	// be changed in place; it is left alone.
	DecisionSkipImmutable Decision = "skip-immutable"
	// DecisionSkip means an environmental precondition is missing and the
	// resource would be left alone. Only dry-run planning produces it.
	DecisionSkip Decision = "skip"
)

// Decide maps one observation onto the action to take. The table is total:
// absent resources are created, matching ones are left alone, drifted ones
// are updated when the kind allows it and skipped when it does not.
func Decide(spec ResourceSpec, observed ObservedState, mutable bool) Decision {
	switch {
	case !observed.Present:
		return DecisionCreate
	case attributesMatch(spec.Attributes, observed.Attributes):
		return DecisionAlreadySatisfied
	case mutable:
		return DecisionUpdate
	default:
		return DecisionSkipImmutable
	}
}

// attributesMatch reports whether every desired attribute appears in the
// observation with an equal value. Observed attributes outside the desired
// set are ignored: the spec owns only what it names.
func attributesMatch(desired, observed map[string]string) bool {
	for k, want := range desired {
		if observed[k] != want {
			return false
		}
	}
	return true
}

// driftedAttributes lists the desired attribute names whose observed values
// differ, in lexical order.
func driftedAttributes(desired, observed map[string]string) []string {
	var drifted []string
	for k, want := range desired {
		if observed[k] != want {
			drifted = append(drifted, k)
		}
	}
	sort.Strings(drifted)
	return drifted
}

// reconcileOne drives a single resource through probe, decide, mutate, and
// rollout wait. It always returns a terminal outcome; every error lands in
// the outcome rather than aborting the caller.
func (e *Engine) reconcileOne(ctx context.Context, spec ResourceSpec) (outcome Outcome) {
	start := time.Now()
	defer func() {
		outcome.Duration = time.Since(start)
		e.recordOutcome(spec.Kind, outcome.Status, outcome.Duration)
	}()

	outcome = Outcome{Key: spec.Key, Kind: spec.Kind}

	handler, err := e.registry.Handler(spec.Kind)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	e.observer.Event(Event{
		Type:     EventResourceProbing,
		Phase:    phaseReconcile,
		Resource: spec.Key,
		Message:  fmt.Sprintf("probing %s", spec.Kind),
	})

	observed, err := e.probe(ctx, handler, spec)
	if err != nil {
		return e.fail(ctx, handler, spec, outcome, NewProbeError(spec.Key, err))
	}

	if e.opts.ForceReinstall && observed.Present {
		if destroyer, ok := handler.(Destroyer); ok {
			e.observer.Event(Event{
				Type:     EventResourceDeleting,
				Phase:    phaseReconcile,
				Resource: spec.Key,
				Message:  fmt.Sprintf("removing %s before reinstall", spec.Kind),
			})
			if err := destroyer.Delete(ctx, spec, observed); err != nil {
				return e.fail(ctx, handler, spec, outcome, NewMutationError(spec.Key, "delete", err))
			}
			e.observer.Event(Event{
				Type:     EventResourceDeleted,
				Phase:    phaseReconcile,
				Resource: spec.Key,
				Message:  "removed",
			})
			observed = ObservedState{FetchedAt: time.Now()}
		}
	}

	switch Decide(spec, observed, handler.Mutable()) {
	case DecisionAlreadySatisfied:
		outcome.Status = StatusAlreadySatisfied
		e.observer.Event(Event{
			Type:     EventResourceSatisfied,
			Phase:    phaseReconcile,
			Resource: spec.Key,
			Message:  fmt.Sprintf("%s already satisfied", spec.Kind),
		})
		return outcome

	case DecisionSkipImmutable:
		drifted := driftedAttributes(spec.Attributes, observed.Attributes)
		outcome.Status = StatusSkipped
		outcome.Reason = fmt.Sprintf("immutable %s drifted (%s): manual replacement required",
			spec.Kind, strings.Join(drifted, ", "))
		e.observer.Event(Event{
			Type:     EventResourceSkipped,
			Phase:    phaseReconcile,
			Resource: spec.Key,
			Message:  outcome.Reason,
		})
		return outcome

	case DecisionUpdate:
		drifted := driftedAttributes(spec.Attributes, observed.Attributes)
		e.observer.Event(Event{
			Type:     EventResourceUpdating,
			Phase:    phaseReconcile,
			Resource: spec.Key,
			Message:  fmt.Sprintf("converging %s", spec.Kind),
			Fields:   map[string]string{"drifted": strings.Join(drifted, ",")},
		})
		handle, err := handler.Update(ctx, spec, observed)
		if err != nil {
			return e.fail(ctx, handler, spec, outcome, NewMutationError(spec.Key, "update", err))
		}
		if err := e.await(ctx, spec, handle); err != nil {
			return e.fail(ctx, handler, spec, outcome, err)
		}
		outcome.Status = StatusCreated
		e.observer.Event(Event{
			Type:     EventResourceCreated,
			Phase:    phaseReconcile,
			Resource: spec.Key,
			Message:  fmt.Sprintf("%s converged", spec.Kind),
		})
		return outcome

	default: // DecisionCreate
		e.observer.Event(Event{
			Type:     EventResourceCreating,
			Phase:    phaseReconcile,
			Resource: spec.Key,
			Message:  fmt.Sprintf("creating %s", spec.Kind),
		})
		handle, err := handler.Create(ctx, spec)
		if err != nil {
			return e.fail(ctx, handler, spec, outcome, NewMutationError(spec.Key, "create", err))
		}
		if err := e.await(ctx, spec, handle); err != nil {
			return e.fail(ctx, handler, spec, outcome, err)
		}
		outcome.Status = StatusCreated
		e.observer.Event(Event{
			Type:     EventResourceCreated,
			Phase:    phaseReconcile,
			Resource: spec.Key,
			Message:  fmt.Sprintf("%s created", spec.Kind),
		})
		return outcome
	}
}

// probe reads the current state with exponential backoff. Transport errors
// are retried; configuration errors, skips, and cancellation are not.
func (e *Engine) probe(ctx context.Context, handler Handler, spec ResourceSpec) (ObservedState, error) {
	var observed ObservedState
	err := retry.WithExponentialBackoff(ctx, func() error {
		var err error
		observed, err = handler.Probe(ctx, spec)
		if err == nil {
			return nil
		}
		var se *SkipError
		if IsConfiguration(err) || IsCancelled(err) || errors.As(err, &se) {
			return retry.Fatal(err)
		}
		return err
	}, e.retryOptions(spec.Key)...)
	return observed, err
}

// await polls a rollout handle to convergence. A nil handle means the
// mutation took effect synchronously.
func (e *Engine) await(ctx context.Context, spec ResourceSpec, handle *RolloutHandle) error {
	if handle == nil || handle.Poll == nil {
		return nil
	}
	if handle.ResourceKey == "" {
		handle.ResourceKey = spec.Key
	}
	if handle.TimeoutBudget == 0 {
		handle.TimeoutBudget = spec.Timeout
		if handle.TimeoutBudget == 0 {
			handle.TimeoutBudget = e.opts.RolloutTimeout
		}
	}

	e.observer.Event(Event{
		Type:     EventRolloutWaiting,
		Phase:    phaseWait,
		Resource: spec.Key,
		Message:  fmt.Sprintf("waiting up to %s for rollout", handle.TimeoutBudget),
	})
	e.recordRolloutStarted(spec.Kind)

	waitStart := time.Now()
	if err := e.waiter.Await(ctx, handle); err != nil {
		var te *TimeoutError
		if errors.As(err, &te) {
			e.observer.Event(Event{
				Type:     EventRolloutTimeout,
				Phase:    phaseWait,
				Resource: spec.Key,
				Message:  te.Error(),
			})
		}
		return err
	}

	e.recordRolloutDuration(spec.Kind, time.Since(waitStart))
	e.observer.Event(Event{
		Type:     EventRolloutConverged,
		Phase:    phaseWait,
		Resource: spec.Key,
		Message:  fmt.Sprintf("rollout converged in %s", time.Since(waitStart).Round(time.Second)),
	})
	return nil
}

// fail classifies err into a terminal outcome. A SkipError becomes a
// Skipped outcome, an interrupted run becomes a cancellation, and anything
// else is a Failed outcome with diagnostics attached.
func (e *Engine) fail(ctx context.Context, handler Handler, spec ResourceSpec, outcome Outcome, err error) Outcome {
	var se *SkipError
	if errors.As(err, &se) {
		outcome.Status = StatusSkipped
		outcome.Reason = se.Reason
		e.observer.Event(Event{
			Type:     EventResourceSkipped,
			Phase:    phaseReconcile,
			Resource: spec.Key,
			Message:  se.Reason,
		})
		return outcome
	}

	outcome.Status = StatusFailed

	// The run being interrupted is not the resource's fault: record the
	// cancellation and skip diagnostics entirely.
	if ctx.Err() != nil || IsCancelled(err) {
		outcome.Err = fmt.Errorf("%s: %w", spec.Key, ErrCancelled)
		e.observer.Event(Event{
			Type:     EventResourceFailed,
			Phase:    phaseReconcile,
			Resource: spec.Key,
			Message:  outcome.Err.Error(),
		})
		return outcome
	}

	outcome.Err = err
	e.observer.Event(Event{
		Type:     EventResourceFailed,
		Phase:    phaseReconcile,
		Resource: spec.Key,
		Message:  err.Error(),
	})

	if bundle := e.collector.Collect(ctx, handler, spec, err); bundle != nil {
		outcome.Diagnostics = bundle
		e.observer.Event(Event{
			Type:     EventDiagnosticsCollected,
			Phase:    phaseDiagnose,
			Resource: spec.Key,
			Message:  bundle.Hint,
		})
	}
	return outcome
}

// retryOptions translates engine options into probe retry options and
// narrates retried attempts through the observer.
func (e *Engine) retryOptions(key string) []retry.Option {
	opts := []retry.Option{
		retry.WithOnRetry(func(attempt int, err error) {
			e.observer.Event(Event{
				Type:     EventResourceRetrying,
				Phase:    phaseReconcile,
				Resource: key,
				Message:  fmt.Sprintf("probe attempt %d failed, retrying: %v", attempt, err),
			})
		}),
	}
	if e.opts.RetryMaxAttempts > 0 {
		opts = append(opts, retry.WithMaxRetries(e.opts.RetryMaxAttempts))
	}
	if e.opts.RetryInitialDelay > 0 {
		opts = append(opts, retry.WithInitialDelay(e.opts.RetryInitialDelay))
	}
	return opts
}
