package provision

import (
	"context"
	"time"
)

// Kind identifies a resource kind the engine knows how to reconcile.
type Kind string

const (
	// KindIdentityProvider is an IAM OIDC identity provider. Immutable:
	// drift requires manual replacement.
	KindIdentityProvider Kind = "IdentityProvider"
	// KindPolicy is an IAM managed policy.
	KindPolicy Kind = "Policy"
	// KindServiceAccountBinding is a Kubernetes ServiceAccount annotated
	// with the IAM role it assumes.
	KindServiceAccountBinding Kind = "ServiceAccountBinding"
	// KindSubnetTag is a set of role tags on a VPC subnet.
	KindSubnetTag Kind = "SubnetTag"
	// KindHelmRelease is an installed Helm chart.
	KindHelmRelease Kind = "HelmRelease"
)

// FailurePolicy controls whether a resource failure aborts the run.
type FailurePolicy string

const (
	// FailurePolicyFatal aborts the run when the resource fails.
	FailurePolicyFatal FailurePolicy = "fatal"
	// FailurePolicyBestEffort records the failure and continues.
	FailurePolicyBestEffort FailurePolicy = "best-effort"
	// FailurePolicyDefault defers to the engine: fatal for resources with
	// dependents, best-effort for leaves.
	FailurePolicyDefault FailurePolicy = ""
)

// ResourceSpec is the desired state of one external resource.
type ResourceSpec struct {
	Kind       Kind
	Key        string            // kind-scoped unique identifier
	Attributes map[string]string // kind-specific; booleans encoded as "true"/"false"
	DependsOn  []string          // keys of resources that must converge first

	// FailurePolicy and Timeout override the run-level defaults for this
	// resource only.
	FailurePolicy FailurePolicy
	Timeout       time.Duration
}

// Attr returns the named attribute or the empty string.
func (s ResourceSpec) Attr(name string) string {
	return s.Attributes[name]
}

// AttrBool interprets the named attribute as a boolean. Missing or
// unparseable values return false.
func (s ResourceSpec) AttrBool(name string) bool {
	return s.Attributes[name] == "true"
}

// ObservedState is a point-in-time snapshot of one resource, produced by a
// probe and discarded after the reconciliation attempt. Absence is a valid
// observation, not an error.
type ObservedState struct {
	Present    bool
	Attributes map[string]string
	FetchedAt  time.Time
}

// OutcomeStatus is the terminal result of reconciling one resource.
type OutcomeStatus string

const (
	// StatusAlreadySatisfied means the observed state matched the spec and
	// nothing was mutated.
	StatusAlreadySatisfied OutcomeStatus = "AlreadySatisfied"
	// StatusCreated means the resource was created or converged in place.
	StatusCreated OutcomeStatus = "Created"
	// StatusSkipped means the resource was deliberately left alone; Reason
	// carries the explanation.
	StatusSkipped OutcomeStatus = "Skipped"
	// StatusFailed means the attempt did not converge; Err carries the cause.
	StatusFailed OutcomeStatus = "Failed"
)

// Outcome is the per-resource result recorded in the run report.
type Outcome struct {
	Key         string
	Kind        Kind
	Status      OutcomeStatus
	Reason      string // set when Status is Skipped
	Err         error  // set when Status is Failed
	Duration    time.Duration
	Diagnostics *DiagnosticBundle // set when collected on the failure path
}

// Converged reports whether the outcome counts as a success.
func (o Outcome) Converged() bool {
	return o.Status == StatusAlreadySatisfied || o.Status == StatusCreated
}

// RolloutHandle identifies a long-running mutation the waiter must poll to
// convergence. It lives for the duration of one polling loop. A nil handle
// from a mutation means the change took effect synchronously.
type RolloutHandle struct {
	ResourceKey   string
	StartedAt     time.Time
	TimeoutBudget time.Duration

	// Poll observes the rollout once. done reports convergence, status is a
	// human-readable snapshot of where the rollout stands, and a non-nil
	// err is treated as transient: the waiter records it and keeps polling.
	Poll func(ctx context.Context) (done bool, status string, err error)
}

// DiagnosticBundle is the best-effort triage context gathered when a
// resource fails. Fields the collector could not fetch stay empty.
type DiagnosticBundle struct {
	ResourceKey    string
	StatusSnapshot string
	RecentLogLines []string
	Hint           string
	CollectedAt    time.Time
}
