package provision

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCancelled marks an explicitly interrupted operation. It is distinct
// from a timeout: no diagnostics are collected and the run aborts.
var ErrCancelled = errors.New("cancelled")

// ConfigurationError reports invalid desired-state input: an unknown kind,
// a dangling dependency reference, malformed attributes. Always fatal,
// never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// NewConfigurationError formats a configuration error.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// CycleError reports a dependency cycle. Keys lists the members of the
// offending cycle in edge order, smallest key first.
type CycleError struct {
	Keys []string
}

func (e *CycleError) Error() string {
	if len(e.Keys) == 0 {
		return "dependency cycle"
	}
	return fmt.Sprintf("dependency cycle: %s -> %s", strings.Join(e.Keys, " -> "), e.Keys[0])
}

// IsConfiguration reports whether err is configuration-class: a cycle or a
// ConfigurationError anywhere in the chain. Configuration errors abort the
// run before any resource is touched.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	var cy *CycleError
	return errors.As(err, &ce) || errors.As(err, &cy)
}

// ProbeError wraps a transient transport or auth failure while reading the
// current state of a resource. The engine retries probes with backoff;
// absence of the resource is never a ProbeError.
type ProbeError struct {
	Key string
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Key, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// NewProbeError wraps err as a probe failure for the given resource key.
func NewProbeError(key string, err error) *ProbeError {
	return &ProbeError{Key: key, Err: err}
}

// MutationError wraps a failed create, update, or delete. It is recorded as
// a Failed outcome; whether the run continues is the failure policy's call.
type MutationError struct {
	Key string
	Op  string // "create", "update", or "delete"
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// NewMutationError wraps err as a failed mutation.
func NewMutationError(key, op string, err error) *MutationError {
	return &MutationError{Key: key, Op: op, Err: err}
}

// TimeoutError reports that a rollout did not converge within its budget.
// LastStatus carries the most recent observation for triage. The waiter
// never retries the mutation itself.
type TimeoutError struct {
	Key        string
	Budget     time.Duration
	LastStatus string
}

func (e *TimeoutError) Error() string {
	if e.LastStatus == "" {
		return fmt.Sprintf("timed out after %s waiting for %s", e.Budget, e.Key)
	}
	return fmt.Sprintf("timed out after %s waiting for %s (last status: %s)", e.Budget, e.Key, e.LastStatus)
}

// SkipError signals that an environmental precondition is missing and the
// resource should be left alone rather than failed, e.g. tagging a subnet
// that does not exist. It maps to a Skipped outcome with Reason.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

// NewSkipError formats a skip with its reason.
func NewSkipError(format string, args ...any) *SkipError {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// IsCancelled reports whether err carries ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
