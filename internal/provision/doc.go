// Package provision implements the idempotent reconciliation engine.
//
// # Flow
//
// A run takes a set of ResourceSpec values, sequences them into dependency
// levels, and drives each through probe, decide, mutate, and rollout wait.
// Re-running against a converged environment mutates nothing.
//
// # Core Types
//
// Handler adapts one resource kind to its external system; the Registry
// maps kinds to handlers. Sequence turns specs into a Plan of parallel
// levels. Engine.Run executes the plan and returns a Report with one
// Outcome per resource: AlreadySatisfied, Created, Skipped, or Failed.
//
// # Failure Handling
//
// Failures honor a per-resource policy: a fatal failure finishes its level
// and then aborts the run, while best-effort failures only skip their
// dependents. Timed-out rollouts and rejected mutations get a best-effort
// DiagnosticBundle; cancellation gets none.
package provision
