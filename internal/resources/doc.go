// Package resources implements the per-kind reconciliation handlers.
//
// Each handler owns one resource kind and knows three things: how to read
// the live state (Probe), how to bring the resource into existence (Create),
// and how to converge a drifted one in place (Update, mutable kinds only).
// Handlers talk to narrow platform interfaces so tests can substitute
// func-field fakes; they never talk to each other. Ordering and dependency
// propagation are the engine's job.
//
// Attribute names are shared constants: the config layer builds desired
// specs with them and probes report observed state under the same keys.
// Structured attributes (IAM policy documents, Helm values) are carried as
// canonical JSON strings so string equality is semantic equality.
package resources
