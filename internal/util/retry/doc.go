// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay, maximum delay, and jitter. It is used for control
// plane probes and other operations that may fail transiently. Errors marked
// with [Fatal] short-circuit the loop.
package retry
