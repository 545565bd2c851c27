package provision

import (
	"time"
)

// RunStatus is the aggregate verdict of a run.
type RunStatus string

const (
	// RunSuccess means every resource converged or was deliberately
	// skipped; the environment is ready.
	RunSuccess RunStatus = "Success"
	// RunPartialFailure means at least one best-effort resource failed but
	// the run attempted everything it could.
	RunPartialFailure RunStatus = "PartialFailure"
	// RunFatal means a fatal failure aborted the run before every resource
	// was attempted.
	RunFatal RunStatus = "Fatal"
)

// Report is the complete record of one provisioning run. Outcomes appear in
// plan order and cover every planned resource, attempted or not.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	Outcomes   []Outcome
}

// Duration returns the wall-clock length of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Converged reports whether the run left the environment ready.
func (r *Report) Converged() bool {
	return r.Status == RunSuccess
}

// Counts tallies outcomes by status.
func (r *Report) Counts() map[OutcomeStatus]int {
	counts := make(map[OutcomeStatus]int, 4)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Failed returns the outcomes that did not converge and were not skipped.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// summarize derives the run status from its outcomes. Skips are deliberate
// and do not count against success.
func summarize(outcomes []Outcome, aborted bool) RunStatus {
	if aborted {
		return RunFatal
	}
	for _, o := range outcomes {
		if o.Status == StatusFailed {
			return RunPartialFailure
		}
	}
	return RunSuccess
}
