package provision

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Reconciliation metrics
	outcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anneal",
			Subsystem: "engine",
			Name:      "outcomes_total",
			Help:      "Total number of resource outcomes by kind and status",
		},
		[]string{"kind", "status"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "anneal",
			Subsystem: "engine",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of one resource reconciliation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"kind"},
	)

	// Rollout metrics
	rolloutsStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anneal",
			Subsystem: "engine",
			Name:      "rollouts_started_total",
			Help:      "Total number of rollout waits entered by kind",
		},
		[]string{"kind"},
	)

	rolloutDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "anneal",
			Subsystem: "engine",
			Name:      "rollout_duration_seconds",
			Help:      "Time rollouts took to converge in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17min
		},
		[]string{"kind"},
	)

	// Run metrics
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anneal",
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Total number of provisioning runs by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		outcomesTotal,
		reconcileDuration,
		rolloutsStartedTotal,
		rolloutDuration,
		runsTotal,
	)
}

// recordOutcomeMetric records one terminal resource outcome.
func recordOutcomeMetric(kind Kind, status OutcomeStatus, duration time.Duration) {
	outcomesTotal.WithLabelValues(string(kind), string(status)).Inc()
	reconcileDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

// recordRolloutStartedMetric records that a rollout wait was entered.
func recordRolloutStartedMetric(kind Kind) {
	rolloutsStartedTotal.WithLabelValues(string(kind)).Inc()
}

// recordRolloutDurationMetric records how long a rollout took to converge.
func recordRolloutDurationMetric(kind Kind, duration time.Duration) {
	rolloutDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

// recordRunMetric records the aggregate verdict of a run.
func recordRunMetric(status RunStatus) {
	runsTotal.WithLabelValues(string(status)).Inc()
}

// Metrics helper methods that check enableMetrics before recording.
// These eliminate the repeated `if e.opts.EnableMetrics` pattern at call sites.

func (e *Engine) recordOutcome(kind Kind, status OutcomeStatus, duration time.Duration) {
	if e.opts.EnableMetrics {
		recordOutcomeMetric(kind, status, duration)
	}
}

func (e *Engine) recordRolloutStarted(kind Kind) {
	if e.opts.EnableMetrics {
		recordRolloutStartedMetric(kind)
	}
}

func (e *Engine) recordRolloutDuration(kind Kind, duration time.Duration) {
	if e.opts.EnableMetrics {
		recordRolloutDurationMetric(kind, duration)
	}
}

func (e *Engine) recordRun(status RunStatus) {
	if e.opts.EnableMetrics {
		recordRunMetric(status)
	}
}
