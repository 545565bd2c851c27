package provision

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	converged := []Outcome{
		{Key: "a", Status: StatusCreated},
		{Key: "b", Status: StatusAlreadySatisfied},
	}
	assert.Equal(t, RunSuccess, summarize(converged, false))

	withSkip := append(converged, Outcome{Key: "c", Status: StatusSkipped, Reason: "subnet missing"})
	assert.Equal(t, RunSuccess, summarize(withSkip, false))

	withFailure := append(converged, Outcome{Key: "c", Status: StatusFailed, Err: errors.New("denied")})
	assert.Equal(t, RunPartialFailure, summarize(withFailure, false))

	assert.Equal(t, RunFatal, summarize(withFailure, true))
	assert.Equal(t, RunFatal, summarize(nil, true))
	assert.Equal(t, RunSuccess, summarize(nil, false))
}

func TestReport_CountsAndFailed(t *testing.T) {
	t.Parallel()

	report := &Report{
		Outcomes: []Outcome{
			{Key: "a", Status: StatusCreated},
			{Key: "b", Status: StatusCreated},
			{Key: "c", Status: StatusAlreadySatisfied},
			{Key: "d", Status: StatusSkipped},
			{Key: "e", Status: StatusFailed, Err: errors.New("boom")},
		},
	}

	counts := report.Counts()
	assert.Equal(t, 2, counts[StatusCreated])
	assert.Equal(t, 1, counts[StatusAlreadySatisfied])
	assert.Equal(t, 1, counts[StatusSkipped])
	assert.Equal(t, 1, counts[StatusFailed])

	failed := report.Failed()
	assert.Len(t, failed, 1)
	assert.Equal(t, "e", failed[0].Key)
}

func TestReport_Duration(t *testing.T) {
	t.Parallel()

	start := time.Now()
	report := &Report{
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
	}
	assert.Equal(t, 42*time.Second, report.Duration())
}

func TestOutcome_Converged(t *testing.T) {
	t.Parallel()

	assert.True(t, Outcome{Status: StatusCreated}.Converged())
	assert.True(t, Outcome{Status: StatusAlreadySatisfied}.Converged())
	assert.False(t, Outcome{Status: StatusSkipped}.Converged())
	assert.False(t, Outcome{Status: StatusFailed}.Converged())
}
