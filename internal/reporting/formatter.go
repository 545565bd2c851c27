// Package reporting formats run reports and dry-run plans for terminal
// display and machine consumers.
package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anneal-io/anneal/internal/provision"
)

// Status marks shared with the interactive view.
const (
	markOK      = "[OK]"
	markFail    = "[!!]"
	markSkip    = "[??]"
	markPending = "[  ]"
	markChange  = "[..]"
)

// Formatter formats run reports for display.
type Formatter struct{}

// NewFormatter creates a new formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format returns a detailed, formatted run report for terminal display.
func (f *Formatter) Format(r *provision.Report) string {
	var sb strings.Builder

	width := 61
	counts := r.Counts()

	// Header
	sb.WriteString(boxTop(width))
	sb.WriteString(boxLine("anneal Provisioning Report", width))
	sb.WriteString(boxLine(fmt.Sprintf("Run: %s", r.RunID), width))
	sb.WriteString(boxSep(width))
	sb.WriteString(boxLine(fmt.Sprintf("Status:    %s", r.Status), width))
	sb.WriteString(boxLine(fmt.Sprintf("Resources: %s", summarizeCounts(counts)), width))
	sb.WriteString(boxLine(fmt.Sprintf("Duration:  %s", formatDuration(r.Duration())), width))
	sb.WriteString(boxBottom(width))
	sb.WriteString("\n")

	// Per-resource rows in plan order
	for _, o := range r.Outcomes {
		sb.WriteString(fmt.Sprintf("  %s %-22s %-34s %s\n",
			outcomeMark(o.Status), o.Kind, o.Key, outcomeNote(o)))
	}

	// Failure detail with whatever the collector managed to gather
	failed := r.Failed()
	if len(failed) > 0 {
		sb.WriteString("\n  Failures:\n")
		for _, o := range failed {
			sb.WriteString(fmt.Sprintf("\n  %s %s (%s)\n", markFail, o.Key, o.Kind))
			if o.Err != nil {
				sb.WriteString(fmt.Sprintf("       %s\n", firstLine(o.Err.Error())))
			}
			writeDiagnostics(&sb, o.Diagnostics)
		}
	}

	return sb.String()
}

// FormatCompact returns a single-line run summary.
func (f *Formatter) FormatCompact(r *provision.Report) string {
	return fmt.Sprintf("run %s: %s (%s) in %s",
		r.RunID, r.Status, summarizeCounts(r.Counts()), formatDuration(r.Duration()))
}

// FormatJSON returns the report as JSON.
func (f *Formatter) FormatJSON(r *provision.Report) string {
	type jsonDiagnostics struct {
		Status      string   `json:"status,omitempty"`
		Hint        string   `json:"hint,omitempty"`
		RecentLogs  []string `json:"recent_logs,omitempty"`
		CollectedAt string   `json:"collected_at"`
	}
	type jsonOutcome struct {
		Key         string           `json:"key"`
		Kind        string           `json:"kind"`
		Status      string           `json:"status"`
		Reason      string           `json:"reason,omitempty"`
		Error       string           `json:"error,omitempty"`
		DurationMS  int64            `json:"duration_ms"`
		Diagnostics *jsonDiagnostics `json:"diagnostics,omitempty"`
	}
	type jsonReport struct {
		RunID      string        `json:"run_id"`
		Status     string        `json:"status"`
		StartedAt  string        `json:"started_at"`
		FinishedAt string        `json:"finished_at"`
		DurationMS int64         `json:"duration_ms"`
		Resources  []jsonOutcome `json:"resources"`
	}

	jr := jsonReport{
		RunID:      r.RunID,
		Status:     string(r.Status),
		StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: r.FinishedAt.UTC().Format(time.RFC3339),
		DurationMS: r.Duration().Milliseconds(),
		Resources:  make([]jsonOutcome, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		jo := jsonOutcome{
			Key:        o.Key,
			Kind:       string(o.Kind),
			Status:     string(o.Status),
			Reason:     o.Reason,
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			jo.Error = o.Err.Error()
		}
		if o.Diagnostics != nil {
			jo.Diagnostics = &jsonDiagnostics{
				Status:      o.Diagnostics.StatusSnapshot,
				Hint:        o.Diagnostics.Hint,
				RecentLogs:  o.Diagnostics.RecentLogLines,
				CollectedAt: o.Diagnostics.CollectedAt.UTC().Format(time.RFC3339),
			}
		}
		jr.Resources = append(jr.Resources, jo)
	}

	data, _ := json.MarshalIndent(jr, "", "  ")
	return string(data)
}

// FormatPlan renders the actions a run would take, without mutating anything.
func (f *Formatter) FormatPlan(actions []provision.PlannedAction) string {
	var sb strings.Builder

	width := 61
	changes := 0
	for _, a := range actions {
		if a.Action == provision.DecisionCreate || a.Action == provision.DecisionUpdate {
			changes++
		}
	}

	sb.WriteString(boxTop(width))
	sb.WriteString(boxLine("anneal Dry Run", width))
	sb.WriteString(boxLine(fmt.Sprintf("%d resources planned, %d would change", len(actions), changes), width))
	sb.WriteString(boxBottom(width))
	sb.WriteString("\n")

	for _, a := range actions {
		line := fmt.Sprintf("  %s %-18s %-22s %s",
			actionMark(a), actionLabel(a), a.Kind, a.Key)
		if a.Err != nil {
			line += fmt.Sprintf("  %s", firstLine(a.Err.Error()))
		} else if a.Detail != "" {
			line += fmt.Sprintf("  (%s)", a.Detail)
		}
		sb.WriteString(line + "\n")
	}

	if changes == 0 {
		sb.WriteString("\n  Nothing to do. The environment already matches the desired state.\n")
	}

	return sb.String()
}

// FormatPlanJSON returns the planned actions as JSON.
func (f *Formatter) FormatPlanJSON(actions []provision.PlannedAction) string {
	type jsonAction struct {
		Key    string `json:"key"`
		Kind   string `json:"kind"`
		Action string `json:"action"`
		Detail string `json:"detail,omitempty"`
		Error  string `json:"error,omitempty"`
	}
	type jsonPlan struct {
		Resources []jsonAction `json:"resources"`
	}

	jp := jsonPlan{Resources: make([]jsonAction, 0, len(actions))}
	for _, a := range actions {
		ja := jsonAction{
			Key:    a.Key,
			Kind:   string(a.Kind),
			Action: string(a.Action),
			Detail: a.Detail,
		}
		if a.Err != nil {
			ja.Error = a.Err.Error()
		}
		jp.Resources = append(jp.Resources, ja)
	}

	data, _ := json.MarshalIndent(jp, "", "  ")
	return string(data)
}

func outcomeMark(status provision.OutcomeStatus) string {
	switch status {
	case provision.StatusAlreadySatisfied, provision.StatusCreated:
		return markOK
	case provision.StatusSkipped:
		return markSkip
	case provision.StatusFailed:
		return markFail
	default:
		return markPending
	}
}

func outcomeNote(o provision.Outcome) string {
	switch o.Status {
	case provision.StatusAlreadySatisfied:
		return "already satisfied"
	case provision.StatusCreated:
		return fmt.Sprintf("converged (%s)", formatDuration(o.Duration))
	case provision.StatusSkipped:
		return fmt.Sprintf("skipped: %s", o.Reason)
	case provision.StatusFailed:
		if o.Err != nil {
			return fmt.Sprintf("failed: %s", firstLine(o.Err.Error()))
		}
		return "failed"
	default:
		return string(o.Status)
	}
}

func actionMark(a provision.PlannedAction) string {
	if a.Err != nil {
		return markFail
	}
	switch a.Action {
	case provision.DecisionCreate:
		return markPending
	case provision.DecisionAlreadySatisfied:
		return markOK
	case provision.DecisionUpdate:
		return markChange
	default:
		return markSkip
	}
}

func actionLabel(a provision.PlannedAction) string {
	if a.Err != nil {
		return "probe failed"
	}
	switch a.Action {
	case provision.DecisionCreate:
		return "create"
	case provision.DecisionAlreadySatisfied:
		return "no change"
	case provision.DecisionUpdate:
		return "update"
	case provision.DecisionSkipImmutable:
		return "skip (immutable)"
	case provision.DecisionSkip:
		return "skip"
	default:
		return string(a.Action)
	}
}

func summarizeCounts(counts map[provision.OutcomeStatus]int) string {
	parts := make([]string, 0, 4)
	if n := counts[provision.StatusCreated]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d converged", n))
	}
	if n := counts[provision.StatusAlreadySatisfied]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d satisfied", n))
	}
	if n := counts[provision.StatusSkipped]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	if n := counts[provision.StatusFailed]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func writeDiagnostics(sb *strings.Builder, d *provision.DiagnosticBundle) {
	if d == nil {
		return
	}
	if d.StatusSnapshot != "" {
		sb.WriteString(fmt.Sprintf("       status: %s\n", d.StatusSnapshot))
	}
	if d.Hint != "" {
		sb.WriteString(fmt.Sprintf("       hint: %s\n", d.Hint))
	}
	if len(d.RecentLogLines) > 0 {
		sb.WriteString("       recent logs:\n")
		for _, line := range d.RecentLogLines {
			sb.WriteString(fmt.Sprintf("         | %s\n", line))
		}
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Helper functions for box drawing

func boxTop(width int) string {
	return fmt.Sprintf("┌%s┐\n", strings.Repeat("─", width-2))
}

func boxBottom(width int) string {
	return fmt.Sprintf("└%s┘\n", strings.Repeat("─", width-2))
}

func boxSep(width int) string {
	return fmt.Sprintf("├%s┤\n", strings.Repeat("─", width-2))
}

func boxLine(text string, width int) string {
	padding := width - 4 - len(text)
	if padding < 0 {
		padding = 0
		text = text[:width-4]
	}
	return fmt.Sprintf("│ %s%s │\n", text, strings.Repeat(" ", padding))
}
