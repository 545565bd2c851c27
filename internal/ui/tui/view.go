package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderResources(&b, m)
	renderFailures(&b, m)
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("anneal: %s", m.ClusterName)
	if m.Region != "" {
		title += fmt.Sprintf(" (%s)", m.Region)
	}
	b.WriteString(titleStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Done && m.Report != nil && m.Report.Converged():
		status += readyStyle.Render("Converged")
	case m.Done && m.Report != nil:
		status += failedStyle.Render(string(m.Report.Status))
	case m.Done:
		status += readyStyle.Render("Done")
	default:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + warningStyle.Render("Provisioning")
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := calculateProgress(m)
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = m.Width - 30
		if barWidth < 10 {
			barWidth = 10
		}
	}
	filled := int(float64(barWidth) * progress)
	if filled > barWidth {
		filled = barWidth
	}

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))

	fmt.Fprintf(b, "  %s %d%%\n", bar, int(progress*100))
}

func renderResources(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Resources"))
	b.WriteString("\n")

	for _, row := range m.Rows {
		icon, style := stateIcon(row.State, m.SpinnerFrame)
		fmt.Fprintf(b, "    %s %-22s %-34s %s\n",
			style(icon), style(string(row.Kind)), row.Key, dimStyle.Render(stateNote(row)))
	}
}

func renderFailures(b *strings.Builder, m Model) {
	var failed []ResourceRow
	for _, row := range m.Rows {
		if row.State == StateFailed {
			failed = append(failed, row)
		}
	}
	if len(failed) == 0 {
		return
	}

	b.WriteString(sectionStyle.Render("  Failures"))
	b.WriteString("\n")
	for _, row := range failed {
		fmt.Fprintf(b, "    %s [%s] %s\n",
			failedStyle.Render(crossMark), row.Key, dimStyle.Render(row.Detail))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := formatDuration(time.Since(m.StartTime))
	parts := []string{fmt.Sprintf("elapsed: %s", elapsed)}
	if m.Total > 0 {
		parts = append(parts, fmt.Sprintf("resources: %d/%d", m.Current, m.Total))
	}
	pulse := ""
	if !m.Done && m.Err == nil {
		pulse = "  |  " + currentSpinner(m.SpinnerFrame) + " reconciling"
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s%s  |  q: quit", strings.Join(parts, "  |  "), pulse)))
	b.WriteString("\n")
}

// Helper functions

func stateIcon(state ResourceState, frame int) (string, styleFunc) {
	switch state {
	case StateSatisfied, StateCreated:
		return checkMark, sf(readyStyle)
	case StateFailed:
		return crossMark, sf(failedStyle)
	case StateSkipped:
		return warnMark, sf(warningStyle)
	case StatePending:
		return pending, sf(dimStyle)
	default:
		return currentSpinner(frame), sf(activeStyle)
	}
}

func stateNote(row ResourceRow) string {
	switch row.State {
	case StateProbing:
		return "probing"
	case StateCreating:
		return "creating"
	case StateUpdating:
		if row.Detail != "" {
			return fmt.Sprintf("converging (%s)", row.Detail)
		}
		return "converging"
	case StateDeleting:
		return "removing for reinstall"
	case StateWaiting:
		if row.Detail != "" {
			return row.Detail
		}
		return "waiting for rollout"
	case StateSatisfied:
		return "already satisfied"
	case StateCreated:
		return "converged " + formatDuration(row.Duration)
	case StateSkipped:
		return "skipped: " + row.Detail
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

func currentSpinner(frame int) string {
	if len(spinnerFrames) == 0 {
		return pending
	}
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

// calculateProgress weights terminal rows fully and in-flight rows by half
// so the bar keeps moving during long rollouts.
func calculateProgress(m Model) float64 {
	if m.Done {
		return 1.0
	}
	total := m.Total
	if total == 0 {
		total = len(m.Rows)
	}
	if total == 0 {
		return 0
	}

	done := 0
	active := 0
	for _, row := range m.Rows {
		switch {
		case row.State.terminal():
			done++
		case row.State != StatePending:
			active++
		}
	}
	if m.Current > done {
		done = m.Current
	}

	progress := (float64(done) + 0.5*float64(active)) / float64(total)
	if progress > 1.0 {
		progress = 1.0
	}
	return progress
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
