package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/anneal-io/anneal/internal/provision"
)

// RunFunc executes a provisioning run, narrating through the observer.
type RunFunc func(ctx context.Context, observer provision.Observer) (*provision.Report, error)

// RunApplyTUI wraps a provisioning run with a Bubble Tea dashboard. The run
// executes in a background goroutine and streams engine events into the
// program; quitting the dashboard cancels the run. A nil report with a nil
// error means the user bailed out before the run finished.
func RunApplyTUI(ctx context.Context, clusterName, region string, order []provision.ResourceSpec, run RunFunc) (*provision.Report, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewRunModel(clusterName, region, order)
	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		report, err := run(runCtx, NewProgramObserver(p))
		if err != nil && report == nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{Report: report})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	switch {
	case fm.Err != nil:
		return fm.Report, fm.Err
	case fm.Report == nil:
		return nil, fmt.Errorf("run canceled before completion")
	default:
		return fm.Report, nil
	}
}

// ProgramObserver forwards engine events into a running Bubble Tea program.
// Printf output is dropped: raw log lines would tear the alternate screen.
type ProgramObserver struct {
	program *tea.Program
	fields  map[string]string
}

// NewProgramObserver creates an observer that feeds the dashboard.
func NewProgramObserver(p *tea.Program) *ProgramObserver {
	return &ProgramObserver{program: p, fields: make(map[string]string)}
}

// Printf implements the Logger interface.
func (*ProgramObserver) Printf(string, ...interface{}) {}

// Event implements Observer.
func (o *ProgramObserver) Event(event provision.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if len(o.fields) > 0 {
		merged := make(map[string]string, len(o.fields)+len(event.Fields))
		for k, v := range o.fields {
			merged[k] = v
		}
		for k, v := range event.Fields {
			merged[k] = v
		}
		event.Fields = merged
	}
	o.program.Send(EventMsg{Event: event})
}

// Progress implements Observer.
func (o *ProgramObserver) Progress(phase string, current, total int) {
	o.program.Send(ProgressMsg{Phase: phase, Current: current, Total: total})
}

// WithFields implements Observer.
func (o *ProgramObserver) WithFields(fields map[string]string) provision.Observer {
	merged := make(map[string]string, len(o.fields)+len(fields))
	for k, v := range o.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ProgramObserver{program: o.program, fields: merged}
}
