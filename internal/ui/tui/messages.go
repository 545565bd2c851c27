// Package tui provides a Bubble Tea-based terminal UI for provisioning runs.
package tui

import "github.com/anneal-io/anneal/internal/provision"

// EventMsg carries a structured engine event into the dashboard.
type EventMsg struct {
	Event provision.Event
}

// ProgressMsg reports how many resources have reached a terminal state.
type ProgressMsg struct {
	Phase   string
	Current int
	Total   int
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error that aborted the run before a report existed.
type ErrMsg struct{ Err error }

// DoneMsg signals that the run finished. The report carries the
// authoritative per-resource outcomes.
type DoneMsg struct{ Report *provision.Report }
