package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/anneal-io/anneal/internal/provision"
)

// ResourceState is the display state of one resource row.
type ResourceState string

const (
	StatePending   ResourceState = "pending"
	StateProbing   ResourceState = "probing"
	StateCreating  ResourceState = "creating"
	StateUpdating  ResourceState = "updating"
	StateDeleting  ResourceState = "deleting"
	StateWaiting   ResourceState = "waiting"
	StateSatisfied ResourceState = "satisfied"
	StateCreated   ResourceState = "created"
	StateSkipped   ResourceState = "skipped"
	StateFailed    ResourceState = "failed"
)

// terminal reports whether the state is final for the run.
func (s ResourceState) terminal() bool {
	switch s {
	case StateSatisfied, StateCreated, StateSkipped, StateFailed:
		return true
	}
	return false
}

// ResourceRow tracks one resource through the run for display.
type ResourceRow struct {
	Key       string
	Kind      provision.Kind
	State     ResourceState
	Detail    string
	StartedAt time.Time
	Duration  time.Duration
}

// Model is the Bubble Tea model for the provisioning dashboard.
type Model struct {
	// Target info
	ClusterName string
	Region      string

	// Resource rows in plan order
	Rows  []ResourceRow
	index map[string]int

	// Engine progress: resources in a terminal state vs. planned
	Current int
	Total   int

	// Animation
	SpinnerFrame int

	StartTime time.Time

	// UI state
	Width  int
	Height int

	Report *provision.Report
	Err    error
	Done   bool
}

// NewRunModel creates a model for the apply command TUI. Rows follow the
// plan order the engine will reconcile in.
func NewRunModel(clusterName, region string, order []provision.ResourceSpec) Model {
	rows := make([]ResourceRow, 0, len(order))
	index := make(map[string]int, len(order))
	for _, spec := range order {
		index[spec.Key] = len(rows)
		rows = append(rows, ResourceRow{Key: spec.Key, Kind: spec.Kind, State: StatePending})
	}
	return Model{
		ClusterName: clusterName,
		Region:      region,
		Rows:        rows,
		index:       index,
		Total:       len(order),
		StartTime:   time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case EventMsg:
		m.applyEvent(msg.Event)

	case ProgressMsg:
		m.Current = msg.Current
		m.Total = msg.Total

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Report = msg.Report
		m.Done = true
		m.applyReport(msg.Report)
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyEvent(ev provision.Event) {
	if ev.Resource == "" {
		return
	}
	i, ok := m.index[ev.Resource]
	if !ok {
		return
	}
	row := &m.Rows[i]

	switch ev.Type {
	case provision.EventResourceProbing:
		row.State = StateProbing
		if row.StartedAt.IsZero() {
			row.StartedAt = time.Now()
		}
	case provision.EventResourceRetrying:
		row.State = StateProbing
		row.Detail = ev.Message
	case provision.EventResourceCreating:
		row.State = StateCreating
	case provision.EventResourceUpdating:
		row.State = StateUpdating
		row.Detail = ev.Fields["drifted"]
	case provision.EventResourceDeleting:
		row.State = StateDeleting
	case provision.EventRolloutWaiting:
		row.State = StateWaiting
		row.Detail = ev.Message
	case provision.EventRolloutConverged, provision.EventRolloutTimeout:
		row.Detail = ev.Message
	case provision.EventResourceSatisfied:
		finishRow(row, StateSatisfied, "")
	case provision.EventResourceCreated:
		finishRow(row, StateCreated, "")
	case provision.EventResourceSkipped:
		finishRow(row, StateSkipped, ev.Message)
	case provision.EventResourceFailed:
		finishRow(row, StateFailed, ev.Message)
	}
}

func finishRow(row *ResourceRow, state ResourceState, detail string) {
	row.State = state
	row.Detail = detail
	if !row.StartedAt.IsZero() {
		row.Duration = time.Since(row.StartedAt)
	}
}

// applyReport overwrites row states with the report's authoritative
// outcomes so the final frame matches what the run actually did.
func (m *Model) applyReport(r *provision.Report) {
	if r == nil {
		return
	}
	for _, o := range r.Outcomes {
		i, ok := m.index[o.Key]
		if !ok {
			continue
		}
		row := &m.Rows[i]
		switch o.Status {
		case provision.StatusAlreadySatisfied:
			row.State = StateSatisfied
			row.Detail = ""
		case provision.StatusCreated:
			row.State = StateCreated
			row.Detail = ""
		case provision.StatusSkipped:
			row.State = StateSkipped
			row.Detail = o.Reason
		case provision.StatusFailed:
			row.State = StateFailed
			if o.Err != nil {
				row.Detail = o.Err.Error()
			}
		}
		row.Duration = o.Duration
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
