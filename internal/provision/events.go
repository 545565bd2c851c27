package provision

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Logger is the minimal printf-style logging surface. Everything that wants
// to narrate progress accepts an Observer, which embeds this.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during a run.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a run phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured reconciliation event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "plan", "reconcile")
	Message   string            // Human-readable message
	Resource  string            // Resource key if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of reconciliation event.
type EventType string

const (
	// EventRunStarted indicates a provisioning run has started.
	EventRunStarted EventType = "run.started"
	// EventRunCompleted indicates a provisioning run finished with every
	// resource converged.
	EventRunCompleted EventType = "run.completed"
	// EventRunFailed indicates a provisioning run finished with failures.
	EventRunFailed EventType = "run.failed"

	// EventResourceProbing indicates the current state of a resource is
	// being read.
	EventResourceProbing EventType = "resource.probing"
	// EventResourceRetrying indicates a transient probe failure is being
	// retried with backoff.
	EventResourceRetrying EventType = "resource.retrying"
	// EventResourceSatisfied indicates the observed state already matched.
	EventResourceSatisfied EventType = "resource.satisfied"
	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceUpdating indicates a drifted resource is being converged.
	EventResourceUpdating EventType = "resource.updating"
	// EventResourceSkipped indicates a resource was deliberately left alone.
	EventResourceSkipped EventType = "resource.skipped"
	// EventResourceFailed indicates a reconciliation attempt failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a resource is being removed before
	// reinstall.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was removed successfully.
	EventResourceDeleted EventType = "resource.deleted"

	// EventRolloutWaiting indicates the engine is polling a rollout.
	EventRolloutWaiting EventType = "rollout.waiting"
	// EventRolloutConverged indicates a rollout reached its desired state.
	EventRolloutConverged EventType = "rollout.converged"
	// EventRolloutTimeout indicates a rollout exhausted its budget.
	EventRolloutTimeout EventType = "rollout.timeout"

	// EventDiagnosticsCollected indicates triage context was gathered for a
	// failed resource.
	EventDiagnosticsCollected EventType = "diagnostics.collected"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		contextFields: make(map[string]string),
	}
}

// Printf implements the Logger interface.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Merge context fields
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}

	log.Print(o.formatEvent(event))
}

// Progress implements Observer interface.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	if total == 0 {
		log.Printf("[%s] Progress: %d/%d", phase, current, total)
		return
	}
	percentage := (current * 100) / total
	log.Printf("[%s] Progress: %d/%d (%d%%)", phase, current, total, percentage)
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string)
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &ConsoleObserver{
		contextFields: newFields,
	}
}

// formatEvent formats an event for console output.
func (o *ConsoleObserver) formatEvent(event Event) string {
	var parts []string

	parts = append(parts, string(event.Type))

	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}

	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}

	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		var fieldParts []string
		for k, v := range event.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, v))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// NopObserver discards everything. Useful as a default and in tests.
type NopObserver struct{}

// NewNopObserver creates an observer that discards all output.
func NewNopObserver() *NopObserver { return &NopObserver{} }

// Printf implements the Logger interface.
func (*NopObserver) Printf(string, ...interface{}) {}

// Event implements Observer interface.
func (*NopObserver) Event(Event) {}

// Progress implements Observer interface.
func (*NopObserver) Progress(string, int, int) {}

// WithFields implements Observer interface.
func (o *NopObserver) WithFields(map[string]string) Observer { return o }
