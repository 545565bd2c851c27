package provision

import (
	"context"
	"sort"
	"sync"
)

// Handler reconciles one resource kind against an external system. The
// engine drives handlers through the probe/decide/mutate cycle; handlers
// never talk to each other.
type Handler interface {
	// Kind returns the resource kind this handler owns.
	Kind() Kind

	// Mutable reports whether drifted resources of this kind can be
	// converged in place. Drift on an immutable kind yields a Skipped
	// outcome instead of an update.
	Mutable() bool

	// Probe reads the current state of the resource named by spec.Key.
	// Absence is a valid observation, not an error.
	Probe(ctx context.Context, spec ResourceSpec) (ObservedState, error)

	// Create brings the resource into existence. A non-nil handle asks the
	// engine to poll the rollout until it converges.
	Create(ctx context.Context, spec ResourceSpec) (*RolloutHandle, error)

	// Update converges a drifted resource in place. Called only when
	// Mutable reports true.
	Update(ctx context.Context, spec ResourceSpec, observed ObservedState) (*RolloutHandle, error)
}

// Destroyer is implemented by handlers whose resources can be torn down
// before recreation (force-reinstall). Delete must refuse resources that do
// not carry our ownership marker.
type Destroyer interface {
	Delete(ctx context.Context, spec ResourceSpec, observed ObservedState) error
}

// Diagnoser is implemented by handlers that can supply triage context after
// a failure. Both methods are best-effort; the collector tolerates errors.
type Diagnoser interface {
	// Status returns a one-line snapshot of where the resource stands.
	Status(ctx context.Context, spec ResourceSpec) (string, error)

	// Logs returns up to tail recent log lines related to the resource.
	Logs(ctx context.Context, spec ResourceSpec, tail int) ([]string, error)
}

// Registry maps resource kinds to their handlers. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[Kind]Handler),
	}
}

// Register adds a handler for its kind. Registering nil, an empty kind, or
// a kind that already has a handler is a configuration error.
func (r *Registry) Register(handler Handler) error {
	if handler == nil {
		return NewConfigurationError("attempted to register nil handler")
	}
	kind := handler.Kind()
	if kind == "" {
		return NewConfigurationError("handler kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[kind]; exists {
		return NewConfigurationError("handler for kind %q already registered", kind)
	}
	r.handlers[kind] = handler
	return nil
}

// Handler returns the handler for the given kind.
func (r *Registry) Handler(kind Kind) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[kind]
	if !exists {
		return nil, NewConfigurationError("no handler registered for kind %q", kind)
	}
	return handler, nil
}

// Kinds returns the registered kinds in lexical order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.handlers))
	for kind := range r.handlers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
