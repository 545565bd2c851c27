package provision

import (
	"sort"
)

// Plan is the validated execution order for a set of resource specs.
type Plan struct {
	// Order lists every spec in a valid dependency order: a resource never
	// appears before something it depends on. Levels concatenated.
	Order []ResourceSpec

	// Levels groups the specs into batches whose members are mutually
	// independent and may run in parallel. Level i+1 only contains specs
	// whose dependencies all sit in levels <= i.
	Levels [][]ResourceSpec

	index      map[string]int      // key -> position in Order
	dependents map[string][]string // key -> direct dependents, sorted
}

// Size returns the number of planned resources.
func (p *Plan) Size() int { return len(p.Order) }

// Position returns the flat-order position of the given key.
func (p *Plan) Position(key string) (int, bool) {
	pos, ok := p.index[key]
	return pos, ok
}

// Dependents returns the keys that directly depend on the given key, in
// lexical order.
func (p *Plan) Dependents(key string) []string {
	return p.dependents[key]
}

// HasDependents reports whether anything depends on the given key.
func (p *Plan) HasDependents(key string) bool {
	return len(p.dependents[key]) > 0
}

// Sequence validates the dependency graph over specs and produces the
// execution plan. Duplicate keys and references to unknown keys are
// configuration errors; a cycle is reported as a CycleError naming the
// offending keys. The plan is deterministic: within a level, specs are
// ordered by key.
func Sequence(specs []ResourceSpec) (*Plan, error) {
	nodes := make(map[string]ResourceSpec, len(specs))
	edges := make(map[string][]string, len(specs)) // dep -> dependents
	inDegree := make(map[string]int, len(specs))

	for _, spec := range specs {
		if spec.Key == "" {
			return nil, NewConfigurationError("resource of kind %q has an empty key", spec.Kind)
		}
		if _, exists := nodes[spec.Key]; exists {
			return nil, NewConfigurationError("duplicate resource key %q", spec.Key)
		}
		nodes[spec.Key] = spec
		inDegree[spec.Key] = 0
	}

	dependents := make(map[string][]string, len(specs))
	for _, spec := range specs {
		seen := make(map[string]bool, len(spec.DependsOn))
		for _, dep := range spec.DependsOn {
			if _, exists := nodes[dep]; !exists {
				return nil, NewConfigurationError("resource %q depends on unknown resource %q", spec.Key, dep)
			}
			if seen[dep] {
				continue
			}
			seen[dep] = true

			// dep must converge before spec, so the edge runs dep -> spec.
			edges[dep] = append(edges[dep], spec.Key)
			dependents[dep] = append(dependents[dep], spec.Key)
			inDegree[spec.Key]++
		}
	}
	for _, deps := range dependents {
		sort.Strings(deps)
	}

	// Kahn's algorithm, processing the whole zero-degree snapshot at once so
	// that each snapshot forms one parallel level.
	var queue []string
	for key, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, key)
		}
	}
	sort.Strings(queue)

	plan := &Plan{
		index:      make(map[string]int, len(specs)),
		dependents: dependents,
	}
	processed := 0

	for len(queue) > 0 {
		level := make([]ResourceSpec, 0, len(queue))
		var nextQueue []string

		for _, key := range queue {
			spec := nodes[key]
			level = append(level, spec)
			plan.index[key] = len(plan.Order)
			plan.Order = append(plan.Order, spec)
			processed++

			for _, dependent := range edges[key] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					nextQueue = append(nextQueue, dependent)
				}
			}
		}

		plan.Levels = append(plan.Levels, level)
		sort.Strings(nextQueue)
		queue = nextQueue
	}

	if processed != len(nodes) {
		remaining := make(map[string]ResourceSpec, len(nodes)-processed)
		for key, spec := range nodes {
			if _, done := plan.index[key]; !done {
				remaining[key] = spec
			}
		}
		return nil, &CycleError{Keys: findCycle(remaining)}
	}

	return plan, nil
}

// findCycle walks dependency edges within the set of unprocessed nodes
// until it revisits one. Every unprocessed node has at least one
// unprocessed dependency, so the walk always closes.
func findCycle(remaining map[string]ResourceSpec) []string {
	keys := make([]string, 0, len(remaining))
	for key := range remaining {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[string]int, len(remaining)) // key -> position in path
	var path []string
	current := keys[0]
	for {
		if pos, ok := seen[current]; ok {
			return rotateSmallestFirst(path[pos:])
		}
		seen[current] = len(path)
		path = append(path, current)

		next := ""
		for _, dep := range remaining[current].DependsOn {
			if _, ok := remaining[dep]; ok && (next == "" || dep < next) {
				next = dep
			}
		}
		current = next
	}
}

// rotateSmallestFirst rotates the cycle so the lexically smallest key leads,
// keeping error messages deterministic.
func rotateSmallestFirst(cycle []string) []string {
	min := 0
	for i, key := range cycle {
		if key < cycle[min] {
			min = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[min:]...)
	out = append(out, cycle[:min]...)
	return out
}
