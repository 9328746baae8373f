package services

import (
	"cortex-backend/domain/config"
	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
)

// CollectorOptions narrows which neuron types are eligible.
// When IncludeTypes is set it wins; otherwise ExcludeTypes applies,
// defaulting to folder and file.
type CollectorOptions struct {
	IncludeTypes []entities.NeuronType
	ExcludeTypes []entities.NeuronType
}

// DefaultExcludeTypes are filtered out unless the caller overrides them.
// Folders and files are navigation structure, not expression units.
func DefaultExcludeTypes() []entities.NeuronType {
	return []entities.NeuronType{entities.TypeFolder, entities.TypeFile}
}

// CandidateCollector filters and expands the graph into the candidate
// set handed to the ranker. It is a pure function of a graph snapshot
// and a query; it never mutates either.
type CandidateCollector struct {
	cfg *config.DomainConfig
}

// NewCandidateCollector creates a collector with the given domain config
func NewCandidateCollector(cfg *config.DomainConfig) *CandidateCollector {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &CandidateCollector{cfg: cfg}
}

// Collect returns the eligible candidates for a query: type-filtered,
// never deprecated, scope-matched, expanded by a bounded traversal from
// the project anchor, deduplicated, with core types ordered first.
func (c *CandidateCollector) Collect(g *aggregates.Graph, q StateQuery, opts CollectorOptions) []*entities.Neuron {
	if g == nil {
		return nil
	}

	typeAllowed := buildTypeFilter(opts)

	seen := make(map[string]bool)
	var candidates []*entities.Neuron

	for _, n := range g.Neurons() {
		if !typeAllowed(n.Type()) {
			continue
		}
		if n.IsDeprecated() {
			continue
		}
		if !c.matchesScope(g, n, q) {
			continue
		}
		seen[n.ID().String()] = true
		candidates = append(candidates, n)
	}

	// Expand around the project anchor: anything within reach of the
	// project neuron is situationally relevant even if its scope
	// filter alone would not have admitted it.
	if q.ProjectID != "" {
		if anchor, err := valueobjects.NewNeuronIDFromString(q.ProjectID); err == nil {
			for _, id := range g.NeighborsWithin(anchor, c.cfg.TraversalDepth) {
				if seen[id.String()] {
					continue
				}
				n, err := g.GetNeuron(id)
				if err != nil {
					continue
				}
				if !typeAllowed(n.Type()) || n.IsDeprecated() {
					continue
				}
				seen[id.String()] = true
				candidates = append(candidates, n)
			}
		}
	}

	return orderCoreFirst(candidates)
}

// matchesScope applies the scope filter from the query's perspective
func (c *CandidateCollector) matchesScope(g *aggregates.Graph, n *entities.Neuron, q StateQuery) bool {
	switch n.Scope() {
	case entities.ScopeGlobal:
		return true
	case entities.ScopeProject:
		if q.ProjectID == "" {
			return false
		}
		return n.ProjectID() == "" || n.ProjectID() == q.ProjectID
	case entities.ScopeRole:
		if q.Role == "" {
			return false
		}
		return n.RoleID() == "" || n.RoleID() == q.Role
	case entities.ScopeTask:
		// A task-scoped neuron is relevant only when it is directly
		// wired to the task being worked on.
		if q.TaskID == "" {
			return false
		}
		taskID, err := valueobjects.NewNeuronIDFromString(q.TaskID)
		if err != nil {
			return false
		}
		return g.HasDirectSynapse(n.ID(), taskID)
	default:
		return false
	}
}

// buildTypeFilter compiles the include/exclude options into a predicate
func buildTypeFilter(opts CollectorOptions) func(entities.NeuronType) bool {
	if len(opts.IncludeTypes) > 0 {
		include := make(map[entities.NeuronType]bool, len(opts.IncludeTypes))
		for _, t := range opts.IncludeTypes {
			include[t] = true
		}
		return func(t entities.NeuronType) bool { return include[t] }
	}

	exclude := opts.ExcludeTypes
	if exclude == nil {
		exclude = DefaultExcludeTypes()
	}
	excluded := make(map[entities.NeuronType]bool, len(exclude))
	for _, t := range exclude {
		excluded[t] = true
	}
	return func(t entities.NeuronType) bool { return !excluded[t] }
}

// orderCoreFirst stably partitions candidates so normative types
// (rule, identity, decision, preference, playbook) come first. This
// biases later ranking ties toward normative content.
func orderCoreFirst(candidates []*entities.Neuron) []*entities.Neuron {
	ordered := make([]*entities.Neuron, 0, len(candidates))
	for _, n := range candidates {
		if n.Type().IsCore() {
			ordered = append(ordered, n)
		}
	}
	for _, n := range candidates {
		if !n.Type().IsCore() {
			ordered = append(ordered, n)
		}
	}
	return ordered
}
