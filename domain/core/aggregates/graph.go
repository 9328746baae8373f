package aggregates

import (
	"fmt"
	"sort"
	"time"

	"cortex-backend/domain/config"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	"cortex-backend/domain/events"
	pkgerrors "cortex-backend/pkg/errors"

	"github.com/google/uuid"
)

// GraphID represents a unique graph identifier
type GraphID string

// NewGraphID creates a new random GraphID
func NewGraphID() GraphID {
	return GraphID(uuid.New().String())
}

// String returns the string representation
func (id GraphID) String() string {
	return string(id)
}

// Graph is the aggregate root for one workspace's knowledge graph.
// It owns every neuron and synapse and enforces referential integrity.
// A graph handed to the read pipeline is a snapshot clone; the only
// mutation path on a live graph is AdjustConfidence.
type Graph struct {
	id          GraphID
	workspaceID string
	name        string
	neurons     map[string]*entities.Neuron
	synapses    map[string]*entities.Synapse
	adjacency   map[string][]*entities.Synapse
	version     int
	createdAt   time.Time
	updatedAt   time.Time
	config      *config.DomainConfig
	events      []events.DomainEvent
}

// NewGraph creates a new graph aggregate with default configuration
func NewGraph(workspaceID, name string) (*Graph, error) {
	return NewGraphWithConfig(workspaceID, name, config.DefaultDomainConfig())
}

// NewGraphWithConfig creates a new graph aggregate with specific configuration
func NewGraphWithConfig(workspaceID, name string, cfg *config.DomainConfig) (*Graph, error) {
	if workspaceID == "" {
		return nil, pkgerrors.NewValidationError("workspaceID is required")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if name == "" {
		name = cfg.DefaultGraphName
	}

	now := time.Now()
	g := &Graph{
		id:          NewGraphID(),
		workspaceID: workspaceID,
		name:        name,
		neurons:     make(map[string]*entities.Neuron),
		synapses:    make(map[string]*entities.Synapse),
		adjacency:   make(map[string][]*entities.Synapse),
		version:     1,
		createdAt:   now,
		updatedAt:   now,
		config:      cfg,
		events:      []events.DomainEvent{},
	}

	g.addEvent(events.NewGraphCreated(g.id.String(), workspaceID, name))

	return g, nil
}

// ReconstructGraph recreates a graph shell from stored data; neurons and
// synapses are loaded separately via LoadNeuron/LoadSynapse
func ReconstructGraph(id, workspaceID, name string, version int, createdAt, updatedAt time.Time) (*Graph, error) {
	if id == "" || workspaceID == "" {
		return nil, pkgerrors.NewValidationError("required fields missing for graph reconstruction")
	}
	if version < 1 {
		version = 1
	}

	return &Graph{
		id:          GraphID(id),
		workspaceID: workspaceID,
		name:        name,
		neurons:     make(map[string]*entities.Neuron),
		synapses:    make(map[string]*entities.Synapse),
		adjacency:   make(map[string][]*entities.Synapse),
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		config:      config.DefaultDomainConfig(),
		events:      []events.DomainEvent{},
	}, nil
}

// ID returns the graph's unique identifier
func (g *Graph) ID() GraphID {
	return g.id
}

// WorkspaceID returns the owning workspace
func (g *Graph) WorkspaceID() string {
	return g.workspaceID
}

// Name returns the graph's name
func (g *Graph) Name() string {
	return g.name
}

// Version returns the graph version, bumped on every mutation
func (g *Graph) Version() int {
	return g.version
}

// CreatedAt returns when the graph was created
func (g *Graph) CreatedAt() time.Time {
	return g.createdAt
}

// UpdatedAt returns when the graph was last mutated
func (g *Graph) UpdatedAt() time.Time {
	return g.updatedAt
}

// NeuronCount returns the number of neurons in the graph
func (g *Graph) NeuronCount() int {
	return len(g.neurons)
}

// SynapseCount returns the number of synapses in the graph
func (g *Graph) SynapseCount() int {
	return len(g.synapses)
}

// AddNeuron adds a neuron to the graph
func (g *Graph) AddNeuron(n *entities.Neuron) error {
	if n == nil {
		return pkgerrors.NewValidationError("neuron cannot be nil")
	}
	key := n.ID().String()
	if _, exists := g.neurons[key]; exists {
		return pkgerrors.NewConflictError("neuron already exists in graph")
	}
	if len(g.neurons) >= g.config.MaxNeuronsPerGraph {
		return fmt.Errorf("maximum neurons reached: %d", g.config.MaxNeuronsPerGraph)
	}

	g.neurons[key] = n
	g.touch()
	return nil
}

// LoadNeuron adds a neuron during reconstruction from storage.
// Unlike AddNeuron it does not bump the version.
func (g *Graph) LoadNeuron(n *entities.Neuron) error {
	if n == nil {
		return pkgerrors.NewValidationError("neuron cannot be nil")
	}
	g.neurons[n.ID().String()] = n
	return nil
}

// AddSynapse connects two existing neurons
func (g *Graph) AddSynapse(s *entities.Synapse) error {
	if s == nil {
		return pkgerrors.NewValidationError("synapse cannot be nil")
	}
	if _, ok := g.neurons[s.Source().String()]; !ok {
		return pkgerrors.NewValidationError("synapse source neuron does not exist")
	}
	if _, ok := g.neurons[s.Target().String()]; !ok {
		return pkgerrors.NewValidationError("synapse target neuron does not exist")
	}
	key := s.ID().String()
	if _, exists := g.synapses[key]; exists {
		return pkgerrors.NewConflictError("synapse already exists")
	}
	if len(g.synapses) >= g.config.MaxSynapsesPerGraph {
		return fmt.Errorf("maximum synapses reached: %d", g.config.MaxSynapsesPerGraph)
	}

	g.synapses[key] = s
	g.indexSynapse(s)
	g.touch()
	return nil
}

// LoadSynapse adds a synapse during reconstruction from storage
func (g *Graph) LoadSynapse(s *entities.Synapse) error {
	if s == nil {
		return pkgerrors.NewValidationError("synapse cannot be nil")
	}
	if _, ok := g.neurons[s.Source().String()]; !ok {
		return fmt.Errorf("source neuron %s not found for synapse %s", s.Source(), s.ID())
	}
	if _, ok := g.neurons[s.Target().String()]; !ok {
		return fmt.Errorf("target neuron %s not found for synapse %s", s.Target(), s.ID())
	}
	g.synapses[s.ID().String()] = s
	g.indexSynapse(s)
	return nil
}

// GetNeuron retrieves a neuron by ID
func (g *Graph) GetNeuron(id valueobjects.NeuronID) (*entities.Neuron, error) {
	n, ok := g.neurons[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("neuron")
	}
	return n, nil
}

// HasNeuron checks if a neuron exists in the graph
func (g *Graph) HasNeuron(id valueobjects.NeuronID) bool {
	_, ok := g.neurons[id.String()]
	return ok
}

// Neurons returns all neurons ordered by id.
// Stable ordering keeps the whole pipeline deterministic.
func (g *Graph) Neurons() []*entities.Neuron {
	out := make([]*entities.Neuron, 0, len(g.neurons))
	for _, n := range g.neurons {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// Synapses returns all synapses ordered by id
func (g *Graph) Synapses() []*entities.Synapse {
	out := make([]*entities.Synapse, 0, len(g.synapses))
	for _, s := range g.synapses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// SynapsesOf returns all synapses touching the given neuron
func (g *Graph) SynapsesOf(id valueobjects.NeuronID) []*entities.Synapse {
	adj := g.adjacency[id.String()]
	out := make([]*entities.Synapse, len(adj))
	copy(out, adj)
	return out
}

// SynapsesOfType returns all synapses of one type ordered by id
func (g *Graph) SynapsesOfType(t entities.SynapseType) []*entities.Synapse {
	out := make([]*entities.Synapse, 0)
	for _, s := range g.synapses {
		if s.Type() == t {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// HasDirectSynapse reports whether two neurons are joined by any synapse,
// in either direction
func (g *Graph) HasDirectSynapse(a, b valueobjects.NeuronID) bool {
	for _, s := range g.adjacency[a.String()] {
		if other, ok := s.OtherEnd(a); ok && other.Equals(b) {
			return true
		}
	}
	return false
}

// NeighborsWithin walks outward from an anchor neuron across all
// synapses regardless of direction, up to the given depth, and
// returns every reached neuron id (the anchor excluded) in
// deterministic breadth-first order.
func (g *Graph) NeighborsWithin(anchor valueobjects.NeuronID, depth int) []valueobjects.NeuronID {
	if depth <= 0 {
		return nil
	}
	if _, ok := g.neurons[anchor.String()]; !ok {
		return nil
	}

	visited := map[string]bool{anchor.String(): true}
	frontier := []valueobjects.NeuronID{anchor}
	var reached []valueobjects.NeuronID

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []valueobjects.NeuronID
		for _, current := range frontier {
			adj := g.SynapsesOf(current)
			sort.Slice(adj, func(i, j int) bool {
				return adj[i].ID().String() < adj[j].ID().String()
			})
			for _, s := range adj {
				other, ok := s.OtherEnd(current)
				if !ok || visited[other.String()] {
					continue
				}
				visited[other.String()] = true
				reached = append(reached, other)
				next = append(next, other)
			}
		}
		frontier = next
	}

	return reached
}

// AdjustConfidence shifts a neuron's confidence by delta, clamped to
// [0,100]. Returns the new confidence and whether the neuron exists.
// This is the only mutation the feedback path performs.
func (g *Graph) AdjustConfidence(id valueobjects.NeuronID, delta int) (int, bool) {
	n, ok := g.neurons[id.String()]
	if !ok {
		return 0, false
	}
	updated := n.AdjustConfidence(delta)
	g.touch()
	return updated, true
}

// Validate ensures graph invariants hold
func (g *Graph) Validate() error {
	for _, s := range g.synapses {
		if _, ok := g.neurons[s.Source().String()]; !ok {
			return pkgerrors.NewValidationError("synapse references non-existent source neuron")
		}
		if _, ok := g.neurons[s.Target().String()]; !ok {
			return pkgerrors.NewValidationError("synapse references non-existent target neuron")
		}
	}
	return nil
}

// Clone returns a deep snapshot of the graph. The read pipeline runs
// against clones so concurrent feedback writes can never tear a build.
func (g *Graph) Clone() *Graph {
	cp := &Graph{
		id:          g.id,
		workspaceID: g.workspaceID,
		name:        g.name,
		neurons:     make(map[string]*entities.Neuron, len(g.neurons)),
		synapses:    make(map[string]*entities.Synapse, len(g.synapses)),
		adjacency:   make(map[string][]*entities.Synapse, len(g.adjacency)),
		version:     g.version,
		createdAt:   g.createdAt,
		updatedAt:   g.updatedAt,
		config:      g.config,
		events:      []events.DomainEvent{},
	}
	for k, n := range g.neurons {
		cp.neurons[k] = n.Clone()
	}
	for k, s := range g.synapses {
		sc := s.Clone()
		cp.synapses[k] = sc
		cp.indexSynapse(sc)
	}
	return cp
}

// GetUncommittedEvents returns all uncommitted domain events
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(g.events))
	copy(out, g.events)
	return out
}

// MarkEventsAsCommitted clears the uncommitted events
func (g *Graph) MarkEventsAsCommitted() {
	g.events = []events.DomainEvent{}
}

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}

func (g *Graph) indexSynapse(s *entities.Synapse) {
	g.adjacency[s.Source().String()] = append(g.adjacency[s.Source().String()], s)
	g.adjacency[s.Target().String()] = append(g.adjacency[s.Target().String()], s)
}

func (g *Graph) touch() {
	g.updatedAt = time.Now()
	g.version++
}
