package ports

import (
	"context"

	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/events"
	"cortex-backend/domain/services"
)

// GraphRepository is the port for graph persistence. The read pipeline
// only ever sees snapshots; mutations run serialized inside Mutate so
// concurrent feedback can never race on the same neuron.
type GraphRepository interface {
	// Save persists a graph (create or update)
	Save(ctx context.Context, graph *aggregates.Graph) error

	// GetByID returns a snapshot of the graph, safe to read while
	// writers proceed
	GetByID(ctx context.Context, id aggregates.GraphID) (*aggregates.Graph, error)

	// GetByWorkspace returns snapshots of all graphs in a workspace
	GetByWorkspace(ctx context.Context, workspaceID string) ([]*aggregates.Graph, error)

	// Mutate runs fn against the live graph under the store's write
	// lock; fn returning an error aborts the mutation
	Mutate(ctx context.Context, id aggregates.GraphID, fn func(*aggregates.Graph) error) error

	// Delete removes a graph
	Delete(ctx context.Context, id aggregates.GraphID) error
}

// ContextPackRepository retains built packs so later feedback can be
// correlated with the pack it scores
type ContextPackRepository interface {
	// Save stores a built pack
	Save(ctx context.Context, pack *services.ContextPack) error

	// GetByID retrieves a pack by its id
	GetByID(ctx context.Context, packID string) (*services.ContextPack, error)
}

// EventPublisher is the port for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// WeightsProvider supplies the current ranking weight vector.
// Implementations may hot-reload from configuration.
type WeightsProvider interface {
	// Current returns the weight vector to rank with right now
	Current() services.Weights
}
