package memory

import (
	"context"
	"sync"

	"cortex-backend/domain/core/aggregates"
	pkgerrors "cortex-backend/pkg/errors"
)

// GraphStore is an in-memory GraphRepository. Reads hand out deep
// snapshots so the build pipeline works on immutable data; Mutate runs
// under the write lock so feedback batches serialize.
type GraphStore struct {
	mu     sync.RWMutex
	graphs map[string]*aggregates.Graph
}

// NewGraphStore creates a new in-memory graph store
func NewGraphStore() *GraphStore {
	return &GraphStore{
		graphs: make(map[string]*aggregates.Graph),
	}
}

// Save persists a graph (create or update)
func (s *GraphStore) Save(ctx context.Context, graph *aggregates.Graph) error {
	if graph == nil {
		return pkgerrors.NewValidationError("graph cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graphs[graph.ID().String()] = graph
	return nil
}

// GetByID returns a deep snapshot of the graph
func (s *GraphStore) GetByID(ctx context.Context, id aggregates.GraphID) (*aggregates.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	graph, exists := s.graphs[id.String()]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("graph")
	}
	return graph.Clone(), nil
}

// GetByWorkspace returns snapshots of all graphs in a workspace
func (s *GraphStore) GetByWorkspace(ctx context.Context, workspaceID string) ([]*aggregates.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*aggregates.Graph, 0)
	for _, graph := range s.graphs {
		if graph.WorkspaceID() == workspaceID {
			result = append(result, graph.Clone())
		}
	}
	return result, nil
}

// Mutate runs fn against the live graph under the write lock
func (s *GraphStore) Mutate(ctx context.Context, id aggregates.GraphID, fn func(*aggregates.Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, exists := s.graphs[id.String()]
	if !exists {
		return pkgerrors.NewNotFoundError("graph")
	}
	return fn(graph)
}

// Delete removes a graph
func (s *GraphStore) Delete(ctx context.Context, id aggregates.GraphID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.graphs[id.String()]; !exists {
		return pkgerrors.NewNotFoundError("graph")
	}
	delete(s.graphs, id.String())
	return nil
}
