package persistence

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cortex-backend/application/ports"
	"cortex-backend/domain/core/aggregates"
)

// TraceGraphRepository wraps a repository so every call produces a span
func TraceGraphRepository(inner ports.GraphRepository, tracer trace.Tracer) ports.GraphRepository {
	return &tracedGraphRepository{inner: inner, tracer: tracer}
}

type tracedGraphRepository struct {
	inner  ports.GraphRepository
	tracer trace.Tracer
}

func (r *tracedGraphRepository) Save(ctx context.Context, graph *aggregates.Graph) error {
	ctx, span := r.tracer.Start(ctx, "repository.Save",
		trace.WithAttributes(
			attribute.String("graph.id", graph.ID().String()),
			attribute.Int("graph.neurons", graph.NeuronCount()),
		),
	)
	defer span.End()

	err := r.inner.Save(ctx, graph)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *tracedGraphRepository) GetByID(ctx context.Context, id aggregates.GraphID) (*aggregates.Graph, error) {
	ctx, span := r.tracer.Start(ctx, "repository.GetByID",
		trace.WithAttributes(attribute.String("graph.id", id.String())),
	)
	defer span.End()

	graph, err := r.inner.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("graph.neurons", graph.NeuronCount()),
		attribute.Int("graph.synapses", graph.SynapseCount()),
	)
	return graph, nil
}

func (r *tracedGraphRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]*aggregates.Graph, error) {
	ctx, span := r.tracer.Start(ctx, "repository.GetByWorkspace",
		trace.WithAttributes(attribute.String("workspace.id", workspaceID)),
	)
	defer span.End()

	graphs, err := r.inner.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("graphs.count", len(graphs)))
	return graphs, nil
}

func (r *tracedGraphRepository) Mutate(ctx context.Context, id aggregates.GraphID, fn func(*aggregates.Graph) error) error {
	ctx, span := r.tracer.Start(ctx, "repository.Mutate",
		trace.WithAttributes(attribute.String("graph.id", id.String())),
	)
	defer span.End()

	err := r.inner.Mutate(ctx, id, fn)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *tracedGraphRepository) Delete(ctx context.Context, id aggregates.GraphID) error {
	ctx, span := r.tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.String("graph.id", id.String())),
	)
	defer span.End()

	err := r.inner.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
