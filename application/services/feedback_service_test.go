package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	"cortex-backend/infrastructure/messaging"
	"cortex-backend/infrastructure/persistence/memory"
	pkgerrors "cortex-backend/pkg/errors"
)

func newFeedbackFixture(t *testing.T) (*FeedbackService, *memory.GraphStore) {
	t.Helper()
	graphStore := memory.NewGraphStore()
	logger := zap.NewNop()
	svc := NewFeedbackService(
		graphStore,
		messaging.NewNoopPublisher(logger),
		nil,
		nil,
		logger,
	)
	return svc, graphStore
}

func feedbackNeuron(t *testing.T, store *memory.GraphStore, graphID aggregates.GraphID, confidence int) *entities.Neuron {
	t.Helper()
	neuron, err := entities.NewNeuron(entities.TypeInsight, "adjustable", entities.ScopeGlobal)
	require.NoError(t, err)
	neuron.SetConfidence(confidence)

	err = store.Mutate(context.Background(), graphID, func(g *aggregates.Graph) error {
		return g.AddNeuron(neuron)
	})
	require.NoError(t, err)
	return neuron
}

func storedConfidence(t *testing.T, store *memory.GraphStore, graphID aggregates.GraphID, neuron *entities.Neuron) int {
	t.Helper()
	graph, err := store.GetByID(context.Background(), graphID)
	require.NoError(t, err)
	stored, err := graph.GetNeuron(neuron.ID())
	require.NoError(t, err)
	return stored.Confidence()
}

func TestApply_ReinforceAndWeaken(t *testing.T) {
	svc, store := newFeedbackFixture(t)
	graph := seedGraph(t, store)
	helpful := feedbackNeuron(t, store, graph.ID(), 50)
	misleading := feedbackNeuron(t, store, graph.ID(), 50)

	result, err := svc.Apply(context.Background(), graph.ID(), Feedback{
		ContextPackID:    "pack-1",
		Success:          true,
		Score:            80,
		ReinforceNeurons: []string{helpful.ID().String()},
		WeakenNeurons:    []string{misleading.ID().String()},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Reinforced)
	assert.Equal(t, 1, result.Weakened)
	assert.Empty(t, result.UnknownNeurons)
	assert.Equal(t, 55, storedConfidence(t, store, graph.ID(), helpful))
	assert.Equal(t, 45, storedConfidence(t, store, graph.ID(), misleading))
}

func TestApply_ClampsAtBounds(t *testing.T) {
	svc, store := newFeedbackFixture(t)
	graph := seedGraph(t, store)
	nearTop := feedbackNeuron(t, store, graph.ID(), 98)
	nearBottom := feedbackNeuron(t, store, graph.ID(), 2)

	_, err := svc.Apply(context.Background(), graph.ID(), Feedback{
		ContextPackID:    "pack-1",
		ReinforceNeurons: []string{nearTop.ID().String()},
		WeakenNeurons:    []string{nearBottom.ID().String()},
	})
	require.NoError(t, err)

	assert.Equal(t, 100, storedConfidence(t, store, graph.ID(), nearTop))
	assert.Equal(t, 0, storedConfidence(t, store, graph.ID(), nearBottom))
}

func TestApply_ReportsUnknownNeurons(t *testing.T) {
	svc, store := newFeedbackFixture(t)
	graph := seedGraph(t, store)
	known := feedbackNeuron(t, store, graph.ID(), 50)

	result, err := svc.Apply(context.Background(), graph.ID(), Feedback{
		ContextPackID:    "pack-1",
		ReinforceNeurons: []string{known.ID().String(), "ghost-1"},
		WeakenNeurons:    []string{"ghost-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Reinforced)
	assert.Equal(t, 0, result.Weakened)
	assert.ElementsMatch(t, []string{"ghost-1", "ghost-2"}, result.UnknownNeurons)
	assert.Equal(t, 55, storedConfidence(t, store, graph.ID(), known), "known neurons still apply")
}

func TestApply_UnknownGraph(t *testing.T) {
	svc, _ := newFeedbackFixture(t)

	result, err := svc.Apply(context.Background(), aggregates.GraphID("missing"), Feedback{
		ContextPackID:    "pack-1",
		ReinforceNeurons: []string{"n-1"},
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestApply_EmptyFeedbackIsANoop(t *testing.T) {
	svc, store := newFeedbackFixture(t)
	graph := seedGraph(t, store)

	result, err := svc.Apply(context.Background(), graph.ID(), Feedback{ContextPackID: "pack-1"})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Reinforced)
	assert.Equal(t, 0, result.Weakened)
	assert.Empty(t, result.UnknownNeurons)
}
