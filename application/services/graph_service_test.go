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

func newGraphServiceFixture(t *testing.T) (*GraphService, *memory.GraphStore) {
	t.Helper()
	graphStore := memory.NewGraphStore()
	logger := zap.NewNop()
	svc := NewGraphService(graphStore, messaging.NewNoopPublisher(logger), nil, logger)
	return svc, graphStore
}

func TestCreateGraph_DefaultsNameAndCommitsEvents(t *testing.T) {
	svc, store := newGraphServiceFixture(t)
	ctx := context.Background()

	graph, err := svc.CreateGraph(ctx, "ws-1", "")
	require.NoError(t, err)

	assert.Equal(t, "Default Workspace", graph.Name())
	assert.Empty(t, graph.GetUncommittedEvents())

	stored, err := store.GetByID(ctx, graph.ID())
	require.NoError(t, err)
	assert.Equal(t, "ws-1", stored.WorkspaceID())
}

func TestAddNeuron_AppliesAuthoringFields(t *testing.T) {
	svc, store := newGraphServiceFixture(t)
	ctx := context.Background()
	graph, err := svc.CreateGraph(ctx, "ws-1", "Authoring")
	require.NoError(t, err)

	confidence := 80
	importance := 9
	neuronID, err := svc.AddNeuron(ctx, graph.ID(), CreateNeuronInput{
		Type:       entities.TypeRule,
		Statement:  "review before merge",
		Why:        "regressions are expensive",
		Scope:      entities.ScopeProject,
		Status:     entities.StatusActive,
		Confidence: &confidence,
		Importance: &importance,
		Tags:       []string{"process"},
		ProjectID:  "proj-1",
		Payload:    entities.RulePayload{Enforcement: entities.EnforcementMust},
	})
	require.NoError(t, err)

	stored, err := store.GetByID(ctx, graph.ID())
	require.NoError(t, err)
	neuron, err := stored.GetNeuron(neuronID)
	require.NoError(t, err)

	assert.Equal(t, entities.StatusActive, neuron.Status())
	assert.Equal(t, 80, neuron.Confidence())
	assert.Equal(t, 9, neuron.Importance())
	assert.True(t, neuron.HasTag("process"))
	assert.Equal(t, "proj-1", neuron.ProjectID())
	rule, ok := neuron.Rule()
	require.True(t, ok)
	assert.Equal(t, entities.EnforcementMust, rule.Enforcement)
}

func TestAddNeuron_RejectsMismatchedPayload(t *testing.T) {
	svc, _ := newGraphServiceFixture(t)
	ctx := context.Background()
	graph, err := svc.CreateGraph(ctx, "ws-1", "Authoring")
	require.NoError(t, err)

	_, err = svc.AddNeuron(ctx, graph.ID(), CreateNeuronInput{
		Type:      entities.TypeDecision,
		Statement: "wrong payload",
		Scope:     entities.ScopeGlobal,
		Payload:   entities.RulePayload{Enforcement: entities.EnforcementMust},
	})

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAddSynapse_LinksExistingNeurons(t *testing.T) {
	svc, store := newGraphServiceFixture(t)
	ctx := context.Background()
	graph, err := svc.CreateGraph(ctx, "ws-1", "Authoring")
	require.NoError(t, err)

	sourceID, err := svc.AddNeuron(ctx, graph.ID(), CreateNeuronInput{
		Type: entities.TypeDecision, Statement: "newer decision", Scope: entities.ScopeGlobal,
	})
	require.NoError(t, err)
	targetID, err := svc.AddNeuron(ctx, graph.ID(), CreateNeuronInput{
		Type: entities.TypeDecision, Statement: "older decision", Scope: entities.ScopeGlobal,
	})
	require.NoError(t, err)

	synapseID, err := svc.AddSynapse(ctx, graph.ID(), CreateSynapseInput{
		SourceID: sourceID,
		TargetID: targetID,
		Type:     entities.SynapseSupersedes,
		Weight:   0.9,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, synapseID.String())

	stored, err := store.GetByID(ctx, graph.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.SynapseCount())
}

func TestAddSynapse_RejectsMissingEndpoint(t *testing.T) {
	svc, _ := newGraphServiceFixture(t)
	ctx := context.Background()
	graph, err := svc.CreateGraph(ctx, "ws-1", "Authoring")
	require.NoError(t, err)

	sourceID, err := svc.AddNeuron(ctx, graph.ID(), CreateNeuronInput{
		Type: entities.TypeConcept, Statement: "exists", Scope: entities.ScopeGlobal,
	})
	require.NoError(t, err)

	ghost, err := entities.NewNeuron(entities.TypeConcept, "never added", entities.ScopeGlobal)
	require.NoError(t, err)

	_, err = svc.AddSynapse(ctx, graph.ID(), CreateSynapseInput{
		SourceID: sourceID,
		TargetID: ghost.ID(),
		Type:     entities.SynapseReferences,
		Weight:   0.5,
	})
	require.Error(t, err)
}

func TestAddNeuron_UnknownGraph(t *testing.T) {
	svc, _ := newGraphServiceFixture(t)

	_, err := svc.AddNeuron(context.Background(), aggregates.GraphID("missing"), CreateNeuronInput{
		Type: entities.TypeConcept, Statement: "orphan", Scope: entities.ScopeGlobal,
	})

	assert.True(t, pkgerrors.IsNotFound(err))
}
