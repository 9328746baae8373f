package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	domainservices "cortex-backend/domain/services"
	"cortex-backend/infrastructure/messaging"
	"cortex-backend/infrastructure/persistence/memory"
	pkgerrors "cortex-backend/pkg/errors"
)

func newBuilderFixture(t *testing.T) (*StateBuilderService, *memory.GraphStore, *memory.PackStore) {
	t.Helper()
	graphStore := memory.NewGraphStore()
	packStore := memory.NewPackStore(time.Minute)
	t.Cleanup(packStore.Close)

	logger := zap.NewNop()
	builder := NewStateBuilderService(
		graphStore,
		packStore,
		messaging.NewNoopPublisher(logger),
		nil,
		nil,
		nil,
		logger,
	)
	return builder, graphStore, packStore
}

func seedGraph(t *testing.T, store *memory.GraphStore) *aggregates.Graph {
	t.Helper()
	graph, err := aggregates.NewGraph("ws-1", "Builder Test")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), graph))
	return graph
}

func addActiveNeuron(t *testing.T, store *memory.GraphStore, graphID aggregates.GraphID, neuronType entities.NeuronType, statement string) *entities.Neuron {
	t.Helper()
	neuron, err := entities.NewNeuron(neuronType, statement, entities.ScopeGlobal)
	require.NoError(t, err)
	neuron.Activate()

	err = store.Mutate(context.Background(), graphID, func(g *aggregates.Graph) error {
		return g.AddNeuron(neuron)
	})
	require.NoError(t, err)
	return neuron
}

func TestBuildContextPack_FullPipeline(t *testing.T) {
	builder, graphStore, _ := newBuilderFixture(t)
	graph := seedGraph(t, graphStore)

	rule := addActiveNeuron(t, graphStore, graph.ID(), entities.TypeRule, "review before merge")
	require.NoError(t, rule.SetPayload(entities.RulePayload{Enforcement: entities.EnforcementMust}))
	decision := addActiveNeuron(t, graphStore, graph.ID(), entities.TypeDecision, "dynamo over postgres")
	doc := addActiveNeuron(t, graphStore, graph.ID(), entities.TypeDoc, "onboarding guide")

	pack, err := builder.BuildContextPack(context.Background(), graph.ID(), domainservices.StateQuery{}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, pack.ID)
	assert.Equal(t, 3, pack.TotalNeurons)
	require.Len(t, pack.Policies, 1)
	assert.Equal(t, rule.ID().String(), pack.Policies[0].ID)
	require.Len(t, pack.Decisions, 1)
	assert.Equal(t, decision.ID().String(), pack.Decisions[0].ID)
	require.Len(t, pack.References, 1)
	assert.Equal(t, doc.ID().String(), pack.References[0].ID)
	require.Len(t, pack.Constraints, 1)
	assert.Equal(t, rule.ID().String(), pack.Constraints[0].ID)
}

func TestBuildContextPack_UnknownGraph(t *testing.T) {
	builder, _, _ := newBuilderFixture(t)

	pack, err := builder.BuildContextPack(context.Background(), aggregates.GraphID("missing"), domainservices.StateQuery{}, nil)

	assert.Nil(t, pack)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestBuildContextPack_EmptyGraph(t *testing.T) {
	builder, graphStore, _ := newBuilderFixture(t)
	graph := seedGraph(t, graphStore)

	pack, err := builder.BuildContextPack(context.Background(), graph.ID(), domainservices.StateQuery{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, pack.TotalNeurons)
	assert.Equal(t, "일반 작업 컨텍스트", pack.Mission)
	assert.Empty(t, pack.Policies)
	assert.Empty(t, pack.ExcludedNeurons)
}

func TestBuildContextPack_ExcludesContradictionLoser(t *testing.T) {
	builder, graphStore, _ := newBuilderFixture(t)
	graph := seedGraph(t, graphStore)

	strong := addActiveNeuron(t, graphStore, graph.ID(), entities.TypeRule, "use tabs")
	weak, err := entities.NewNeuron(entities.TypeRule, "use spaces", entities.ScopeGlobal)
	require.NoError(t, err)

	err = graphStore.Mutate(context.Background(), graph.ID(), func(g *aggregates.Graph) error {
		if err := g.AddNeuron(weak); err != nil {
			return err
		}
		synapse, err := entities.NewSynapse(strong.ID(), weak.ID(), entities.SynapseContradicts, 1.0)
		if err != nil {
			return err
		}
		return g.AddSynapse(synapse)
	})
	require.NoError(t, err)

	pack, err := builder.BuildContextPack(context.Background(), graph.ID(), domainservices.StateQuery{}, nil)
	require.NoError(t, err)

	require.Len(t, pack.ConflictResolutions, 1)
	assert.Equal(t, strong.ID().String(), pack.ConflictResolutions[0].WinnerID)
	assert.Equal(t, weak.ID().String(), pack.ConflictResolutions[0].LoserID)
	assert.Equal(t, []string{weak.ID().String()}, pack.ExcludedNeurons)

	for _, policy := range pack.Policies {
		assert.NotEqual(t, weak.ID().String(), policy.ID)
	}
}

func TestBuildContextPack_OptionsOverrideDefaults(t *testing.T) {
	builder, graphStore, _ := newBuilderFixture(t)
	graph := seedGraph(t, graphStore)

	addActiveNeuron(t, graphStore, graph.ID(), entities.TypeDecision, "first decision")
	addActiveNeuron(t, graphStore, graph.ID(), entities.TypeDecision, "second decision")
	addActiveNeuron(t, graphStore, graph.ID(), entities.TypeDoc, "background doc")

	pack, err := builder.BuildContextPack(context.Background(), graph.ID(), domainservices.StateQuery{}, &BuildOptions{
		MaxNeurons:   1,
		ExcludeTypes: []entities.NeuronType{entities.TypeDoc},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, pack.TotalNeurons)
	assert.Empty(t, pack.References)
}

func TestBuildContextPack_RetainsPackForRetrieval(t *testing.T) {
	builder, graphStore, _ := newBuilderFixture(t)
	graph := seedGraph(t, graphStore)
	addActiveNeuron(t, graphStore, graph.ID(), entities.TypeRule, "retained rule")

	built, err := builder.BuildContextPack(context.Background(), graph.ID(), domainservices.StateQuery{}, nil)
	require.NoError(t, err)

	fetched, err := builder.GetContextPack(context.Background(), built.ID)
	require.NoError(t, err)
	assert.Equal(t, built.ID, fetched.ID)
	assert.Equal(t, built.TotalNeurons, fetched.TotalNeurons)

	_, err = builder.GetContextPack(context.Background(), "no-such-pack")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestBuildContextPack_Deterministic(t *testing.T) {
	builder, graphStore, _ := newBuilderFixture(t)
	graph := seedGraph(t, graphStore)

	for _, statement := range []string{"alpha", "bravo", "charlie", "delta"} {
		addActiveNeuron(t, graphStore, graph.ID(), entities.TypeDecision, statement)
	}

	first, err := builder.BuildContextPack(context.Background(), graph.ID(), domainservices.StateQuery{}, nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		next, err := builder.BuildContextPack(context.Background(), graph.ID(), domainservices.StateQuery{}, nil)
		require.NoError(t, err)
		require.Len(t, next.Decisions, len(first.Decisions))
		for j := range first.Decisions {
			assert.Equal(t, first.Decisions[j].ID, next.Decisions[j].ID)
		}
	}
}
