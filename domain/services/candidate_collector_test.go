package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
)

func newCollectorGraph(t *testing.T) *aggregates.Graph {
	t.Helper()
	graph, err := aggregates.NewGraph("ws-1", "Collector Test")
	require.NoError(t, err)
	return graph
}

func mustNeuron(t *testing.T, g *aggregates.Graph, neuronType entities.NeuronType, statement string, scope entities.Scope) *entities.Neuron {
	t.Helper()
	neuron, err := entities.NewNeuron(neuronType, statement, scope)
	require.NoError(t, err)
	require.NoError(t, g.AddNeuron(neuron))
	return neuron
}

func mustSynapse(t *testing.T, g *aggregates.Graph, source, target *entities.Neuron, synapseType entities.SynapseType) {
	t.Helper()
	synapse, err := entities.NewSynapse(source.ID(), target.ID(), synapseType, 1.0)
	require.NoError(t, err)
	require.NoError(t, g.AddSynapse(synapse))
}

func collectIDs(candidates []*entities.Neuron) map[string]bool {
	ids := make(map[string]bool, len(candidates))
	for _, n := range candidates {
		ids[n.ID().String()] = true
	}
	return ids
}

func TestCollect_ExcludesFoldersAndFilesByDefault(t *testing.T) {
	graph := newCollectorGraph(t)
	concept := mustNeuron(t, graph, entities.TypeConcept, "kept", entities.ScopeGlobal)
	folder := mustNeuron(t, graph, entities.TypeFolder, "filtered", entities.ScopeGlobal)
	file := mustNeuron(t, graph, entities.TypeFile, "filtered", entities.ScopeGlobal)

	collector := NewCandidateCollector(nil)
	ids := collectIDs(collector.Collect(graph, StateQuery{}, CollectorOptions{}))

	assert.True(t, ids[concept.ID().String()])
	assert.False(t, ids[folder.ID().String()])
	assert.False(t, ids[file.ID().String()])
}

func TestCollect_IncludeTypesWins(t *testing.T) {
	graph := newCollectorGraph(t)
	rule := mustNeuron(t, graph, entities.TypeRule, "rule", entities.ScopeGlobal)
	concept := mustNeuron(t, graph, entities.TypeConcept, "concept", entities.ScopeGlobal)
	folder := mustNeuron(t, graph, entities.TypeFolder, "folder", entities.ScopeGlobal)

	collector := NewCandidateCollector(nil)
	ids := collectIDs(collector.Collect(graph, StateQuery{}, CollectorOptions{
		IncludeTypes: []entities.NeuronType{entities.TypeRule, entities.TypeFolder},
	}))

	assert.True(t, ids[rule.ID().String()])
	assert.True(t, ids[folder.ID().String()], "explicit include overrides the default exclusion")
	assert.False(t, ids[concept.ID().String()])
}

func TestCollect_DeprecatedNeverIncluded(t *testing.T) {
	graph := newCollectorGraph(t)
	deprecated := mustNeuron(t, graph, entities.TypeRule, "retired", entities.ScopeGlobal)
	deprecated.Deprecate()

	collector := NewCandidateCollector(nil)
	ids := collectIDs(collector.Collect(graph, StateQuery{}, CollectorOptions{
		IncludeTypes: []entities.NeuronType{entities.TypeRule},
	}))

	assert.False(t, ids[deprecated.ID().String()])
}

func TestCollect_ScopeFiltering(t *testing.T) {
	graph := newCollectorGraph(t)
	global := mustNeuron(t, graph, entities.TypeConcept, "global", entities.ScopeGlobal)

	projectOurs, err := entities.NewNeuron(entities.TypeConcept, "ours", entities.ScopeProject)
	require.NoError(t, err)
	require.NoError(t, projectOurs.AttachToProject("proj-1"))
	require.NoError(t, graph.AddNeuron(projectOurs))

	projectTheirs, err := entities.NewNeuron(entities.TypeConcept, "theirs", entities.ScopeProject)
	require.NoError(t, err)
	require.NoError(t, projectTheirs.AttachToProject("proj-2"))
	require.NoError(t, graph.AddNeuron(projectTheirs))

	projectUnbound := mustNeuron(t, graph, entities.TypeConcept, "unbound", entities.ScopeProject)

	collector := NewCandidateCollector(nil)

	t.Run("without project", func(t *testing.T) {
		ids := collectIDs(collector.Collect(graph, StateQuery{}, CollectorOptions{}))
		assert.True(t, ids[global.ID().String()])
		assert.False(t, ids[projectOurs.ID().String()])
	})

	t.Run("with project", func(t *testing.T) {
		ids := collectIDs(collector.Collect(graph, StateQuery{ProjectID: "proj-1"}, CollectorOptions{}))
		assert.True(t, ids[global.ID().String()])
		assert.True(t, ids[projectOurs.ID().String()])
		assert.True(t, ids[projectUnbound.ID().String()], "unbound project neurons match any project")
		assert.False(t, ids[projectTheirs.ID().String()])
	})
}

func TestCollect_TaskScopeRequiresDirectSynapse(t *testing.T) {
	graph := newCollectorGraph(t)
	task := mustNeuron(t, graph, entities.TypeTask, "the task", entities.ScopeGlobal)
	wired := mustNeuron(t, graph, entities.TypeConcept, "wired", entities.ScopeTask)
	unwired := mustNeuron(t, graph, entities.TypeConcept, "unwired", entities.ScopeTask)
	mustSynapse(t, graph, wired, task, entities.SynapseReferences)

	collector := NewCandidateCollector(nil)
	ids := collectIDs(collector.Collect(graph, StateQuery{TaskID: task.ID().String()}, CollectorOptions{}))

	assert.True(t, ids[wired.ID().String()])
	assert.False(t, ids[unwired.ID().String()])
}

func TestCollect_ProjectAnchorExpansion(t *testing.T) {
	// anchor -> near -> far: depth 2 reaches both, but type and status
	// filters still apply to expanded neurons
	graph := newCollectorGraph(t)
	anchor := mustNeuron(t, graph, entities.TypeProject, "anchor", entities.ScopeGlobal)

	near, err := entities.NewNeuron(entities.TypeConcept, "near", entities.ScopeProject)
	require.NoError(t, err)
	require.NoError(t, near.AttachToProject("other-project"))
	require.NoError(t, graph.AddNeuron(near))

	far := mustNeuron(t, graph, entities.TypeFolder, "far folder", entities.ScopeGlobal)
	mustSynapse(t, graph, anchor, near, entities.SynapseReferences)
	mustSynapse(t, graph, near, far, entities.SynapseReferences)

	collector := NewCandidateCollector(nil)
	ids := collectIDs(collector.Collect(graph, StateQuery{ProjectID: anchor.ID().String()}, CollectorOptions{}))

	assert.True(t, ids[near.ID().String()], "anchor expansion admits neurons the scope filter rejected")
	assert.False(t, ids[far.ID().String()], "type filter still applies during expansion")
}

func TestCollect_CoreTypesOrderedFirst(t *testing.T) {
	graph := newCollectorGraph(t)
	mustNeuron(t, graph, entities.TypeConcept, "concept", entities.ScopeGlobal)
	mustNeuron(t, graph, entities.TypeRule, "rule", entities.ScopeGlobal)
	mustNeuron(t, graph, entities.TypeMemory, "memory", entities.ScopeGlobal)
	mustNeuron(t, graph, entities.TypeIdentity, "identity", entities.ScopeGlobal)

	collector := NewCandidateCollector(nil)
	candidates := collector.Collect(graph, StateQuery{}, CollectorOptions{})
	require.Len(t, candidates, 4)

	assert.True(t, candidates[0].Type().IsCore())
	assert.True(t, candidates[1].Type().IsCore())
	assert.False(t, candidates[2].Type().IsCore())
	assert.False(t, candidates[3].Type().IsCore())
}
