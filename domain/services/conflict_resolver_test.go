package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
)

func TestResolve_ContradictionKeepsHigherScore(t *testing.T) {
	graph, err := aggregates.NewGraph("ws-1", "Conflicts")
	require.NoError(t, err)

	winner := mustNeuron(t, graph, entities.TypeRule, "use tabs", entities.ScopeGlobal)
	loser := mustNeuron(t, graph, entities.TypeRule, "use spaces", entities.ScopeGlobal)
	mustSynapse(t, graph, winner, loser, entities.SynapseContradicts)

	ranked := []ScoredNeuron{
		{Neuron: winner, Score: 0.9},
		{Neuron: loser, Score: 0.5},
	}

	resolved, resolutions, excludedIDs := NewConflictResolver().Resolve(graph, ranked)

	require.Len(t, resolved, 1)
	assert.Equal(t, winner.ID(), resolved[0].Neuron.ID())
	require.Len(t, resolutions, 1)
	assert.Equal(t, winner.ID().String(), resolutions[0].WinnerID)
	assert.Equal(t, loser.ID().String(), resolutions[0].LoserID)
	assert.Equal(t, []string{loser.ID().String()}, excludedIDs)
}

func TestResolve_SupersededAlwaysExcluded(t *testing.T) {
	// The superseded neuron loses even when it outscores its successor
	graph, err := aggregates.NewGraph("ws-1", "Conflicts")
	require.NoError(t, err)

	newer := mustNeuron(t, graph, entities.TypeDecision, "use v2 api", entities.ScopeGlobal)
	older := mustNeuron(t, graph, entities.TypeDecision, "use v1 api", entities.ScopeGlobal)
	mustSynapse(t, graph, newer, older, entities.SynapseSupersedes)

	ranked := []ScoredNeuron{
		{Neuron: older, Score: 0.95},
		{Neuron: newer, Score: 0.4},
	}

	resolved, resolutions, _ := NewConflictResolver().Resolve(graph, ranked)

	require.Len(t, resolved, 1)
	assert.Equal(t, newer.ID(), resolved[0].Neuron.ID())
	require.Len(t, resolutions, 1)
	assert.Equal(t, ReasonSuperseded, resolutions[0].Reason)
}

func TestResolve_SupersededExcludedWhenSuccessorNotRanked(t *testing.T) {
	// A project-scoped successor may be filtered out of a query that
	// lacks its project; the obsolete decision still must not surface.
	graph, err := aggregates.NewGraph("ws-1", "Conflicts")
	require.NoError(t, err)

	newer, err := entities.NewNeuron(entities.TypeDecision, "use v2 api", entities.ScopeProject)
	require.NoError(t, err)
	require.NoError(t, newer.AttachToProject("proj-1"))
	require.NoError(t, graph.AddNeuron(newer))
	older := mustNeuron(t, graph, entities.TypeDecision, "use v1 api", entities.ScopeGlobal)
	mustSynapse(t, graph, newer, older, entities.SynapseSupersedes)

	// Only the superseded neuron survived collection and ranking
	ranked := []ScoredNeuron{{Neuron: older, Score: 0.55}}

	resolved, resolutions, excludedIDs := NewConflictResolver().Resolve(graph, ranked)

	assert.Empty(t, resolved)
	require.Len(t, resolutions, 1)
	assert.Equal(t, newer.ID().String(), resolutions[0].WinnerID)
	assert.Equal(t, older.ID().String(), resolutions[0].LoserID)
	assert.Equal(t, ReasonSuperseded, resolutions[0].Reason)
	assert.Equal(t, []string{older.ID().String()}, excludedIDs)
}

func TestResolve_ContradictionSkippedWhenEndpointAlreadyExcluded(t *testing.T) {
	// b supersedes a; a contradicts c. Once a is gone the a-c
	// contradiction is moot and c stays.
	graph, err := aggregates.NewGraph("ws-1", "Conflicts")
	require.NoError(t, err)

	a := mustNeuron(t, graph, entities.TypeDecision, "a", entities.ScopeGlobal)
	b := mustNeuron(t, graph, entities.TypeDecision, "b", entities.ScopeGlobal)
	c := mustNeuron(t, graph, entities.TypeDecision, "c", entities.ScopeGlobal)
	mustSynapse(t, graph, b, a, entities.SynapseSupersedes)
	mustSynapse(t, graph, a, c, entities.SynapseContradicts)

	ranked := []ScoredNeuron{
		{Neuron: a, Score: 0.9},
		{Neuron: b, Score: 0.8},
		{Neuron: c, Score: 0.1},
	}

	resolved, resolutions, _ := NewConflictResolver().Resolve(graph, ranked)

	ids := make(map[string]bool)
	for _, sn := range resolved {
		ids[sn.Neuron.ID().String()] = true
	}
	assert.False(t, ids[a.ID().String()])
	assert.True(t, ids[b.ID().String()])
	assert.True(t, ids[c.ID().String()])
	assert.Len(t, resolutions, 1)
}

func TestResolve_SynapseToAbsentNeuronIgnored(t *testing.T) {
	graph, err := aggregates.NewGraph("ws-1", "Conflicts")
	require.NoError(t, err)

	present := mustNeuron(t, graph, entities.TypeRule, "present", entities.ScopeGlobal)
	filtered := mustNeuron(t, graph, entities.TypeRule, "filtered out", entities.ScopeGlobal)
	mustSynapse(t, graph, present, filtered, entities.SynapseContradicts)

	// Only one endpoint survived ranking
	ranked := []ScoredNeuron{{Neuron: present, Score: 0.7}}

	resolved, resolutions, excludedIDs := NewConflictResolver().Resolve(graph, ranked)

	assert.Len(t, resolved, 1)
	assert.Empty(t, resolutions)
	assert.Empty(t, excludedIDs)
}

func TestResolve_TieBreaksOnUpdateTimeThenID(t *testing.T) {
	graph, err := aggregates.NewGraph("ws-1", "Conflicts")
	require.NoError(t, err)

	older := mustNeuron(t, graph, entities.TypeRule, "older", entities.ScopeGlobal)
	time.Sleep(2 * time.Millisecond)
	newer := mustNeuron(t, graph, entities.TypeRule, "newer", entities.ScopeGlobal)
	mustSynapse(t, graph, older, newer, entities.SynapseContradicts)

	ranked := []ScoredNeuron{
		{Neuron: older, Score: 0.5},
		{Neuron: newer, Score: 0.5},
	}

	resolved, resolutions, _ := NewConflictResolver().Resolve(graph, ranked)

	require.Len(t, resolved, 1)
	assert.Equal(t, newer.ID(), resolved[0].Neuron.ID())
	require.Len(t, resolutions, 1)
	assert.Equal(t, ReasonRecency, resolutions[0].Reason)
}

func TestResolve_PreservesRankOrder(t *testing.T) {
	graph, err := aggregates.NewGraph("ws-1", "Conflicts")
	require.NoError(t, err)

	n1 := mustNeuron(t, graph, entities.TypeRule, "first", entities.ScopeGlobal)
	n2 := mustNeuron(t, graph, entities.TypeRule, "second", entities.ScopeGlobal)
	n3 := mustNeuron(t, graph, entities.TypeRule, "third", entities.ScopeGlobal)

	ranked := []ScoredNeuron{
		{Neuron: n1, Score: 0.9},
		{Neuron: n2, Score: 0.6},
		{Neuron: n3, Score: 0.3},
	}

	resolved, _, _ := NewConflictResolver().Resolve(graph, ranked)

	require.Len(t, resolved, 3)
	assert.Equal(t, n1.ID(), resolved[0].Neuron.ID())
	assert.Equal(t, n2.ID(), resolved[1].Neuron.ID())
	assert.Equal(t, n3.ID(), resolved[2].Neuron.ID())
}
