package services

import (
	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
)

// ConflictReason is the label attached to a resolved conflict.
// It is a best-effort diagnostic derived after the fact, not a proof
// of why the winner actually outranked the loser.
type ConflictReason string

const (
	ReasonScope      ConflictReason = "scope"
	ReasonRecency    ConflictReason = "recency"
	ReasonAuthority  ConflictReason = "authority"
	ReasonConfidence ConflictReason = "confidence"
	ReasonSuperseded ConflictReason = "superseded"
)

// ConflictResolution records one pack-local exclusion decision
type ConflictResolution struct {
	SynapseID string         `json:"synapseId"`
	WinnerID  string         `json:"winnerId"`
	LoserID   string         `json:"loserId"`
	Reason    ConflictReason `json:"reason"`
}

// ConflictResolver removes mutually contradicting candidates from a
// ranked set. Exclusions apply to the pack being built only; the graph
// itself is never touched.
type ConflictResolver struct{}

// NewConflictResolver creates a conflict resolver
func NewConflictResolver() *ConflictResolver {
	return &ConflictResolver{}
}

// Resolve walks the graph's supersedes and contradicts synapses.
// Supersession excludes the target whenever it survives ranking, even
// when the superseding neuron itself was filtered out; contradiction
// applies only when both endpoints survive and keeps the
// higher-scoring side, breaking exact ties by later update time and
// then lexical id order. The returned set never contains two neurons
// joined by an unresolved contradicts synapse.
func (r *ConflictResolver) Resolve(g *aggregates.Graph, ranked []ScoredNeuron) ([]ScoredNeuron, []ConflictResolution, []string) {
	if g == nil || len(ranked) == 0 {
		return ranked, nil, nil
	}

	byID := make(map[string]ScoredNeuron, len(ranked))
	for _, sn := range ranked {
		byID[sn.Neuron.ID().String()] = sn
	}

	excluded := make(map[string]bool)
	var resolutions []ConflictResolution

	// A newer decision always deprecates what it explicitly supersedes,
	// regardless of how the scores came out. The superseding neuron need
	// not survive ranking itself; the graph guarantees it exists.
	for _, s := range g.SynapsesOfType(entities.SynapseSupersedes) {
		loser, lOK := byID[s.Target().String()]
		if !lOK {
			continue
		}
		if excluded[loser.Neuron.ID().String()] {
			continue
		}
		excluded[loser.Neuron.ID().String()] = true
		resolutions = append(resolutions, ConflictResolution{
			SynapseID: s.ID().String(),
			WinnerID:  s.Source().String(),
			LoserID:   loser.Neuron.ID().String(),
			Reason:    ReasonSuperseded,
		})
	}

	for _, s := range g.SynapsesOfType(entities.SynapseContradicts) {
		a, aOK := byID[s.Source().String()]
		b, bOK := byID[s.Target().String()]
		if !aOK || !bOK {
			continue
		}
		if excluded[a.Neuron.ID().String()] || excluded[b.Neuron.ID().String()] {
			continue
		}

		winner, loser := pickWinner(a, b)
		excluded[loser.Neuron.ID().String()] = true
		resolutions = append(resolutions, ConflictResolution{
			SynapseID: s.ID().String(),
			WinnerID:  winner.Neuron.ID().String(),
			LoserID:   loser.Neuron.ID().String(),
			Reason:    labelReason(winner, loser),
		})
	}

	resolved := make([]ScoredNeuron, 0, len(ranked))
	excludedIDs := make([]string, 0, len(excluded))
	for _, sn := range ranked {
		id := sn.Neuron.ID().String()
		if excluded[id] {
			excludedIDs = append(excludedIDs, id)
			continue
		}
		resolved = append(resolved, sn)
	}

	return resolved, resolutions, excludedIDs
}

// pickWinner applies the contradiction tie-break chain: higher score,
// then later update, then lexically smaller id
func pickWinner(a, b ScoredNeuron) (winner, loser ScoredNeuron) {
	switch {
	case a.Score > b.Score:
		return a, b
	case b.Score > a.Score:
		return b, a
	case a.Neuron.UpdatedAt().After(b.Neuron.UpdatedAt()):
		return a, b
	case b.Neuron.UpdatedAt().After(a.Neuron.UpdatedAt()):
		return b, a
	case a.Neuron.ID().String() < b.Neuron.ID().String():
		return a, b
	default:
		return b, a
	}
}

// labelReason guesses which factor separated the winner from the loser
func labelReason(winner, loser ScoredNeuron) ConflictReason {
	if winner.Neuron.Scope() != loser.Neuron.Scope() {
		return ReasonScope
	}
	if winner.Neuron.UpdatedAt().After(loser.Neuron.UpdatedAt()) {
		return ReasonRecency
	}
	if winner.Neuron.Status() == entities.StatusActive && loser.Neuron.Status() != entities.StatusActive {
		return ReasonAuthority
	}
	return ReasonConfidence
}
