package services

import (
	"sort"
	"strings"
	"time"

	"cortex-backend/domain/core/entities"
)

// Weights is the configurable weight vector for the relevance formula.
// ConflictPenalty is reserved for a future scoring pass; it is carried
// through configuration but not applied at ranking time.
type Weights struct {
	Scope           float64 `json:"scope" yaml:"scope"`
	Recency         float64 `json:"recency" yaml:"recency"`
	Authority       float64 `json:"authority" yaml:"authority"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	Risk            float64 `json:"risk" yaml:"risk"`
	ConflictPenalty float64 `json:"conflictPenalty" yaml:"conflictPenalty"`
}

// DefaultWeights returns the standard weight vector
func DefaultWeights() Weights {
	return Weights{
		Scope:      0.25,
		Recency:    0.15,
		Authority:  0.20,
		Confidence: 0.15,
		Risk:       0.10,
	}
}

// keywordBonusWeight scales the keyword match fraction; the keyword
// signal is a fixed bonus outside the main weighted sum
const keywordBonusWeight = 0.1

// coreTypeBonus is added flat for normative neuron types
const coreTypeBonus = 0.1

// ScoredNeuron pairs a candidate with its relevance score in [0,1]
type ScoredNeuron struct {
	Neuron *entities.Neuron
	Score  float64
}

// RelevanceRanker scores candidates against a query. Pure computation;
// no side effects, no I/O.
type RelevanceRanker struct {
	weights Weights
}

// NewRelevanceRanker creates a ranker with the given weight vector
func NewRelevanceRanker(weights Weights) *RelevanceRanker {
	return &RelevanceRanker{weights: weights}
}

// Rank scores every candidate and returns them strictly descending by
// score. Ties break on later update time, then lexical id order, so
// identical inputs always produce identical output order.
func (r *RelevanceRanker) Rank(candidates []*entities.Neuron, q StateQuery) []ScoredNeuron {
	ranked := make([]ScoredNeuron, 0, len(candidates))
	now := time.Now()

	for _, n := range candidates {
		ranked = append(ranked, ScoredNeuron{
			Neuron: n,
			Score:  r.score(n, q, now),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		iu, ju := ranked[i].Neuron.UpdatedAt(), ranked[j].Neuron.UpdatedAt()
		if !iu.Equal(ju) {
			return iu.After(ju)
		}
		return ranked[i].Neuron.ID().String() < ranked[j].Neuron.ID().String()
	})

	return ranked
}

// score computes the weighted relevance of one neuron
func (r *RelevanceRanker) score(n *entities.Neuron, q StateQuery, now time.Time) float64 {
	w := r.weights

	total := w.Scope*scopeScore(n, q) +
		w.Recency*recencyScore(n, now) +
		w.Authority*authorityScore(n) +
		w.Confidence*confidenceScore(n)

	if q.IsUrgent() {
		total += w.Risk * riskScore(n)
	}

	total += keywordBonusWeight * keywordScore(n, q.Keywords)

	if n.Type().IsCore() {
		total += coreTypeBonus
	}

	return clampScore(total)
}

// scopeScore rewards tighter applicability when the query can use it
func scopeScore(n *entities.Neuron, q StateQuery) float64 {
	switch {
	case n.Scope() == entities.ScopeTask && q.TaskID != "":
		return 1.0
	case n.Scope() == entities.ScopeRole && q.Role != "":
		return 0.8
	case n.Scope() == entities.ScopeProject && q.ProjectID != "":
		return 0.6
	case n.Scope() == entities.ScopeGlobal:
		return 0.4
	default:
		return 0.3
	}
}

// recencyScore decays in steps over days since the last content update
func recencyScore(n *entities.Neuron, now time.Time) float64 {
	days := now.Sub(n.UpdatedAt()).Hours() / 24
	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.7
	case days <= 90:
		return 0.4
	default:
		return 0.2
	}
}

// authorityScore rewards active status and binding rules
func authorityScore(n *entities.Neuron) float64 {
	score := 0.5

	switch n.Status() {
	case entities.StatusActive:
		score += 0.3
	case entities.StatusDraft:
		score += 0.1
	}

	if rule, ok := n.Rule(); ok {
		switch rule.Enforcement {
		case entities.EnforcementMust:
			score += 0.2
		case entities.EnforcementShould:
			score += 0.1
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// confidenceScore maps confidence [0,100] into [0,1]
func confidenceScore(n *entities.Neuron) float64 {
	return float64(n.Confidence()) / 100
}

// riskScore surfaces what must not be violated under time pressure:
// taboos first, binding rules second, then plain importance
func riskScore(n *entities.Neuron) float64 {
	if identity, ok := n.Identity(); ok && identity.Category == entities.IdentityTaboo {
		return 1.0
	}
	if rule, ok := n.Rule(); ok && rule.Enforcement == entities.EnforcementMust {
		return 0.8
	}
	return float64(n.Importance()) / 10
}

// keywordScore is the fraction of query keywords found as
// case-insensitive substrings of the neuron's searchable text.
// Blank keywords carry no signal and count toward neither side.
func keywordScore(n *entities.Neuron, keywords []string) float64 {
	blob := n.SearchBlob()
	matched, total := 0, 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		total++
		if strings.Contains(blob, kw) {
			matched++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
