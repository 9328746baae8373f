package config

// DomainConfig holds domain-level business rules and limits.
// Values here bound what a single graph or a single context pack build
// is allowed to do; runtime configuration lives in infrastructure/config.
type DomainConfig struct {
	// MaxNeuronsPerGraph is the maximum number of neurons a graph may hold
	MaxNeuronsPerGraph int
	// MaxSynapsesPerGraph is the maximum number of synapses a graph may hold
	MaxSynapsesPerGraph int
	// TraversalDepth bounds the BFS expansion from a project anchor
	TraversalDepth int
	// CandidateCap bounds the candidate set handed to the ranker
	CandidateCap int
	// DefaultMaxNeurons is the default context pack size limit
	DefaultMaxNeurons int
	// DefaultMinRelevanceScore is the default score cutoff before packaging
	DefaultMinRelevanceScore float64
	// DefaultGraphName is used when a graph is created without a name
	DefaultGraphName string
	// FeedbackDelta is the confidence adjustment applied per feedback signal
	FeedbackDelta int
}

// DefaultDomainConfig returns the standard production configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNeuronsPerGraph:       10000,
		MaxSynapsesPerGraph:      50000,
		TraversalDepth:           2,
		CandidateCap:             500,
		DefaultMaxNeurons:        50,
		DefaultMinRelevanceScore: 0.3,
		DefaultGraphName:         "Default Workspace",
		FeedbackDelta:            5,
	}
}
