package services

import (
	"time"
)

// PackNeuron is the projection of a resolved neuron into a context
// pack bucket. Payload fields are flattened; only the fields matching
// the neuron's type are set.
type PackNeuron struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Statement    string   `json:"statement"`
	Why          string   `json:"why,omitempty"`
	Scope        string   `json:"scope"`
	Status       string   `json:"status"`
	Score        float64  `json:"score"`
	Tags         []string `json:"tags,omitempty"`
	Enforcement  string   `json:"enforcement,omitempty"`
	Category     string   `json:"category,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	Tradeoffs    string   `json:"tradeoffs,omitempty"`
	Steps        []string `json:"steps,omitempty"`
	Trigger      string   `json:"trigger,omitempty"`
}

// PackReference is a lightweight pointer to background material.
// It carries a summary, never full document content.
type PackReference struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Summary string `json:"summary,omitempty"`
}

// ContextPack is the bounded working-memory snapshot produced for one
// query. The bucket lists are overlapping projections of the same
// resolved set; TotalNeurons counts that set once, not the bucket sum.
type ContextPack struct {
	ID                  string               `json:"id"`
	CreatedAt           time.Time            `json:"createdAt"`
	Query               StateQuery           `json:"query"`
	Mission             string               `json:"mission"`
	Policies            []PackNeuron         `json:"policies"`
	Decisions           []PackNeuron         `json:"decisions"`
	Playbooks           []PackNeuron         `json:"playbooks"`
	Constraints         []PackNeuron         `json:"constraints"`
	References          []PackReference      `json:"references"`
	TotalNeurons        int                  `json:"totalNeurons"`
	ConflictResolutions []ConflictResolution `json:"conflictResolutions"`
	ExcludedNeurons     []string             `json:"excludedNeurons"`
}
