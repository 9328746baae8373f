package events

import (
	"time"
)

// Event sources
const (
	// SourceBackend is the primary backend service source
	SourceBackend = "cortex.backend"
)

// Event types
const (
	TypeGraphCreated       = "graph.created"
	TypeContextPackBuilt   = "contextpack.built"
	TypeConfidenceAdjusted = "neuron.confidence_adjusted"
)

// DomainEvent represents an important business occurrence in the domain
type DomainEvent interface {
	// GetEventType returns the type of event
	GetEventType() string

	// GetAggregateID returns the ID of the aggregate that generated this event
	GetAggregateID() string

	// GetTimestamp returns when the event occurred
	GetTimestamp() time.Time
}

// BaseEvent provides common fields for all domain events
type BaseEvent struct {
	AggregateID string    `json:"aggregateId"`
	EventType   string    `json:"eventType"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

// GetEventType returns the event type
func (e BaseEvent) GetEventType() string {
	return e.EventType
}

// GetAggregateID returns the aggregate ID
func (e BaseEvent) GetAggregateID() string {
	return e.AggregateID
}

// GetTimestamp returns the event timestamp
func (e BaseEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// GraphCreated is emitted when a new graph aggregate is created
type GraphCreated struct {
	BaseEvent
	GraphID     string `json:"graphId"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
}

// NewGraphCreated creates a graph created event
func NewGraphCreated(graphID, workspaceID, name string) GraphCreated {
	return GraphCreated{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   TypeGraphCreated,
			Timestamp:   time.Now(),
			Version:     1,
		},
		GraphID:     graphID,
		WorkspaceID: workspaceID,
		Name:        name,
	}
}

// ContextPackBuilt is emitted when a context pack has been assembled
type ContextPackBuilt struct {
	BaseEvent
	PackID        string `json:"packId"`
	GraphID       string `json:"graphId"`
	TotalNeurons  int    `json:"totalNeurons"`
	ConflictCount int    `json:"conflictCount"`
	ExcludedCount int    `json:"excludedCount"`
}

// NewContextPackBuilt creates a context pack built event
func NewContextPackBuilt(packID, graphID string, totalNeurons, conflictCount, excludedCount int) ContextPackBuilt {
	return ContextPackBuilt{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   TypeContextPackBuilt,
			Timestamp:   time.Now(),
			Version:     1,
		},
		PackID:        packID,
		GraphID:       graphID,
		TotalNeurons:  totalNeurons,
		ConflictCount: conflictCount,
		ExcludedCount: excludedCount,
	}
}

// ConfidenceAdjusted is emitted when feedback shifts a neuron's confidence
type ConfidenceAdjusted struct {
	BaseEvent
	GraphID       string `json:"graphId"`
	NeuronID      string `json:"neuronId"`
	Delta         int    `json:"delta"`
	NewConfidence int    `json:"newConfidence"`
	ContextPackID string `json:"contextPackId,omitempty"`
}

// NewConfidenceAdjusted creates a confidence adjusted event
func NewConfidenceAdjusted(graphID, neuronID string, delta, newConfidence int, contextPackID string) ConfidenceAdjusted {
	return ConfidenceAdjusted{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   TypeConfidenceAdjusted,
			Timestamp:   time.Now(),
			Version:     1,
		},
		GraphID:       graphID,
		NeuronID:      neuronID,
		Delta:         delta,
		NewConfidence: newConfidence,
		ContextPackID: contextPackID,
	}
}
