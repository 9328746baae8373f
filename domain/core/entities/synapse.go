package entities

import (
	"time"

	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

// SynapseType represents the type of relation between two neurons
type SynapseType string

const (
	SynapseParentChild  SynapseType = "parent_child"
	SynapseReferences   SynapseType = "references"
	SynapseSupports     SynapseType = "supports"
	SynapseContradicts  SynapseType = "contradicts"
	SynapseCauses       SynapseType = "causes"
	SynapseSameTopic    SynapseType = "same_topic"
	SynapseSequence     SynapseType = "sequence"
	SynapseDefines      SynapseType = "defines"
	SynapseImplements   SynapseType = "implements"
	SynapseDependsOn    SynapseType = "depends_on"
	SynapseExampleOf    SynapseType = "example_of"
	SynapseDerivedFrom  SynapseType = "derived_from"
	SynapseReinforcedBy SynapseType = "reinforced_by"
	SynapseSupersedes   SynapseType = "supersedes"
	SynapseRelated      SynapseType = "related"
)

// IsValid checks if the synapse type is one of the closed set
func (t SynapseType) IsValid() bool {
	switch t {
	case SynapseParentChild, SynapseReferences, SynapseSupports,
		SynapseContradicts, SynapseCauses, SynapseSameTopic,
		SynapseSequence, SynapseDefines, SynapseImplements,
		SynapseDependsOn, SynapseExampleOf, SynapseDerivedFrom,
		SynapseReinforcedBy, SynapseSupersedes, SynapseRelated:
		return true
	default:
		return false
	}
}

// IsDirectional reports whether the relation's direction carries
// meaning even when the synapse is flagged bidirectional
func (t SynapseType) IsDirectional() bool {
	return t == SynapseContradicts || t == SynapseSupersedes
}

// String returns the string representation of the synapse type
func (t SynapseType) String() string {
	return string(t)
}

const (
	// MinSynapseWeight and MaxSynapseWeight bound the weight field
	MinSynapseWeight = 0.1
	MaxSynapseWeight = 1.0
)

// EvidenceRef points at a source backing a synapse
type EvidenceRef struct {
	Source string
	Quote  string
}

// Synapse is a typed, weighted relation between two neurons
type Synapse struct {
	id            valueobjects.SynapseID
	source        valueobjects.NeuronID
	target        valueobjects.NeuronID
	synapseType   SynapseType
	weight        float64
	bidirectional bool
	evidence      []EvidenceRef
	createdAt     time.Time
}

// NewSynapse creates a synapse between two neurons. Weight is clamped
// to [0.1, 1.0]; endpoint existence is enforced by the graph aggregate.
func NewSynapse(source, target valueobjects.NeuronID, synapseType SynapseType, weight float64) (*Synapse, error) {
	if source.IsZero() || target.IsZero() {
		return nil, pkgerrors.NewValidationError("synapse endpoints are required")
	}
	if source.Equals(target) {
		return nil, pkgerrors.NewValidationError("cannot connect neuron to itself")
	}
	if !synapseType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown synapse type: " + string(synapseType))
	}

	return &Synapse{
		id:          valueobjects.NewSynapseID(),
		source:      source,
		target:      target,
		synapseType: synapseType,
		weight:      clampWeight(weight),
		createdAt:   time.Now(),
	}, nil
}

// ReconstructSynapse rebuilds a synapse from repository data
func ReconstructSynapse(
	id valueobjects.SynapseID,
	source, target valueobjects.NeuronID,
	synapseType SynapseType,
	weight float64,
	bidirectional bool,
	evidence []EvidenceRef,
	createdAt time.Time,
) (*Synapse, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("synapse ID is required")
	}
	if source.IsZero() || target.IsZero() {
		return nil, pkgerrors.NewValidationError("synapse endpoints are required")
	}
	if !synapseType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown synapse type: " + string(synapseType))
	}

	return &Synapse{
		id:            id,
		source:        source,
		target:        target,
		synapseType:   synapseType,
		weight:        clampWeight(weight),
		bidirectional: bidirectional,
		evidence:      append([]EvidenceRef{}, evidence...),
		createdAt:     createdAt,
	}, nil
}

// ID returns the synapse's unique identifier
func (s *Synapse) ID() valueobjects.SynapseID {
	return s.id
}

// Source returns the source neuron id
func (s *Synapse) Source() valueobjects.NeuronID {
	return s.source
}

// Target returns the target neuron id
func (s *Synapse) Target() valueobjects.NeuronID {
	return s.target
}

// Type returns the synapse type
func (s *Synapse) Type() SynapseType {
	return s.synapseType
}

// Weight returns the relation weight in [0.1, 1.0]
func (s *Synapse) Weight() float64 {
	return s.weight
}

// Bidirectional reports whether traversal may follow the edge both ways
func (s *Synapse) Bidirectional() bool {
	return s.bidirectional
}

// SetBidirectional marks the synapse as traversable both ways
func (s *Synapse) SetBidirectional(b bool) {
	s.bidirectional = b
}

// Evidence returns a copy of the backing evidence references
func (s *Synapse) Evidence() []EvidenceRef {
	ev := make([]EvidenceRef, len(s.evidence))
	copy(ev, s.evidence)
	return ev
}

// AddEvidence appends an evidence reference
func (s *Synapse) AddEvidence(ref EvidenceRef) {
	s.evidence = append(s.evidence, ref)
}

// CreatedAt returns when the synapse was created
func (s *Synapse) CreatedAt() time.Time {
	return s.createdAt
}

// Touches reports whether the synapse has the given neuron as an endpoint
func (s *Synapse) Touches(id valueobjects.NeuronID) bool {
	return s.source.Equals(id) || s.target.Equals(id)
}

// OtherEnd returns the opposite endpoint of the given neuron and
// whether the neuron was an endpoint at all
func (s *Synapse) OtherEnd(id valueobjects.NeuronID) (valueobjects.NeuronID, bool) {
	switch {
	case s.source.Equals(id):
		return s.target, true
	case s.target.Equals(id):
		return s.source, true
	default:
		return valueobjects.NeuronID{}, false
	}
}

// Clone returns a deep copy, used for graph snapshots
func (s *Synapse) Clone() *Synapse {
	cp := *s
	cp.evidence = make([]EvidenceRef, len(s.evidence))
	copy(cp.evidence, s.evidence)
	return &cp
}

func clampWeight(w float64) float64 {
	if w < MinSynapseWeight {
		return MinSynapseWeight
	}
	if w > MaxSynapseWeight {
		return MaxSynapseWeight
	}
	return w
}
