package valueobjects

import (
	"strings"

	pkgerrors "cortex-backend/pkg/errors"

	"github.com/google/uuid"
)

// NeuronID uniquely identifies a neuron within a graph.
// IDs minted by this backend are UUIDs; ids supplied by sync processes
// (wikilink targets, stub neurons) may be arbitrary non-empty strings.
type NeuronID struct {
	value string
}

// NewNeuronID creates a new random NeuronID
func NewNeuronID() NeuronID {
	return NeuronID{value: uuid.New().String()}
}

// NewNeuronIDFromString creates a NeuronID from an existing identifier
func NewNeuronIDFromString(s string) (NeuronID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NeuronID{}, pkgerrors.NewValidationError("neuron ID cannot be empty")
	}
	return NeuronID{value: s}, nil
}

// String returns the string representation
func (id NeuronID) String() string {
	return id.value
}

// Equals compares two NeuronIDs
func (id NeuronID) Equals(other NeuronID) bool {
	return id.value == other.value
}

// IsZero reports whether the ID is unset
func (id NeuronID) IsZero() bool {
	return id.value == ""
}

// SynapseID uniquely identifies a synapse within a graph
type SynapseID struct {
	value string
}

// NewSynapseID creates a new random SynapseID
func NewSynapseID() SynapseID {
	return SynapseID{value: uuid.New().String()}
}

// NewSynapseIDFromString creates a SynapseID from an existing identifier
func NewSynapseIDFromString(s string) (SynapseID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SynapseID{}, pkgerrors.NewValidationError("synapse ID cannot be empty")
	}
	return SynapseID{value: s}, nil
}

// String returns the string representation
func (id SynapseID) String() string {
	return id.value
}

// Equals compares two SynapseIDs
func (id SynapseID) Equals(other SynapseID) bool {
	return id.value == other.value
}

// IsZero reports whether the ID is unset
func (id SynapseID) IsZero() bool {
	return id.value == ""
}

// PackID uniquely identifies a built context pack
type PackID struct {
	value string
}

// NewPackID creates a new random PackID
func NewPackID() PackID {
	return PackID{value: uuid.New().String()}
}

// NewPackIDFromString creates a PackID from an existing identifier
func NewPackIDFromString(s string) (PackID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PackID{}, pkgerrors.NewValidationError("pack ID cannot be empty")
	}
	return PackID{value: s}, nil
}

// String returns the string representation
func (id PackID) String() string {
	return id.value
}

// IsZero reports whether the ID is unset
func (id PackID) IsZero() bool {
	return id.value == ""
}
