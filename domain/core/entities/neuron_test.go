package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cortex-backend/domain/core/valueobjects"
)

func TestNewNeuron_Defaults(t *testing.T) {
	neuron, err := NewNeuron(TypeDecision, "Use PostgreSQL for persistence", ScopeProject)
	require.NoError(t, err)

	assert.Equal(t, TypeDecision, neuron.Type())
	assert.Equal(t, StatusDraft, neuron.Status())
	assert.Equal(t, 50, neuron.Confidence())
	assert.Equal(t, 5, neuron.Importance())
	assert.False(t, neuron.ID().IsZero())
}

func TestNewNeuron_Validation(t *testing.T) {
	tests := []struct {
		name       string
		neuronType NeuronType
		statement  string
		scope      Scope
	}{
		{"unknown type", NeuronType("banana"), "statement", ScopeGlobal},
		{"empty statement", TypeRule, "   ", ScopeGlobal},
		{"unknown scope", TypeRule, "statement", Scope("universe")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNeuron(tt.neuronType, tt.statement, tt.scope)
			assert.Error(t, err)
		})
	}
}

func TestNewStubNeuron(t *testing.T) {
	id := valueobjects.NewNeuronID()
	stub := NewStubNeuron(id, "Unresolved Reference")

	assert.Equal(t, id, stub.ID())
	assert.Equal(t, TypeDoc, stub.Type())
	assert.Equal(t, ScopeGlobal, stub.Scope())
	assert.Equal(t, StatusDraft, stub.Status())
	assert.Equal(t, 20, stub.Confidence())
	assert.Equal(t, MinImportance, stub.Importance())
	assert.True(t, stub.HasTag("stub"))
}

func TestNeuron_SetPayload(t *testing.T) {
	rule, err := NewNeuron(TypeRule, "All deploys go through CI", ScopeGlobal)
	require.NoError(t, err)

	err = rule.SetPayload(RulePayload{Enforcement: EnforcementMust})
	require.NoError(t, err)

	payload, ok := rule.Rule()
	require.True(t, ok)
	assert.Equal(t, EnforcementMust, payload.Enforcement)

	// Payload for a different type is rejected
	err = rule.SetPayload(DocPayload{Summary: "nope"})
	assert.Error(t, err)
}

func TestNeuron_AdjustConfidence_Clamps(t *testing.T) {
	neuron, err := NewNeuron(TypeInsight, "Caching halved the p99", ScopeGlobal)
	require.NoError(t, err)

	neuron.SetConfidence(98)
	assert.Equal(t, 100, neuron.AdjustConfidence(5))
	assert.Equal(t, 100, neuron.AdjustConfidence(5))

	neuron.SetConfidence(3)
	assert.Equal(t, 0, neuron.AdjustConfidence(-5))
	assert.Equal(t, 0, neuron.AdjustConfidence(-5))
}

func TestNeuron_AdjustConfidence_DoesNotTouchUpdatedAt(t *testing.T) {
	neuron, err := NewNeuron(TypeInsight, "Caching halved the p99", ScopeGlobal)
	require.NoError(t, err)

	before := neuron.UpdatedAt()
	neuron.AdjustConfidence(5)
	assert.Equal(t, before, neuron.UpdatedAt())
}

func TestNeuron_Lifecycle(t *testing.T) {
	neuron, err := NewNeuron(TypeRule, "Never log credentials", ScopeGlobal)
	require.NoError(t, err)

	neuron.Activate()
	assert.Equal(t, StatusActive, neuron.Status())

	neuron.Deprecate()
	assert.True(t, neuron.IsDeprecated())
}

func TestNeuron_SearchBlob(t *testing.T) {
	neuron, err := NewNeuron(TypeDoc, "Deployment Runbook", ScopeProject)
	require.NoError(t, err)
	neuron.SetWhy("Steps for a SAFE rollout")
	require.NoError(t, neuron.AddTag("Deploy"))

	blob := neuron.SearchBlob()
	assert.Contains(t, blob, "deployment runbook")
	assert.Contains(t, blob, "safe rollout")
	assert.Contains(t, blob, "deploy")
}

func TestReconstructNeuron_ClampsCorruptValues(t *testing.T) {
	id := valueobjects.NewNeuronID()
	now := time.Now()

	neuron, err := ReconstructNeuron(
		id, TypeMemory, "statement", "", ScopeGlobal, StatusActive,
		250, -3, nil, "", "", nil, now, now,
	)
	require.NoError(t, err)

	assert.Equal(t, MaxConfidence, neuron.Confidence())
	assert.Equal(t, MinImportance, neuron.Importance())
}

func TestReconstructNeuron_RejectsMismatchedPayload(t *testing.T) {
	id := valueobjects.NewNeuronID()
	now := time.Now()

	_, err := ReconstructNeuron(
		id, TypeRule, "statement", "", ScopeGlobal, StatusActive,
		50, 5, nil, "", "", PlaybookPayload{Steps: []string{"a"}}, now, now,
	)
	assert.Error(t, err)
}

func TestNeuron_Clone_IsIndependent(t *testing.T) {
	neuron, err := NewNeuron(TypePlaybook, "Incident response", ScopeGlobal)
	require.NoError(t, err)
	require.NoError(t, neuron.SetPayload(PlaybookPayload{Steps: []string{"page", "triage"}}))
	require.NoError(t, neuron.AddTag("ops"))

	clone := neuron.Clone()
	require.NoError(t, clone.AddTag("mutated"))
	clonePayload, _ := clone.Playbook()
	clonePayload.Steps[0] = "changed"

	assert.False(t, neuron.HasTag("mutated"))
	original, _ := neuron.Playbook()
	assert.Equal(t, "page", original.Steps[0])
}

func TestNeuronType_IsCore(t *testing.T) {
	for _, core := range []NeuronType{TypeRule, TypeIdentity, TypeDecision, TypePreference, TypePlaybook} {
		assert.True(t, core.IsCore(), "%s should be core", core)
	}
	for _, other := range []NeuronType{TypeConcept, TypeDoc, TypeMemory, TypeTask, TypeFolder} {
		assert.False(t, other.IsCore(), "%s should not be core", other)
	}
}
