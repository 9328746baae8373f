package entities

// NeuronType represents the kind of expression unit a neuron holds
type NeuronType string

const (
	TypeConcept    NeuronType = "concept"
	TypeProject    NeuronType = "project"
	TypeDoc        NeuronType = "doc"
	TypeIdea       NeuronType = "idea"
	TypeDecision   NeuronType = "decision"
	TypeMemory     NeuronType = "memory"
	TypeTask       NeuronType = "task"
	TypePerson     NeuronType = "person"
	TypeInsight    NeuronType = "insight"
	TypeRule       NeuronType = "rule"
	TypePreference NeuronType = "preference"
	TypePlaybook   NeuronType = "playbook"
	TypeIdentity   NeuronType = "identity"
	TypeFolder     NeuronType = "folder"
	TypeFile       NeuronType = "file"
	TypeAgent      NeuronType = "agent"
)

// IsValid checks if the neuron type is one of the closed set
func (t NeuronType) IsValid() bool {
	switch t {
	case TypeConcept, TypeProject, TypeDoc, TypeIdea, TypeDecision,
		TypeMemory, TypeTask, TypePerson, TypeInsight, TypeRule,
		TypePreference, TypePlaybook, TypeIdentity, TypeFolder,
		TypeFile, TypeAgent:
		return true
	default:
		return false
	}
}

// IsCore reports whether this type carries normative content.
// Core types are ordered ahead of the rest during candidate collection.
func (t NeuronType) IsCore() bool {
	switch t {
	case TypeRule, TypeIdentity, TypeDecision, TypePreference, TypePlaybook:
		return true
	default:
		return false
	}
}

// String returns the string representation of the neuron type
func (t NeuronType) String() string {
	return string(t)
}

// Scope is the applicability tier of a neuron
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
	ScopeRole    Scope = "role"
	ScopeTask    Scope = "task"
)

// IsValid checks if the scope is valid
func (s Scope) IsValid() bool {
	switch s {
	case ScopeGlobal, ScopeProject, ScopeRole, ScopeTask:
		return true
	default:
		return false
	}
}

// NeuronStatus represents the lifecycle state of a neuron
type NeuronStatus string

const (
	StatusDraft      NeuronStatus = "draft"
	StatusActive     NeuronStatus = "active"
	StatusDeprecated NeuronStatus = "deprecated"
)

// Enforcement is the binding strength of a rule neuron
type Enforcement string

const (
	EnforcementMust   Enforcement = "must"
	EnforcementShould Enforcement = "should"
	EnforcementMay    Enforcement = "may"
)

// IdentityCategory classifies an identity neuron
type IdentityCategory string

const (
	IdentityValue   IdentityCategory = "value"
	IdentityTaboo   IdentityCategory = "taboo"
	IdentityQuality IdentityCategory = "quality"
)

// Payload is the closed sum of per-type structured data.
// A neuron carries at most one payload, and only of the variant
// matching its type; invalid combinations are unrepresentable
// because SetPayload rejects a mismatch.
type Payload interface {
	// PayloadType names the neuron type this payload belongs to
	PayloadType() NeuronType
}

// RulePayload carries the enforcement level of a rule neuron
type RulePayload struct {
	Enforcement Enforcement
}

// PayloadType implements Payload
func (RulePayload) PayloadType() NeuronType { return TypeRule }

// IdentityPayload carries the category of an identity neuron
type IdentityPayload struct {
	Category IdentityCategory
}

// PayloadType implements Payload
func (IdentityPayload) PayloadType() NeuronType { return TypeIdentity }

// DecisionPayload carries the alternatives considered and their tradeoffs
type DecisionPayload struct {
	Alternatives []string
	Tradeoffs    string
}

// PayloadType implements Payload
func (DecisionPayload) PayloadType() NeuronType { return TypeDecision }

// PlaybookPayload carries the ordered steps and the trigger condition
type PlaybookPayload struct {
	Steps   []string
	Trigger string
}

// PayloadType implements Payload
func (PlaybookPayload) PayloadType() NeuronType { return TypePlaybook }

// DocPayload carries a short summary of a document neuron.
// Full document content never leaves the sync boundary.
type DocPayload struct {
	Summary string
	Source  string
}

// PayloadType implements Payload
func (DocPayload) PayloadType() NeuronType { return TypeDoc }
