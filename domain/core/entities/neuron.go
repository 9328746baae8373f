package entities

import (
	"strings"
	"time"

	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

const (
	// MinConfidence and MaxConfidence bound the confidence field
	MinConfidence = 0
	MaxConfidence = 100

	// MinImportance and MaxImportance bound the importance field
	MinImportance = 1
	MaxImportance = 10
)

// Neuron is an atomic expression unit in the knowledge graph.
// This is a rich domain model with encapsulated business logic.
type Neuron struct {
	id         valueobjects.NeuronID
	neuronType NeuronType
	statement  string
	why        string
	scope      Scope
	status     NeuronStatus
	confidence int
	importance int
	tags       []string
	projectID  string
	roleID     string
	payload    Payload
	createdAt  time.Time
	updatedAt  time.Time
}

// NewNeuron creates a neuron with validated type, statement and scope.
// New neurons start as drafts with mid-range confidence and importance.
func NewNeuron(neuronType NeuronType, statement string, scope Scope) (*Neuron, error) {
	if !neuronType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown neuron type: " + string(neuronType))
	}
	if strings.TrimSpace(statement) == "" {
		return nil, pkgerrors.NewValidationError("statement cannot be empty")
	}
	if !scope.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown scope: " + string(scope))
	}

	now := time.Now()
	return &Neuron{
		id:         valueobjects.NewNeuronID(),
		neuronType: neuronType,
		statement:  statement,
		scope:      scope,
		status:     StatusDraft,
		confidence: 50,
		importance: 5,
		tags:       []string{},
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// NewStubNeuron creates a placeholder doc neuron for an unresolved link
// target. Stubs are ordinary candidates with naturally low confidence and
// importance; nothing downstream special-cases them.
func NewStubNeuron(id valueobjects.NeuronID, title string) *Neuron {
	now := time.Now()
	return &Neuron{
		id:         id,
		neuronType: TypeDoc,
		statement:  title,
		scope:      ScopeGlobal,
		status:     StatusDraft,
		confidence: 20,
		importance: MinImportance,
		tags:       []string{"stub"},
		createdAt:  now,
		updatedAt:  now,
	}
}

// ReconstructNeuron rebuilds a neuron from repository data with
// preserved identity and timestamps. Numeric fields are clamped so a
// corrupt record can never violate the range invariants.
func ReconstructNeuron(
	id valueobjects.NeuronID,
	neuronType NeuronType,
	statement string,
	why string,
	scope Scope,
	status NeuronStatus,
	confidence int,
	importance int,
	tags []string,
	projectID string,
	roleID string,
	payload Payload,
	createdAt, updatedAt time.Time,
) (*Neuron, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("neuron ID is required")
	}
	if !neuronType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown neuron type: " + string(neuronType))
	}
	if !scope.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown scope: " + string(scope))
	}
	if payload != nil && payload.PayloadType() != neuronType {
		return nil, pkgerrors.NewValidationError("payload does not match neuron type")
	}

	n := &Neuron{
		id:         id,
		neuronType: neuronType,
		statement:  statement,
		why:        why,
		scope:      scope,
		status:     status,
		confidence: clampInt(confidence, MinConfidence, MaxConfidence),
		importance: clampInt(importance, MinImportance, MaxImportance),
		tags:       append([]string{}, tags...),
		projectID:  projectID,
		roleID:     roleID,
		payload:    payload,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
	return n, nil
}

// ID returns the neuron's unique identifier
func (n *Neuron) ID() valueobjects.NeuronID {
	return n.id
}

// Type returns the neuron's type
func (n *Neuron) Type() NeuronType {
	return n.neuronType
}

// Statement returns the human-readable core sentence
func (n *Neuron) Statement() string {
	return n.statement
}

// Why returns the justification text, if any
func (n *Neuron) Why() string {
	return n.why
}

// SetWhy updates the justification text
func (n *Neuron) SetWhy(why string) {
	n.why = why
	n.updatedAt = time.Now()
}

// Scope returns the applicability tier
func (n *Neuron) Scope() Scope {
	return n.scope
}

// Status returns the lifecycle state
func (n *Neuron) Status() NeuronStatus {
	return n.status
}

// Confidence returns the confidence score in [0,100]
func (n *Neuron) Confidence() int {
	return n.confidence
}

// Importance returns the importance score in [1,10]
func (n *Neuron) Importance() int {
	return n.importance
}

// ProjectID returns the owning project id when scope is project
func (n *Neuron) ProjectID() string {
	return n.projectID
}

// RoleID returns the owning role id when scope is role
func (n *Neuron) RoleID() string {
	return n.roleID
}

// Payload returns the per-type structured payload, or nil
func (n *Neuron) Payload() Payload {
	return n.payload
}

// CreatedAt returns when the neuron was created
func (n *Neuron) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the neuron content was last updated
func (n *Neuron) UpdatedAt() time.Time {
	return n.updatedAt
}

// UpdateStatement updates the core sentence with validation
func (n *Neuron) UpdateStatement(statement string) error {
	if strings.TrimSpace(statement) == "" {
		return pkgerrors.NewValidationError("statement cannot be empty")
	}
	n.statement = statement
	n.updatedAt = time.Now()
	return nil
}

// AttachToProject binds the neuron to a project
func (n *Neuron) AttachToProject(projectID string) error {
	if projectID == "" {
		return pkgerrors.NewValidationError("projectID cannot be empty")
	}
	n.projectID = projectID
	n.updatedAt = time.Now()
	return nil
}

// AttachToRole binds the neuron to a role
func (n *Neuron) AttachToRole(roleID string) error {
	if roleID == "" {
		return pkgerrors.NewValidationError("roleID cannot be empty")
	}
	n.roleID = roleID
	n.updatedAt = time.Now()
	return nil
}

// SetPayload attaches the per-type payload; a payload for a different
// neuron type is rejected, which keeps the sum type closed.
func (n *Neuron) SetPayload(p Payload) error {
	if p == nil {
		n.payload = nil
		return nil
	}
	if p.PayloadType() != n.neuronType {
		return pkgerrors.NewValidationError("payload does not match neuron type")
	}
	n.payload = p
	n.updatedAt = time.Now()
	return nil
}

// Rule returns the rule payload when this neuron is a rule
func (n *Neuron) Rule() (RulePayload, bool) {
	p, ok := n.payload.(RulePayload)
	return p, ok
}

// Identity returns the identity payload when this neuron is an identity
func (n *Neuron) Identity() (IdentityPayload, bool) {
	p, ok := n.payload.(IdentityPayload)
	return p, ok
}

// Decision returns the decision payload when this neuron is a decision
func (n *Neuron) Decision() (DecisionPayload, bool) {
	p, ok := n.payload.(DecisionPayload)
	return p, ok
}

// Playbook returns the playbook payload when this neuron is a playbook
func (n *Neuron) Playbook() (PlaybookPayload, bool) {
	p, ok := n.payload.(PlaybookPayload)
	return p, ok
}

// Doc returns the doc payload when this neuron is a document
func (n *Neuron) Doc() (DocPayload, bool) {
	p, ok := n.payload.(DocPayload)
	return p, ok
}

// SetImportance sets importance, clamped to [1,10]
func (n *Neuron) SetImportance(importance int) {
	n.importance = clampInt(importance, MinImportance, MaxImportance)
	n.updatedAt = time.Now()
}

// SetConfidence sets confidence, clamped to [0,100]
func (n *Neuron) SetConfidence(confidence int) {
	n.confidence = clampInt(confidence, MinConfidence, MaxConfidence)
}

// AdjustConfidence shifts confidence by delta, clamped to [0,100],
// and returns the new value. The content timestamp is left untouched:
// feedback is a scoring signal, not an edit, and must not distort
// recency ranking.
func (n *Neuron) AdjustConfidence(delta int) int {
	n.confidence = clampInt(n.confidence+delta, MinConfidence, MaxConfidence)
	return n.confidence
}

// Activate promotes the neuron to active status
func (n *Neuron) Activate() {
	if n.status == StatusActive {
		return
	}
	n.status = StatusActive
	n.updatedAt = time.Now()
}

// Deprecate retires the neuron; deprecated neurons are excluded from
// every context pack unless explicitly requested
func (n *Neuron) Deprecate() {
	if n.status == StatusDeprecated {
		return
	}
	n.status = StatusDeprecated
	n.updatedAt = time.Now()
}

// IsDeprecated reports whether the neuron is retired
func (n *Neuron) IsDeprecated() bool {
	return n.status == StatusDeprecated
}

// AddTag adds a tag, ignoring duplicates
func (n *Neuron) AddTag(tag string) error {
	if tag == "" {
		return pkgerrors.NewValidationError("tag cannot be empty")
	}
	for _, t := range n.tags {
		if t == tag {
			return nil
		}
	}
	n.tags = append(n.tags, tag)
	n.updatedAt = time.Now()
	return nil
}

// HasTag checks whether the neuron carries a tag
func (n *Neuron) HasTag(tag string) bool {
	for _, t := range n.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags returns a copy of the neuron's tags
func (n *Neuron) Tags() []string {
	tags := make([]string, len(n.tags))
	copy(tags, n.tags)
	return tags
}

// SearchBlob returns the lowercase concatenation of statement, why and
// tags, used for keyword matching during ranking
func (n *Neuron) SearchBlob() string {
	parts := make([]string, 0, len(n.tags)+2)
	parts = append(parts, n.statement, n.why)
	parts = append(parts, n.tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Clone returns a deep copy, used for graph snapshots
func (n *Neuron) Clone() *Neuron {
	cp := *n
	cp.tags = make([]string, len(n.tags))
	copy(cp.tags, n.tags)
	cp.payload = clonePayload(n.payload)
	return &cp
}

func clonePayload(p Payload) Payload {
	switch v := p.(type) {
	case DecisionPayload:
		alts := make([]string, len(v.Alternatives))
		copy(alts, v.Alternatives)
		v.Alternatives = alts
		return v
	case PlaybookPayload:
		steps := make([]string, len(v.Steps))
		copy(steps, v.Steps)
		v.Steps = steps
		return v
	default:
		// Remaining variants hold only value fields
		return p
	}
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
