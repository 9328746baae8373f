package services

import (
	"fmt"
	"strings"
	"time"

	"cortex-backend/domain/config"
	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
)

// defaultMission is used when neither a task nor a project resolves
const defaultMission = "일반 작업 컨텍스트"

// mandatoryMarkerTags mark a decision as binding for the constraints bucket
var mandatoryMarkerTags = []string{"mandatory", "필수"}

// stageLabels render the query stage as a mission qualifier
var stageLabels = map[Stage]string{
	StagePlanning:     "계획",
	StageImplementing: "구현",
	StageReviewing:    "검토",
	StageDeploying:    "배포",
}

// PackagerOptions bound the pack size and quality cutoff
type PackagerOptions struct {
	MaxNeurons        int
	MinRelevanceScore float64
}

// ContextPackager buckets the resolved candidates into a ContextPack.
// Pure presentation-side assembly; no side effects.
type ContextPackager struct {
	cfg *config.DomainConfig
}

// NewContextPackager creates a packager with the given domain config
func NewContextPackager(cfg *config.DomainConfig) *ContextPackager {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ContextPackager{cfg: cfg}
}

// Package drops low-scoring candidates, truncates to the size limit and
// projects what remains into the pack's overlapping buckets.
func (p *ContextPackager) Package(
	g *aggregates.Graph,
	q StateQuery,
	resolved []ScoredNeuron,
	resolutions []ConflictResolution,
	excluded []string,
) *ContextPack {
	opts := PackagerOptions{
		MaxNeurons:        p.cfg.DefaultMaxNeurons,
		MinRelevanceScore: p.cfg.DefaultMinRelevanceScore,
	}
	return p.PackageWithOptions(g, q, resolved, resolutions, excluded, opts)
}

// PackageWithOptions is Package with explicit bounds
func (p *ContextPackager) PackageWithOptions(
	g *aggregates.Graph,
	q StateQuery,
	resolved []ScoredNeuron,
	resolutions []ConflictResolution,
	excluded []string,
	opts PackagerOptions,
) *ContextPack {
	if opts.MaxNeurons <= 0 {
		opts.MaxNeurons = p.cfg.DefaultMaxNeurons
	}

	filtered := make([]ScoredNeuron, 0, len(resolved))
	for _, sn := range resolved {
		if sn.Score < opts.MinRelevanceScore {
			continue
		}
		filtered = append(filtered, sn)
		if len(filtered) >= opts.MaxNeurons {
			break
		}
	}

	pack := &ContextPack{
		ID:                  valueobjects.NewPackID().String(),
		CreatedAt:           time.Now(),
		Query:               q,
		Mission:             p.mission(g, q),
		Policies:            []PackNeuron{},
		Decisions:           []PackNeuron{},
		Playbooks:           []PackNeuron{},
		Constraints:         []PackNeuron{},
		References:          []PackReference{},
		TotalNeurons:        len(filtered),
		ConflictResolutions: resolutions,
		ExcludedNeurons:     excluded,
	}
	if pack.ConflictResolutions == nil {
		pack.ConflictResolutions = []ConflictResolution{}
	}
	if pack.ExcludedNeurons == nil {
		pack.ExcludedNeurons = []string{}
	}

	for _, sn := range filtered {
		n := sn.Neuron
		projected := projectNeuron(sn)

		switch n.Type() {
		case entities.TypeRule, entities.TypeIdentity:
			pack.Policies = append(pack.Policies, projected)
		case entities.TypeDecision:
			pack.Decisions = append(pack.Decisions, projected)
		case entities.TypePlaybook:
			pack.Playbooks = append(pack.Playbooks, projected)
		case entities.TypeDoc, entities.TypeMemory, entities.TypeInsight:
			pack.References = append(pack.References, projectReference(n))
		}

		if isConstraint(n) {
			pack.Constraints = append(pack.Constraints, projected)
		}
	}

	return pack
}

// mission assembles the mission line: the task statement when a task
// resolves, a project fallback when only a project resolves, otherwise
// a fixed generic line. Role and stage are appended as qualifiers.
func (p *ContextPackager) mission(g *aggregates.Graph, q StateQuery) string {
	base := defaultMission

	if task := lookupNeuron(g, q.TaskID); task != nil {
		base = task.Statement()
	} else if project := lookupNeuron(g, q.ProjectID); project != nil {
		base = fmt.Sprintf("%s 프로젝트 작업", project.Statement())
	}

	if q.Role != "" {
		base = fmt.Sprintf("%s 역할로 %s", q.Role, base)
	}
	if label, ok := stageLabels[q.Stage]; ok {
		base = fmt.Sprintf("%s (%s 단계)", base, label)
	}

	return base
}

// isConstraint reports whether the neuron belongs in the constraints
// bucket: binding rules, taboos, and decisions tagged as mandatory
func isConstraint(n *entities.Neuron) bool {
	if rule, ok := n.Rule(); ok && rule.Enforcement == entities.EnforcementMust {
		return true
	}
	if identity, ok := n.Identity(); ok && identity.Category == entities.IdentityTaboo {
		return true
	}
	if n.Type() == entities.TypeDecision {
		for _, marker := range mandatoryMarkerTags {
			if n.HasTag(marker) {
				return true
			}
		}
	}
	return false
}

// projectNeuron flattens a scored neuron into its pack projection
func projectNeuron(sn ScoredNeuron) PackNeuron {
	n := sn.Neuron
	out := PackNeuron{
		ID:        n.ID().String(),
		Type:      n.Type().String(),
		Statement: n.Statement(),
		Why:       n.Why(),
		Scope:     string(n.Scope()),
		Status:    string(n.Status()),
		Score:     sn.Score,
		Tags:      n.Tags(),
	}

	switch payload := n.Payload().(type) {
	case entities.RulePayload:
		out.Enforcement = string(payload.Enforcement)
	case entities.IdentityPayload:
		out.Category = string(payload.Category)
	case entities.DecisionPayload:
		out.Alternatives = payload.Alternatives
		out.Tradeoffs = payload.Tradeoffs
	case entities.PlaybookPayload:
		out.Steps = payload.Steps
		out.Trigger = payload.Trigger
	}

	return out
}

// projectReference converts a background neuron into a summary pointer.
// The summary falls back from doc payload to justification to a
// truncated statement; full content is never included.
func projectReference(n *entities.Neuron) PackReference {
	summary := ""
	if doc, ok := n.Doc(); ok {
		summary = doc.Summary
	}
	if summary == "" {
		summary = n.Why()
	}
	if summary == "" {
		summary = truncate(n.Statement(), 120)
	}

	return PackReference{
		ID:      n.ID().String(),
		Title:   n.Statement(),
		Type:    n.Type().String(),
		Summary: summary,
	}
}

// FormatForAI renders the pack into a deterministic prompt block with
// a fixed section order and stable numbering. Presentation only.
func FormatForAI(pack *ContextPack) string {
	var b strings.Builder

	b.WriteString("# 미션\n")
	b.WriteString(pack.Mission)
	b.WriteString("\n")

	if len(pack.Policies) > 0 {
		b.WriteString("\n## 정책\n")
		for i, policy := range pack.Policies {
			line := policy.Statement
			if policy.Enforcement != "" {
				line = fmt.Sprintf("[%s] %s", strings.ToUpper(policy.Enforcement), line)
			}
			if policy.Category != "" {
				line = fmt.Sprintf("[%s] %s", strings.ToUpper(policy.Category), line)
			}
			if policy.Why != "" {
				line = fmt.Sprintf("%s — 이유: %s", line, policy.Why)
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, line)
		}
	}

	if len(pack.Decisions) > 0 {
		b.WriteString("\n## 결정 사항\n")
		for i, decision := range pack.Decisions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, decision.Statement)
			if decision.Tradeoffs != "" {
				fmt.Fprintf(&b, "   트레이드오프: %s\n", decision.Tradeoffs)
			}
		}
	}

	if len(pack.Playbooks) > 0 {
		b.WriteString("\n## 플레이북\n")
		for i, playbook := range pack.Playbooks {
			fmt.Fprintf(&b, "%d. %s\n", i+1, playbook.Statement)
			if playbook.Trigger != "" {
				fmt.Fprintf(&b, "   트리거: %s\n", playbook.Trigger)
			}
			for j, step := range playbook.Steps {
				fmt.Fprintf(&b, "   %d) %s\n", j+1, step)
			}
		}
	}

	if len(pack.Constraints) > 0 {
		b.WriteString("\n## 제약 조건\n")
		for i, constraint := range pack.Constraints {
			fmt.Fprintf(&b, "%d. %s\n", i+1, constraint.Statement)
		}
	}

	if len(pack.References) > 0 {
		b.WriteString("\n## 참고 자료\n")
		for i, ref := range pack.References {
			fmt.Fprintf(&b, "%d. %s (%s): %s\n", i+1, ref.Title, ref.Type, ref.Summary)
		}
	}

	return b.String()
}

func lookupNeuron(g *aggregates.Graph, rawID string) *entities.Neuron {
	if g == nil || rawID == "" {
		return nil
	}
	id, err := valueobjects.NewNeuronIDFromString(rawID)
	if err != nil {
		return nil
	}
	n, err := g.GetNeuron(id)
	if err != nil {
		return nil
	}
	return n
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
