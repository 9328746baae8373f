package services

// Stage identifies where in the work cycle the caller currently is
type Stage string

const (
	StagePlanning     Stage = "planning"
	StageImplementing Stage = "implementing"
	StageReviewing    Stage = "reviewing"
	StageDeploying    Stage = "deploying"
)

// TimeConstraint expresses how much time pressure the caller is under
type TimeConstraint string

const (
	TimeUrgent  TimeConstraint = "urgent"
	TimeNormal  TimeConstraint = "normal"
	TimeRelaxed TimeConstraint = "relaxed"
)

// QueryConstraints carries the caller's situational constraints.
// Unset fields mean "no constraint"; they are never validation errors.
type QueryConstraints struct {
	Time    TimeConstraint `json:"time,omitempty"`
	Cost    string         `json:"cost,omitempty"`
	Quality string         `json:"quality,omitempty"`
}

// StateQuery describes "now": what the caller is working on and under
// which constraints. Every field is optional.
type StateQuery struct {
	ProjectID   string           `json:"projectId,omitempty"`
	Role        string           `json:"role,omitempty"`
	TaskID      string           `json:"taskId,omitempty"`
	Stage       Stage            `json:"stage,omitempty"`
	Constraints QueryConstraints `json:"constraints,omitempty"`
	Keywords    []string         `json:"keywords,omitempty"`
}

// IsUrgent reports whether the query is under urgent time pressure
func (q StateQuery) IsUrgent() bool {
	return q.Constraints.Time == TimeUrgent
}
