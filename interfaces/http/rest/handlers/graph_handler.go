package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appservices "cortex-backend/application/services"
	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
	"cortex-backend/pkg/utils"
)

// GraphHandler handles graph authoring HTTP requests
type GraphHandler struct {
	graphs *appservices.GraphService
	logger *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(graphs *appservices.GraphService, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		graphs: graphs,
		logger: logger,
	}
}

// CreateGraphRequest represents the request body for creating a graph
type CreateGraphRequest struct {
	WorkspaceID string `json:"workspaceId" validate:"required"`
	Name        string `json:"name,omitempty" validate:"omitempty,max=200"`
}

// GraphResponse represents the summary of a graph
type GraphResponse struct {
	ID           string `json:"id"`
	WorkspaceID  string `json:"workspaceId"`
	Name         string `json:"name"`
	NeuronCount  int    `json:"neuronCount"`
	SynapseCount int    `json:"synapseCount"`
	Version      int    `json:"version"`
}

// CreateNeuronRequest represents the request body for creating a neuron
type CreateNeuronRequest struct {
	Type       string   `json:"type" validate:"required"`
	Statement  string   `json:"statement" validate:"required,max=2000"`
	Why        string   `json:"why,omitempty" validate:"omitempty,max=2000"`
	Scope      string   `json:"scope,omitempty" validate:"omitempty,oneof=global project role task"`
	Status     string   `json:"status,omitempty" validate:"omitempty,oneof=draft active"`
	Confidence *int     `json:"confidence,omitempty" validate:"omitempty,min=0,max=100"`
	Importance *int     `json:"importance,omitempty" validate:"omitempty,min=1,max=10"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	ProjectID  string   `json:"projectId,omitempty"`
	RoleID     string   `json:"roleId,omitempty"`

	// Payload fields, interpreted by neuron type
	Enforcement  string   `json:"enforcement,omitempty" validate:"omitempty,oneof=must should may"`
	Category     string   `json:"category,omitempty" validate:"omitempty,oneof=value taboo quality"`
	Alternatives []string `json:"alternatives,omitempty"`
	Tradeoffs    string   `json:"tradeoffs,omitempty"`
	Steps        []string `json:"steps,omitempty"`
	Trigger      string   `json:"trigger,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Source       string   `json:"source,omitempty"`
}

// CreateSynapseRequest represents the request body for creating a synapse
type CreateSynapseRequest struct {
	SourceID string  `json:"sourceId" validate:"required"`
	TargetID string  `json:"targetId" validate:"required"`
	Type     string  `json:"type" validate:"required"`
	Weight   float64 `json:"weight,omitempty" validate:"omitempty,min=0.1,max=1"`
}

// CreateGraph handles POST /graphs
func (h *GraphHandler) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var req CreateGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	graph, err := h.graphs.CreateGraph(r.Context(), req.WorkspaceID, req.Name)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to create graph")
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, toGraphResponse(graph))
}

// GetGraph handles GET /graphs/{graphID}
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	if graphID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "Graph ID is required")
		return
	}

	graph, err := h.graphs.GetGraph(r.Context(), aggregates.GraphID(graphID))
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to get graph")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, toGraphResponse(graph))
}

// CreateNeuron handles POST /graphs/{graphID}/neurons
func (h *GraphHandler) CreateNeuron(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	if graphID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "Graph ID is required")
		return
	}

	var req CreateNeuronRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	neuronType := entities.NeuronType(req.Type)
	if !neuronType.IsValid() {
		respondError(w, h.logger, http.StatusBadRequest, "Unknown neuron type: "+req.Type)
		return
	}

	scope := entities.ScopeGlobal
	if req.Scope != "" {
		scope = entities.Scope(req.Scope)
	}

	payload, err := buildPayload(neuronType, req)
	if err != nil {
		respondDomainError(w, h.logger, err, "Invalid payload")
		return
	}

	neuronID, err := h.graphs.AddNeuron(r.Context(), aggregates.GraphID(graphID), appservices.CreateNeuronInput{
		Type:       neuronType,
		Statement:  req.Statement,
		Why:        req.Why,
		Scope:      scope,
		Status:     entities.NeuronStatus(req.Status),
		Confidence: req.Confidence,
		Importance: req.Importance,
		Tags:       req.Tags,
		ProjectID:  req.ProjectID,
		RoleID:     req.RoleID,
		Payload:    payload,
	})
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to create neuron")
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]string{
		"id":        neuronID.String(),
		"createdAt": utils.NowRFC3339(),
	})
}

// CreateSynapse handles POST /graphs/{graphID}/synapses
func (h *GraphHandler) CreateSynapse(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	if graphID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "Graph ID is required")
		return
	}

	var req CreateSynapseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	synapseType := entities.SynapseType(req.Type)
	if !synapseType.IsValid() {
		respondError(w, h.logger, http.StatusBadRequest, "Unknown synapse type: "+req.Type)
		return
	}

	sourceID, err := valueobjects.NewNeuronIDFromString(req.SourceID)
	if err != nil {
		respondDomainError(w, h.logger, err, "Invalid source ID")
		return
	}
	targetID, err := valueobjects.NewNeuronIDFromString(req.TargetID)
	if err != nil {
		respondDomainError(w, h.logger, err, "Invalid target ID")
		return
	}

	weight := req.Weight
	if weight == 0 {
		weight = entities.MaxSynapseWeight
	}

	synapseID, err := h.graphs.AddSynapse(r.Context(), aggregates.GraphID(graphID), appservices.CreateSynapseInput{
		SourceID: sourceID,
		TargetID: targetID,
		Type:     synapseType,
		Weight:   weight,
	})
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to create synapse")
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]string{
		"id":        synapseID.String(),
		"createdAt": utils.NowRFC3339(),
	})
}

func toGraphResponse(graph *aggregates.Graph) GraphResponse {
	return GraphResponse{
		ID:           graph.ID().String(),
		WorkspaceID:  graph.WorkspaceID(),
		Name:         graph.Name(),
		NeuronCount:  graph.NeuronCount(),
		SynapseCount: graph.SynapseCount(),
		Version:      graph.Version(),
	}
}

// buildPayload assembles the typed payload for the neuron type.
// Payload fields on a type that does not carry them are rejected so a
// typo does not silently drop data.
func buildPayload(neuronType entities.NeuronType, req CreateNeuronRequest) (entities.Payload, error) {
	switch neuronType {
	case entities.TypeRule:
		if req.Enforcement == "" {
			return nil, nil
		}
		return entities.RulePayload{Enforcement: entities.Enforcement(req.Enforcement)}, nil
	case entities.TypeIdentity:
		if req.Category == "" {
			return nil, nil
		}
		return entities.IdentityPayload{Category: entities.IdentityCategory(req.Category)}, nil
	case entities.TypeDecision:
		if len(req.Alternatives) == 0 && req.Tradeoffs == "" {
			return nil, nil
		}
		return entities.DecisionPayload{Alternatives: req.Alternatives, Tradeoffs: req.Tradeoffs}, nil
	case entities.TypePlaybook:
		if len(req.Steps) == 0 && req.Trigger == "" {
			return nil, nil
		}
		return entities.PlaybookPayload{Steps: req.Steps, Trigger: req.Trigger}, nil
	case entities.TypeDoc:
		if req.Summary == "" && req.Source == "" {
			return nil, nil
		}
		return entities.DocPayload{Summary: req.Summary, Source: req.Source}, nil
	default:
		if req.Enforcement != "" || req.Category != "" || len(req.Alternatives) > 0 ||
			len(req.Steps) > 0 || req.Trigger != "" || req.Summary != "" {
			return nil, pkgerrors.NewValidationError("payload fields not allowed for type " + string(neuronType))
		}
		return nil, nil
	}
}
