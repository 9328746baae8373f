package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appservices "cortex-backend/application/services"
	"cortex-backend/domain/core/aggregates"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/services"
	pkgerrors "cortex-backend/pkg/errors"
	"cortex-backend/pkg/utils"
)

// ContextHandler handles context pack HTTP requests
type ContextHandler struct {
	stateBuilder *appservices.StateBuilderService
	logger       *zap.Logger
}

// NewContextHandler creates a new context pack handler
func NewContextHandler(stateBuilder *appservices.StateBuilderService, logger *zap.Logger) *ContextHandler {
	return &ContextHandler{
		stateBuilder: stateBuilder,
		logger:       logger,
	}
}

// BuildContextPackRequest represents the request body for building a pack
type BuildContextPackRequest struct {
	GraphID           string              `json:"graphId" validate:"required"`
	Query             services.StateQuery `json:"query"`
	MaxNeurons        int                 `json:"maxNeurons,omitempty" validate:"omitempty,min=1,max=500"`
	MinRelevanceScore *float64            `json:"minRelevanceScore,omitempty" validate:"omitempty,min=0,max=1"`
	IncludeTypes      []string            `json:"includeTypes,omitempty"`
	ExcludeTypes      []string            `json:"excludeTypes,omitempty"`
}

// BuildContextPack handles POST /context-packs
func (h *ContextHandler) BuildContextPack(w http.ResponseWriter, r *http.Request) {
	var req BuildContextPackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	includeTypes, err := parseNeuronTypes(req.IncludeTypes)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	excludeTypes, err := parseNeuronTypes(req.ExcludeTypes)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	pack, err := h.stateBuilder.BuildContextPack(
		r.Context(),
		aggregates.GraphID(req.GraphID),
		req.Query,
		&appservices.BuildOptions{
			MaxNeurons:        req.MaxNeurons,
			MinRelevanceScore: req.MinRelevanceScore,
			IncludeTypes:      includeTypes,
			ExcludeTypes:      excludeTypes,
		},
	)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to build context pack")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, pack)
}

// GetContextPack handles GET /context-packs/{packID}
func (h *ContextHandler) GetContextPack(w http.ResponseWriter, r *http.Request) {
	packID := chi.URLParam(r, "packID")
	if packID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "Pack ID is required")
		return
	}

	pack, err := h.stateBuilder.GetContextPack(r.Context(), packID)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to get context pack")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, pack)
}

// GetContextPackPrompt handles GET /context-packs/{packID}/prompt
func (h *ContextHandler) GetContextPackPrompt(w http.ResponseWriter, r *http.Request) {
	packID := chi.URLParam(r, "packID")
	if packID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "Pack ID is required")
		return
	}

	pack, err := h.stateBuilder.GetContextPack(r.Context(), packID)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to get context pack")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(services.FormatForAI(pack))); err != nil {
		h.logger.Error("Failed to write prompt response", zap.Error(err))
	}
}

// parseNeuronTypes converts raw type names, rejecting unknown ones
func parseNeuronTypes(raw []string) ([]entities.NeuronType, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	result := make([]entities.NeuronType, 0, len(raw))
	for _, s := range raw {
		t := entities.NeuronType(s)
		if !t.IsValid() {
			return nil, pkgerrors.NewValidationError("unknown neuron type: " + s)
		}
		result = append(result, t)
	}
	return result, nil
}
