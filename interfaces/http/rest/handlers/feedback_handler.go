package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	appservices "cortex-backend/application/services"
	"cortex-backend/domain/core/aggregates"
	"cortex-backend/pkg/utils"
)

// FeedbackHandler handles feedback HTTP requests
type FeedbackHandler struct {
	feedback *appservices.FeedbackService
	logger   *zap.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedback *appservices.FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
		logger:   logger,
	}
}

// SubmitFeedbackRequest represents the request body for feedback
type SubmitFeedbackRequest struct {
	GraphID          string   `json:"graphId" validate:"required"`
	ContextPackID    string   `json:"contextPackId" validate:"required"`
	Success          bool     `json:"success"`
	Score            int      `json:"score" validate:"min=0,max=100"`
	ReinforceNeurons []string `json:"reinforceNeurons,omitempty"`
	WeakenNeurons    []string `json:"weakenNeurons,omitempty"`
}

// SubmitFeedback handles POST /feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.feedback.Apply(r.Context(), aggregates.GraphID(req.GraphID), appservices.Feedback{
		ContextPackID:    req.ContextPackID,
		Success:          req.Success,
		Score:            req.Score,
		ReinforceNeurons: req.ReinforceNeurons,
		WeakenNeurons:    req.WeakenNeurons,
	})
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to apply feedback")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}
