package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "cortex-backend/pkg/errors"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError writes a JSON error envelope
func respondError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	respondJSON(w, logger, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

// respondDomainError maps domain error types to HTTP status codes
func respondDomainError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	switch {
	case pkgerrors.IsValidation(err):
		respondError(w, logger, http.StatusBadRequest, err.Error())
	case pkgerrors.IsNotFound(err):
		respondError(w, logger, http.StatusNotFound, err.Error())
	case pkgerrors.IsConflict(err):
		respondError(w, logger, http.StatusConflict, err.Error())
	default:
		logger.Error(fallback, zap.Error(err))
		respondError(w, logger, http.StatusInternalServerError, fallback)
	}
}
