package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"nutricoach-backend/internal/logger"
	"nutricoach-backend/internal/models"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Warn("failed to encode response", logger.Err(err))
	}
}

func errorResp(message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message}
}

func errorRespWithDetails(message, details string) models.ErrorResponse {
	return models.ErrorResponse{Error: message, Details: details}
}
