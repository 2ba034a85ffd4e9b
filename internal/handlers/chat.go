package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nutricoach-backend/internal/logger"
	"nutricoach-backend/internal/middleware"
	"nutricoach-backend/internal/models"
	"nutricoach-backend/internal/services"
)

type coachService interface {
	CheckConfig() error
	Complete(ctx context.Context, req models.ChatTurnRequest) (string, error)
}

type ChatHandler struct {
	coach  coachService
	logger *slog.Logger
}

func NewChatHandler(coach coachService, log *slog.Logger) *ChatHandler {
	return &ChatHandler{coach: coach, logger: log}
}

// Complete handles POST /api/chat.
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	// Configuration is checked before the body is read.
	if err := h.coach.CheckConfig(); err != nil {
		h.handleCoachError(w, r, err)
		return
	}

	var req models.ChatTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleCoachError(w, r, &services.InternalError{Cause: err})
		return
	}

	text, err := h.coach.Complete(r.Context(), req)
	if err != nil {
		h.handleCoachError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatTurnResponse{Text: text})
}

func (h *ChatHandler) handleCoachError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		configErr   *services.ConfigurationError
		providerErr *services.ProviderError
	)

	switch {
	case errors.As(err, &configErr):
		h.logger.Error("LLM configuration missing",
			"missing", configErr.Missing,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResp(configErr.Error()))
	case errors.As(err, &providerErr):
		writeJSON(w, providerErr.StatusCode, errorRespWithDetails(providerErr.Error(), providerErr.Body))
	default:
		h.logger.Error("chat request failed",
			logger.Err(err),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResp((&services.InternalError{}).Error()))
	}
}
