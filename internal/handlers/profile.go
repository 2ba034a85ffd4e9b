package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"nutricoach-backend/internal/logger"
	"nutricoach-backend/internal/models"
	"nutricoach-backend/internal/repository"
)

type profileRepository interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error)
}

type ProfileHandler struct {
	profiles profileRepository
	logger   *slog.Logger
}

func NewProfileHandler(profiles profileRepository, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: log}
}

// Get handles GET /api/profile?id=<telegram id>.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Missing telegram ID"))
		return
	}

	telegramID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid telegram ID"))
		return
	}

	profile, err := h.profiles.GetByTelegramID(r.Context(), telegramID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("User profile not found"))
		return
	}
	if err != nil {
		h.logger.Error("failed to load profile", "telegram_id", telegramID, logger.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("Internal Server Error"))
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
