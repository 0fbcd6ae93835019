package handler

import (
	"net/http"

	"cafe-kiosk/internal/model"
	"cafe-kiosk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProfileHandler handles loyalty ledger HTTP requests.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("handler", "profile").Logger(),
	}
}

// PointsResponse is the balance payload for a single user.
type PointsResponse struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

// Points handles GET /api/profiles/{userID}/points requests.
func (h *ProfileHandler) Points(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid user ID format", h.logger)
		return
	}

	points, err := h.service.Points(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve balance", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, PointsResponse{UserID: userID.String(), Points: points})
}
