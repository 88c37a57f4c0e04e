package handler

import (
	"net/http"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/service"
	"bloggenie-server/internal/validator"
)

// PreferenceHandler handles preference-related HTTP requests
type PreferenceHandler struct {
	preferenceService *service.UserPreferencesService
	validate          *validator.Validator
	logger            domain.Logger
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferenceService *service.UserPreferencesService, validate *validator.Validator, logger domain.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		preferenceService: preferenceService,
		validate:          validate,
		logger:            logger,
	}
}

// GetPreferences handles getting user preferences
func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	preferences, err := h.preferenceService.GetPreferences(r.Context(), user.ID, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to get preferences", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, preferences)
}

// UpdatePreferences applies a partial update; omitted fields keep their value
func (h *PreferenceHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var update domain.PreferencesUpdate
	if err := decodeJSON(w, r, h.validate, &update); err != nil {
		writeAppError(w, h.logger, "Invalid preferences", err)
		return
	}

	preferences, err := h.preferenceService.UpdatePreferences(r.Context(), user.ID, &update, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to update preferences", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, preferences)
}
