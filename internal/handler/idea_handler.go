package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/service"
	"bloggenie-server/internal/validator"
)

type IdeaHandler struct {
	ideas    *service.IdeaService
	validate *validator.Validator
	logger   domain.Logger
}

func NewIdeaHandler(ideas *service.IdeaService, validate *validator.Validator, logger domain.Logger) *IdeaHandler {
	return &IdeaHandler{
		ideas:    ideas,
		validate: validate,
		logger:   logger,
	}
}

type generateIdeasRequest struct {
	Topic    string `json:"topic" validate:"required,max=200"`
	Count    int    `json:"count" validate:"omitempty,min=1,max=10"`
	Timezone string `json:"timezone" validate:"max=64"`
}

// Generate produces ideas for a topic and consumes one unit of the daily quota
func (h *IdeaHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req generateIdeasRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeAppError(w, h.logger, "Invalid idea request", err)
		return
	}

	tz := req.Timezone
	if tz == "" {
		tz = r.Header.Get(timezoneHeader)
	}
	result, err := h.ideas.Generate(r.Context(), user, req.Topic, req.Count, tz, token)
	if err != nil {
		writeAppError(w, h.logger, "Idea generation failed", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	ideas, err := h.ideas.List(r.Context(), user.ID, queryInt(r, "limit"), token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to list ideas", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ideas": ideas})
}

func (h *IdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	ideaID := mux.Vars(r)["id"]
	if err := h.ideas.Delete(r.Context(), user.ID, ideaID, token); err != nil {
		writeAppError(w, h.logger, "Failed to delete idea", err, "user_id", user.ID, "idea_id", ideaID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
