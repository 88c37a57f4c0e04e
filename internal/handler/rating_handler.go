package handler

import (
	"net/http"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/service"
	"bloggenie-server/internal/validator"
)

type RatingHandler struct {
	ratings  *service.RatingService
	validate *validator.Validator
	logger   domain.Logger
}

func NewRatingHandler(ratings *service.RatingService, validate *validator.Validator, logger domain.Logger) *RatingHandler {
	return &RatingHandler{
		ratings:  ratings,
		validate: validate,
		logger:   logger,
	}
}

// Prompt tells the client whether to show the rating dialog
func (h *RatingHandler) Prompt(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	prompt, err := h.ratings.Prompt(r.Context(), user.ID, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to evaluate rating prompt", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

type submitRatingRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"max=1000"`
}

func (h *RatingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req submitRatingRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeAppError(w, h.logger, "Invalid rating", err)
		return
	}

	rating, err := h.ratings.Submit(r.Context(), user, req.Rating, req.Feedback, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to submit rating", err, "user_id", user.ID)
		return
	}
	rating.UserID = ""
	writeJSON(w, http.StatusCreated, rating)
}

// Reviews is public
func (h *RatingHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.ratings.Reviews(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeAppError(w, h.logger, "Failed to list reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}
