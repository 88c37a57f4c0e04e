package handler

import (
	"net/http"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/service"
	"bloggenie-server/internal/validator"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService   domain.AuthService
	subscriptions *service.SubscriptionService
	validate      *validator.Validator
	logger        domain.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService domain.AuthService, subscriptions *service.SubscriptionService, validate *validator.Validator, logger domain.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		subscriptions: subscriptions,
		validate:      validate,
		logger:        logger,
	}
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"max=256"`
}

// SignIn exchanges email and password for a session
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeAppError(w, h.logger, "Invalid sign in request", err)
		return
	}

	session, err := h.authService.SignIn(req.Email, req.Password)
	if err != nil {
		h.logger.Info("Sign in failed", "email", req.Email)
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if err := h.authService.SignOut(token); err != nil {
		h.logger.Warn("Sign out failed", "user_id", user.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// GetProfile returns the current user together with their plan
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	sub, ent, err := h.subscriptions.Entitlements(r.Context(), user.ID, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to load subscription", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":         user,
		"subscription": sub,
		"entitlements": ent,
	})
}
