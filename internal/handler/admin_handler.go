package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/service"
	"bloggenie-server/internal/validator"
)

const adminReferencePrefix = "ADMIN-"

// AdminHandler exposes support endpoints protected by X-Admin-Secret.
// They run with service-level store access, so the secret must stay internal.
type AdminHandler struct {
	secret        string
	subscriptions *service.SubscriptionService
	validate      *validator.Validator
	logger        domain.Logger
}

func NewAdminHandler(secret string, subscriptions *service.SubscriptionService, validate *validator.Validator, logger domain.Logger) *AdminHandler {
	return &AdminHandler{
		secret:        secret,
		subscriptions: subscriptions,
		validate:      validate,
		logger:        logger,
	}
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	given := r.Header.Get("X-Admin-Secret")
	return h.secret != "" && given != "" && subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) == 1
}

// GetSubscription shows any user's subscription.
func (h *AdminHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	userID := mux.Vars(r)["id"]
	sub, ent, err := h.subscriptions.Entitlements(r.Context(), userID, "")
	if err != nil {
		writeAppError(w, h.logger, "Failed to load subscription", err, "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"subscription": sub, "entitlements": ent})
}

type grantPlanRequest struct {
	Plan string `json:"plan" validate:"required,plan"`
}

// GrantSubscription credits a complimentary period through the payments
// ledger, so it renews and expires exactly like a paid one.
func (h *AdminHandler) GrantSubscription(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	userID := mux.Vars(r)["id"]
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User id is required")
		return
	}

	var req grantPlanRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeAppError(w, h.logger, "Invalid grant request", err)
		return
	}
	tier, err := domain.ParsePlanTier(req.Plan)
	if err != nil {
		writeAppError(w, h.logger, "Invalid plan", err)
		return
	}

	outcome := &domain.PaymentOutcome{
		Status:         domain.PaymentSucceeded,
		Reference:      adminReferencePrefix + strings.ToUpper(uuid.NewString()),
		CurrencyCode:   domain.DefaultCurrency,
		Plan:           tier,
		PaidAt:         time.Now(),
		GatewayMessage: "complimentary",
	}
	result, err := h.subscriptions.ApplyPayment(r.Context(), userID, outcome, "")
	if err != nil {
		writeAppError(w, h.logger, "Failed to grant subscription", err, "user_id", userID)
		return
	}

	h.logger.Info("Complimentary plan granted", "user_id", userID, "plan", tier.String(), "reference", outcome.Reference)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subscription": result.Subscription,
		"entitlements": result.Entitlements,
	})
}
