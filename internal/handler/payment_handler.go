package handler

import (
	"io"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/service"
	"bloggenie-server/internal/validator"
)

const paystackSignatureHeader = "x-paystack-signature"

type PaymentHandler struct {
	payments *service.PaymentService
	prefs    *service.UserPreferencesService
	validate *validator.Validator
	logger   domain.Logger
}

func NewPaymentHandler(payments *service.PaymentService, prefs *service.UserPreferencesService, validate *validator.Validator, logger domain.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		prefs:    prefs,
		validate: validate,
		logger:   logger,
	}
}

// Pricing lists the plans in the currency of ?country= or the browser locale
func (h *PaymentHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.payments.Pricing(locationHint(r, "")))
}

type checkoutRequest struct {
	Plan        string `json:"plan" validate:"required,plan"`
	Country     string `json:"country" validate:"max=64"`
	CallbackURL string `json:"callback_url" validate:"omitempty,url"`
}

func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeAppError(w, h.logger, "Invalid checkout request", err)
		return
	}

	country := req.Country
	if country == "" {
		country = h.prefs.Country(r.Context(), user.ID, token)
	}
	checkout, err := h.payments.Checkout(r.Context(), user, req.Plan, locationHint(r, country), req.CallbackURL, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to start checkout", err, "user_id", user.ID, "plan", req.Plan)
		return
	}
	writeJSON(w, http.StatusCreated, checkout)
}

type callbackRequest struct {
	Reference string `json:"reference" validate:"required,max=100"`
	Status    string `json:"status" validate:"max=32"`
}

// Callback completes a checkout after the payer returns from the gateway.
// The client status is only trusted to cancel.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req callbackRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeAppError(w, h.logger, "Invalid payment callback", err)
		return
	}

	result, err := h.payments.Complete(r.Context(), user, req.Reference, req.Status, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to complete payment", err, "user_id", user.ID, "reference", req.Reference)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subscription": result.Subscription,
		"entitlements": result.Entitlements,
		"duplicate":    result.Duplicate,
	})
}

// Webhook receives signed gateway events
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.payments.HandleWebhook(r.Context(), body, r.Header.Get(paystackSignatureHeader)); err != nil {
		writeAppError(w, h.logger, "Webhook rejected", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// locationHint picks the explicit country, then ?country=, then the first
// Accept-Language tag.
func locationHint(r *http.Request, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if q := strings.TrimSpace(r.URL.Query().Get("country")); q != "" {
		return q
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}
