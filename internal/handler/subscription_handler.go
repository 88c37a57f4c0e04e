package handler

import (
	"net/http"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/service"
)

const timezoneHeader = "X-Timezone"

type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
	ideas         *service.IdeaService
	logger        domain.Logger
}

func NewSubscriptionHandler(subscriptions *service.SubscriptionService, ideas *service.IdeaService, logger domain.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		ideas:         ideas,
		logger:        logger,
	}
}

// GetSubscription returns the user's plan, its entitlements and catalogue entry
func (h *SubscriptionHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	sub, ent, err := h.subscriptions.Entitlements(r.Context(), user.ID, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to load subscription", err, "user_id", user.ID)
		return
	}

	plan, _ := domain.PlanFor(ent.Tier)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subscription": sub,
		"entitlements": ent,
		"plan":         plan,
	})
}

func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	sub, err := h.subscriptions.Cancel(r.Context(), user.ID, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to cancel subscription", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"subscription": sub})
}

// GetUsage reports today's idea quota without consuming it
func (h *SubscriptionHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	usage, err := h.ideas.Usage(r.Context(), user.ID, r.Header.Get(timezoneHeader), token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to load usage", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
