package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/validator"
	apperrors "bloggenie-server/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"

	maxBodyBytes = 1 << 20
	upgradeURL   = "/upgrade"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.User)
	return user, ok && user != nil
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

func withAuth(r *http.Request, user *domain.User, token string) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	ctx = context.WithValue(ctx, tokenContextKey, token)
	return r.WithContext(ctx)
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validator, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("Invalid request body", err.Error())
	}
	if v == nil {
		return nil
	}
	return v.Validate(dst)
}

// requireAuth returns the user and token placed by the auth middleware.
func requireAuth(w http.ResponseWriter, r *http.Request) (*domain.User, string, bool) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return nil, "", false
	}
	token, _ := GetTokenFromContext(r)
	return user, token, true
}

// toAppError maps domain errors onto the HTTP error taxonomy.
func toAppError(err error) *apperrors.AppError {
	var (
		appErr      *apperrors.AppError
		domainValid *domain.ValidationError
		reqValid    *validator.ValidationError
		quota       *domain.QuotaExceededError
		upgrade     *domain.UpgradeRequiredError
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &reqValid):
		field, msg := reqValid.First()
		return apperrors.NewValidationError(fmt.Sprintf("%s: %s", field, msg))
	case errors.As(err, &domainValid):
		return apperrors.NewValidationError(domainValid.Error())
	case errors.As(err, &quota):
		e := apperrors.NewQuotaExceededError(fmt.Sprintf("You have used all %d ideas for today. Upgrade for more.", quota.Limit), err)
		e.Details = quota.DateKey
		return e
	case errors.As(err, &upgrade):
		return apperrors.NewUpgradeRequiredError(fmt.Sprintf("Upgrade to %s to unlock %s", planName(upgrade.RequiredTier), upgrade.Feature), err)
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrInvalidCredentials):
		return apperrors.NewUnauthorizedError("Invalid credentials")
	case errors.Is(err, domain.ErrAccessDenied):
		return apperrors.NewForbiddenError("Access denied")
	case errors.Is(err, domain.ErrIdeaNotFound):
		return apperrors.NewNotFoundError("Idea not found")
	case errors.Is(err, domain.ErrPostNotFound):
		return apperrors.NewNotFoundError("Post not found")
	case errors.Is(err, domain.ErrPaymentNotFound):
		return apperrors.NewNotFoundError("Payment not found")
	case errors.Is(err, domain.ErrRecordNotFound), errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NewNotFoundError("Not found")
	case errors.Is(err, domain.ErrGenerationInProgress):
		return apperrors.NewConflictError("A generation request is already in progress", err)
	case errors.Is(err, domain.ErrRatingNotDue):
		return apperrors.NewConflictError("You have already rated recently", err)
	case errors.Is(err, domain.ErrSubscriptionNotActive):
		return apperrors.NewConflictError("No paid subscription to cancel", err)
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		return apperrors.NewPaymentError("Payment was not completed", err)
	case errors.Is(err, domain.ErrPaymentMismatch):
		return apperrors.NewPaymentError("Payment does not match the checkout", err)
	case errors.Is(err, domain.ErrInvalidPlan):
		return apperrors.NewValidationError("Invalid plan")
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return apperrors.NewValidationError("Unsupported export format")
	case errors.Is(err, domain.ErrUnsupportedRewrite):
		return apperrors.NewValidationError("Unsupported rewrite style")
	case errors.Is(err, domain.ErrInvalidSignature):
		return apperrors.NewUnauthorizedError("Invalid signature")
	case errors.Is(err, domain.ErrUsageUnavailable):
		return apperrors.NewNetworkError("Usage tracking is temporarily unavailable, please retry", err)
	case errors.Is(err, domain.ErrGatewayNotConfigured):
		return apperrors.NewNetworkError("Payments are not available right now", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewNetworkError("Request timed out", err)
	}
	return apperrors.NewInternalError("Internal server error", err)
}

// writeAppError logs server-side failures and writes {"error","type"} with
// the mapped status. Quota denials also carry upgrade_url and remaining.
func writeAppError(w http.ResponseWriter, logger domain.Logger, msg string, err error, fields ...interface{}) {
	appErr := toAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.Error(msg, err, fields...)
	} else {
		logger.Debug(msg, append(fields, "error", err)...)
	}

	body := map[string]interface{}{
		"error": appErr.Message,
		"type":  appErr.Type,
	}
	if appErr.Retriable {
		body["retriable"] = true
	}
	switch appErr.Type {
	case apperrors.ErrorTypeQuotaExceeded:
		body["upgrade_url"] = upgradeURL
		body["remaining"] = 0
		var quota *domain.QuotaExceededError
		if errors.As(err, &quota) {
			body["limit"] = quota.Limit
			body["plan"] = quota.PlanTier
		}
	case apperrors.ErrorTypeUpgradeRequired:
		body["upgrade_url"] = upgradeURL
		var upgrade *domain.UpgradeRequiredError
		if errors.As(err, &upgrade) {
			body["required_plan"] = upgrade.RequiredTier
		}
	}
	writeJSON(w, appErr.StatusCode, body)
}

func planName(tier domain.PlanTier) string {
	if plan, ok := domain.PlanFor(tier); ok {
		return plan.Name
	}
	return tier.String()
}
