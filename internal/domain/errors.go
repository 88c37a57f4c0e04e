package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrAccessDenied          = errors.New("access denied")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrRecordNotFound        = errors.New("record not found")
	ErrIdeaNotFound          = errors.New("idea not found")
	ErrPostNotFound          = errors.New("post not found")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrQuotaExceeded         = errors.New("daily idea limit reached")
	ErrUpgradeRequired       = errors.New("upgrade required")
	ErrGenerationInProgress  = errors.New("a generation request is already in progress")
	ErrPaymentNotCompleted   = errors.New("payment was not completed")
	ErrPaymentMismatch       = errors.New("payment amount does not match checkout")
	ErrInvalidPlan           = errors.New("invalid plan")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrRatingNotDue          = errors.New("rating already submitted recently")
	ErrUsageUnavailable      = errors.New("usage counter unavailable")
	ErrGatewayNotConfigured  = errors.New("payment gateway not configured")
	ErrUnsupportedFormat     = errors.New("unsupported export format")
	ErrUnsupportedRewrite    = errors.New("unsupported rewrite style")
	ErrGeneratorUnavailable  = errors.New("generation backend unavailable")
	ErrSubscriptionNotActive = errors.New("subscription is not active")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// QuotaExceededError carries the limit that denied a request.
type QuotaExceededError struct {
	Limit    int
	Count    int
	DateKey  string
	PlanTier PlanTier
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: %d of %d used on %s", ErrQuotaExceeded.Error(), e.Count, e.Limit, e.DateKey)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// UpgradeRequiredError names the feature and the tier that unlocks it.
type UpgradeRequiredError struct {
	Feature      string
	RequiredTier PlanTier
}

func (e *UpgradeRequiredError) Error() string {
	return fmt.Sprintf("%s: %s requires the %s plan", ErrUpgradeRequired.Error(), e.Feature, e.RequiredTier)
}

func (e *UpgradeRequiredError) Is(target error) bool {
	return target == ErrUpgradeRequired
}
