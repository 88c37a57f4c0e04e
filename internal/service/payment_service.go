package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bloggenie-server/internal/domain"
)

// ReferencePrefix starts every payment reference this service issues.
const ReferencePrefix = "BG-"

// PaymentService prices plans, starts checkouts and completes them after the
// gateway confirms the payment.
type PaymentService struct {
	gateway       domain.PaymentGateway
	payments      domain.PaymentRepository
	subscriptions *SubscriptionService
	logger        domain.Logger
	now           func() time.Time
}

func NewPaymentService(gateway domain.PaymentGateway, payments domain.PaymentRepository, subscriptions *SubscriptionService, logger domain.Logger) *PaymentService {
	return &PaymentService{
		gateway:       gateway,
		payments:      payments,
		subscriptions: subscriptions,
		logger:        logger,
		now:           time.Now,
	}
}

// NewPaymentReference returns a fresh gateway reference.
func NewPaymentReference() string {
	return ReferencePrefix + strings.ToUpper(uuid.NewString())
}

// Pricing returns the plan catalogue converted for a country or locale.
func (s *PaymentService) Pricing(countryOrLocale string) *domain.PricingView {
	code := domain.ResolveCurrency(countryOrLocale)
	view := &domain.PricingView{CurrencyCode: code}
	for _, plan := range domain.Plans() {
		local := domain.Convert(plan.PriceUSD, code)
		view.Plans = append(view.Plans, domain.PlanPrice{
			Plan:          plan,
			LocalAmount:   local,
			MinorUnits:    domain.ToMinorUnits(local, code),
			DisplayAmount: domain.FormatAmount(local, code),
		})
	}
	return view
}

// Checkout starts a payment for planName priced in the payer's local currency.
func (s *PaymentService) Checkout(ctx context.Context, user *domain.User, planName, countryOrLocale, callbackURL string, token string) (*domain.Checkout, error) {
	if s.gateway == nil {
		return nil, domain.ErrGatewayNotConfigured
	}
	tier, err := domain.ParsePlanTier(planName)
	if err != nil {
		return nil, err
	}
	plan, ok := domain.PlanFor(tier)
	if !ok || tier == domain.PlanFree {
		return nil, fmt.Errorf("%w: the free plan cannot be purchased", domain.ErrInvalidPlan)
	}

	code := domain.ResolveCurrency(countryOrLocale)
	local := domain.Convert(plan.PriceUSD, code)
	cfg := domain.CheckoutConfig{
		PayerEmail:   user.Email,
		Amount:       domain.ToMinorUnits(local, code),
		CurrencyCode: code,
		Reference:    NewPaymentReference(),
		Plan:         tier,
		CallbackURL:  callbackURL,
	}

	checkout, err := s.gateway.InitializeCheckout(ctx, cfg)
	if err != nil {
		s.logger.Error("Failed to initialize checkout", err, "user_id", user.ID, "plan", tier.String())
		return nil, err
	}
	checkout.DisplayAmount = domain.FormatAmount(local, code)

	now := s.now()
	attempt := &domain.PaymentAttempt{
		UserID:       user.ID,
		Reference:    cfg.Reference,
		Plan:         tier,
		Amount:       cfg.Amount,
		CurrencyCode: code,
		Status:       domain.PaymentPending,
		Provider:     s.gateway.Name(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.payments.Create(ctx, attempt, token); err != nil {
		return nil, err
	}

	s.logger.Info("Checkout started",
		"user_id", user.ID,
		"plan", tier.String(),
		"currency", code,
		"amount", cfg.Amount,
		"reference", cfg.Reference)
	return checkout, nil
}

// Complete handles the payer's return from checkout. A client-reported
// close or failure never mutates the subscription; anything else is
// verified with the gateway before the subscription is activated.
func (s *PaymentService) Complete(ctx context.Context, user *domain.User, reference, clientStatus string, token string) (*domain.ActivationResult, error) {
	attempt, err := s.payments.GetByReference(ctx, reference, token)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != user.ID {
		return nil, domain.ErrAccessDenied
	}

	switch strings.ToLower(strings.TrimSpace(clientStatus)) {
	case "closed", "cancelled", "canceled", "abandoned":
		s.markUnpaid(ctx, attempt, domain.PaymentAbandoned, token)
		return nil, domain.ErrPaymentNotCompleted
	case "failed", "error":
		s.markUnpaid(ctx, attempt, domain.PaymentFailed, token)
		return nil, domain.ErrPaymentNotCompleted
	}

	return s.verifyAndApply(ctx, attempt, token)
}

// HandleWebhook processes a signed gateway event. Only successful charges act.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	verifier, ok := s.gateway.(domain.WebhookVerifier)
	if !ok {
		return domain.ErrGatewayNotConfigured
	}
	if !verifier.VerifyWebhookSignature(body, signature) {
		return domain.ErrInvalidSignature
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return &domain.ValidationError{Field: "body", Message: "invalid webhook payload"}
	}
	if event.Event != "charge.success" {
		s.logger.Debug("Ignoring webhook event", "event", event.Event)
		return nil
	}
	if !strings.HasPrefix(event.Data.Reference, ReferencePrefix) {
		s.logger.Warn("Ignoring webhook for foreign reference", "reference", event.Data.Reference)
		return nil
	}

	attempt, err := s.payments.GetByReference(ctx, event.Data.Reference, "")
	if err != nil {
		return err
	}
	_, err = s.verifyAndApply(ctx, attempt, "")
	return err
}

func (s *PaymentService) verifyAndApply(ctx context.Context, attempt *domain.PaymentAttempt, token string) (*domain.ActivationResult, error) {
	if s.gateway == nil {
		return nil, domain.ErrGatewayNotConfigured
	}
	outcome, err := s.gateway.Verify(ctx, attempt.Reference)
	if err != nil {
		s.logger.Error("Payment verification failed", err, "reference", attempt.Reference)
		return nil, err
	}

	if outcome.Status != domain.PaymentSucceeded {
		if outcome.Status != domain.PaymentPending {
			s.markUnpaid(ctx, attempt, outcome.Status, token)
		}
		return nil, domain.ErrPaymentNotCompleted
	}
	if outcome.Amount != attempt.Amount || !strings.EqualFold(outcome.CurrencyCode, attempt.CurrencyCode) {
		s.logger.Warn("Payment does not match checkout",
			"reference", attempt.Reference,
			"expected_amount", attempt.Amount,
			"paid_amount", outcome.Amount,
			"expected_currency", attempt.CurrencyCode,
			"paid_currency", outcome.CurrencyCode)
		s.markUnpaid(ctx, attempt, domain.PaymentFailed, token)
		return nil, domain.ErrPaymentMismatch
	}

	// the tier comes from our ledger, never from gateway metadata
	outcome.Plan = attempt.Plan
	return s.subscriptions.ApplyPayment(ctx, attempt.UserID, outcome, token)
}

func (s *PaymentService) markUnpaid(ctx context.Context, attempt *domain.PaymentAttempt, status domain.PaymentStatus, token string) {
	if attempt.Applied || attempt.Status == status {
		return
	}
	attempt.Status = status
	attempt.UpdatedAt = s.now()
	if err := s.payments.Update(ctx, attempt, token); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Failed to record payment status", err, "reference", attempt.Reference, "status", string(status))
	}
}
