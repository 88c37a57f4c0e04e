package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloggenie-server/internal/domain"
	"bloggenie-server/pkg/keylock"
)

// SubscriptionService owns the per-user subscription record: it creates the
// free record on first access, expires paid periods lazily and applies
// verified payments exactly once per reference.
type SubscriptionService struct {
	subscriptions domain.SubscriptionRepository
	payments      domain.PaymentRepository
	logger        domain.Logger
	userLocks     *keylock.KeyLock
	now           func() time.Time
}

func NewSubscriptionService(subscriptions domain.SubscriptionRepository, payments domain.PaymentRepository, logger domain.Logger) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		payments:      payments,
		logger:        logger,
		userLocks:     keylock.New(),
		now:           time.Now,
	}
}

// Current returns the user's subscription, creating a free one if none exists
// and reverting a lapsed or cancelled paid period to free.
func (s *SubscriptionService) Current(ctx context.Context, userID string, token string) (*domain.Subscription, error) {
	unlock := s.userLocks.Lock(userID)
	defer unlock()
	return s.current(ctx, userID, token)
}

func (s *SubscriptionService) current(ctx context.Context, userID string, token string) (*domain.Subscription, error) {
	now := s.now()
	sub, err := s.subscriptions.GetByUserID(ctx, userID, token)
	if errors.Is(err, domain.ErrRecordNotFound) {
		sub = s.freeSubscription(userID, now)
		if err := s.subscriptions.Create(ctx, sub, token); err != nil {
			return nil, fmt.Errorf("failed to create free subscription: %w", err)
		}
		s.logger.Info("Created free subscription", "user_id", userID)
		return sub, nil
	}
	if err != nil {
		return nil, err
	}

	if sub.PlanTier != domain.PlanFree && !domain.IsPremium(sub, now) && sub.Status != domain.StatusPending {
		previous := sub.PlanTier
		if sub.Status == domain.StatusActive {
			sub.Status = domain.StatusExpired
			sub.UpdatedAt = now
			if err := s.subscriptions.Update(ctx, sub, token); err != nil {
				return nil, fmt.Errorf("failed to expire subscription: %w", err)
			}
		}
		s.resetToFree(sub, now)
		if err := s.subscriptions.Update(ctx, sub, token); err != nil {
			return nil, fmt.Errorf("failed to revert subscription to free: %w", err)
		}
		s.logger.Info("Subscription reverted to free", "user_id", userID, "previous_plan", previous.String())
	}
	return sub, nil
}

// Entitlements evaluates the user's current subscription.
func (s *SubscriptionService) Entitlements(ctx context.Context, userID string, token string) (*domain.Subscription, domain.Entitlements, error) {
	sub, err := s.Current(ctx, userID, token)
	if err != nil {
		return nil, domain.Entitlements{}, err
	}
	return sub, domain.EvaluateEntitlements(sub, s.now()), nil
}

// ApplyPayment credits a verified payment to the user's subscription. A
// reference that was already credited is a no-op that reports Duplicate.
// Renewing the active tier extends from the current expiry; any other
// change starts a fresh period now.
func (s *SubscriptionService) ApplyPayment(ctx context.Context, userID string, outcome *domain.PaymentOutcome, token string) (*domain.ActivationResult, error) {
	if outcome == nil || outcome.Reference == "" {
		return nil, &domain.ValidationError{Field: "reference", Message: "payment reference is required"}
	}
	if outcome.Status != domain.PaymentSucceeded {
		return nil, domain.ErrPaymentNotCompleted
	}
	plan, ok := domain.PlanFor(outcome.Plan)
	if !ok || outcome.Plan == domain.PlanFree {
		return nil, domain.ErrInvalidPlan
	}

	unlock := s.userLocks.Lock(userID)
	defer unlock()

	attempt, err := s.payments.GetByReference(ctx, outcome.Reference, token)
	if err != nil && !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}
	if attempt != nil && attempt.UserID != "" && attempt.UserID != userID {
		return nil, domain.ErrAccessDenied
	}

	sub, err := s.current(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if (attempt != nil && attempt.Applied) || sub.PaymentReference == outcome.Reference {
		s.logger.Info("Duplicate payment ignored", "user_id", userID, "reference", outcome.Reference)
		return &domain.ActivationResult{
			Subscription: sub,
			Entitlements: domain.EvaluateEntitlements(sub, now),
			Duplicate:    true,
		}, nil
	}

	start := now
	if sub.PlanTier == outcome.Plan && domain.IsPremium(sub, now) {
		start = sub.ExpiresAt
	}
	sub.PlanTier = outcome.Plan
	sub.Status = domain.StatusActive
	sub.ExpiresAt = start.Add(plan.Period)
	sub.Amount = outcome.Amount
	sub.CurrencyCode = outcome.CurrencyCode
	sub.PaymentReference = outcome.Reference
	sub.AutoRenew = true
	sub.UpdatedAt = now

	if attempt == nil {
		attempt = &domain.PaymentAttempt{
			UserID:       userID,
			Reference:    outcome.Reference,
			Plan:         outcome.Plan,
			Amount:       outcome.Amount,
			CurrencyCode: outcome.CurrencyCode,
			CreatedAt:    now,
		}
	}
	attempt.Status = domain.PaymentSucceeded
	attempt.Applied = true
	attempt.UpdatedAt = now

	// mark the reference applied before extending the period
	if attempt.ID == "" {
		err = s.payments.Create(ctx, attempt, token)
	} else {
		err = s.payments.Update(ctx, attempt, token)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record payment %s: %w", outcome.Reference, err)
	}

	if err := s.subscriptions.Update(ctx, sub, token); err != nil {
		attempt.Applied = false
		if rollbackErr := s.payments.Update(ctx, attempt, token); rollbackErr != nil {
			s.logger.Error("Failed to release payment after activation failure", rollbackErr, "reference", outcome.Reference)
		}
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}

	s.logger.Info("Subscription activated",
		"user_id", userID,
		"plan", sub.PlanTier.String(),
		"expires_at", sub.ExpiresAt.Format(time.RFC3339),
		"reference", outcome.Reference)

	return &domain.ActivationResult{
		Subscription: sub,
		Entitlements: domain.EvaluateEntitlements(sub, now),
	}, nil
}

// Cancel stops renewal and removes premium access immediately.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string, token string) (*domain.Subscription, error) {
	unlock := s.userLocks.Lock(userID)
	defer unlock()

	sub, err := s.current(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if sub.PlanTier == domain.PlanFree {
		return nil, domain.ErrSubscriptionNotActive
	}

	sub.Status = domain.StatusCancelled
	sub.AutoRenew = false
	sub.UpdatedAt = s.now()
	if err := s.subscriptions.Update(ctx, sub, token); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	s.logger.Info("Subscription cancelled", "user_id", userID, "plan", sub.PlanTier.String())
	return sub, nil
}

func (s *SubscriptionService) freeSubscription(userID string, now time.Time) *domain.Subscription {
	return &domain.Subscription{
		UserID:       userID,
		PlanTier:     domain.PlanFree,
		Status:       domain.StatusActive,
		ExpiresAt:    now.Add(domain.FreePlanValidity),
		CurrencyCode: domain.DefaultCurrency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *SubscriptionService) resetToFree(sub *domain.Subscription, now time.Time) {
	sub.PlanTier = domain.PlanFree
	sub.Status = domain.StatusActive
	sub.ExpiresAt = now.Add(domain.FreePlanValidity)
	sub.Amount = 0
	sub.AutoRenew = false
	sub.UpdatedAt = now
}
