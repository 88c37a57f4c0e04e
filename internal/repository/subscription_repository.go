package repository

import (
	"context"
	"fmt"

	"bloggenie-server/internal/domain"
)

// SubscriptionRepository keeps the one subscription record per user.
type SubscriptionRepository struct {
	store  domain.DocumentStore
	logger domain.Logger
}

func NewSubscriptionRepository(store domain.DocumentStore, logger domain.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{store: store, logger: logger}
}

// GetByUserID returns the user's record, or domain.ErrRecordNotFound.
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID string, token string) (*domain.Subscription, error) {
	rows, err := r.store.List(ctx, domain.EntitySubscriptions, domain.Query{
		Filter:     map[string]interface{}{"user_id": userID},
		OrderBy:    "updated_at",
		Descending: true,
		Limit:      1,
	}, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrRecordNotFound
	}
	return mapToSubscription(rows[0])
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription, token string) error {
	row, err := r.store.Create(ctx, domain.EntitySubscriptions, subscriptionToRecord(sub), token)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	sub.ID = getString(row, "id")
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription, token string) error {
	if _, err := r.store.Update(ctx, domain.EntitySubscriptions, sub.ID, subscriptionToRecord(sub), token); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

func subscriptionToRecord(sub *domain.Subscription) domain.Record {
	rec := domain.Record{
		"user_id":           sub.UserID,
		"plan_type":         sub.PlanTier.String(),
		"status":            string(sub.Status),
		"expires_at":        formatTime(sub.ExpiresAt),
		"amount":            sub.Amount,
		"currency":          sub.CurrencyCode,
		"payment_reference": sub.PaymentReference,
		"auto_renew":        sub.AutoRenew,
		"created_at":        formatTime(sub.CreatedAt),
		"updated_at":        formatTime(sub.UpdatedAt),
	}
	if sub.ID != "" {
		rec["id"] = sub.ID
	}
	return rec
}

func mapToSubscription(data map[string]interface{}) (*domain.Subscription, error) {
	tier, err := domain.ParsePlanTier(getString(data, "plan_type"))
	if err != nil {
		return nil, err
	}
	status := domain.SubscriptionStatus(getString(data, "status"))
	if !status.Valid() {
		return nil, fmt.Errorf("unknown subscription status %q", status)
	}
	return &domain.Subscription{
		ID:               getString(data, "id"),
		UserID:           getString(data, "user_id"),
		PlanTier:         tier,
		Status:           status,
		ExpiresAt:        getTime(data, "expires_at"),
		Amount:           getInt64(data, "amount"),
		CurrencyCode:     getString(data, "currency"),
		PaymentReference: getString(data, "payment_reference"),
		AutoRenew:        getBool(data, "auto_renew"),
		CreatedAt:        getTime(data, "created_at"),
		UpdatedAt:        getTime(data, "updated_at"),
	}, nil
}
