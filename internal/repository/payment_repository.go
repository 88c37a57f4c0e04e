package repository

import (
	"context"
	"fmt"

	"bloggenie-server/internal/domain"
)

// PaymentRepository is the payments ledger, keyed by gateway reference.
type PaymentRepository struct {
	store  domain.DocumentStore
	logger domain.Logger
}

func NewPaymentRepository(store domain.DocumentStore, logger domain.Logger) *PaymentRepository {
	return &PaymentRepository{store: store, logger: logger}
}

func (r *PaymentRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt, token string) error {
	row, err := r.store.Create(ctx, domain.EntityPayments, paymentToRecord(attempt), token)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	attempt.ID = getString(row, "id")
	return nil
}

// GetByReference returns domain.ErrPaymentNotFound when no attempt carries reference.
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string, token string) (*domain.PaymentAttempt, error) {
	rows, err := r.store.List(ctx, domain.EntityPayments, domain.Query{
		Filter: map[string]interface{}{"reference": reference},
		Limit:  1,
	}, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrPaymentNotFound
	}
	return mapToPayment(rows[0])
}

func (r *PaymentRepository) Update(ctx context.Context, attempt *domain.PaymentAttempt, token string) error {
	if _, err := r.store.Update(ctx, domain.EntityPayments, attempt.ID, paymentToRecord(attempt), token); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func paymentToRecord(p *domain.PaymentAttempt) domain.Record {
	rec := domain.Record{
		"user_id":    p.UserID,
		"reference":  p.Reference,
		"plan":       p.Plan.String(),
		"amount":     p.Amount,
		"currency":   p.CurrencyCode,
		"status":     string(p.Status),
		"applied":    p.Applied,
		"provider":   p.Provider,
		"created_at": formatTime(p.CreatedAt),
		"updated_at": formatTime(p.UpdatedAt),
	}
	if p.ID != "" {
		rec["id"] = p.ID
	}
	return rec
}

func mapToPayment(data map[string]interface{}) (*domain.PaymentAttempt, error) {
	plan, err := domain.ParsePlanTier(getString(data, "plan"))
	if err != nil {
		return nil, err
	}
	return &domain.PaymentAttempt{
		ID:           getString(data, "id"),
		UserID:       getString(data, "user_id"),
		Reference:    getString(data, "reference"),
		Plan:         plan,
		Amount:       getInt64(data, "amount"),
		CurrencyCode: getString(data, "currency"),
		Status:       domain.PaymentStatus(getString(data, "status")),
		Applied:      getBool(data, "applied"),
		Provider:     getString(data, "provider"),
		CreatedAt:    getTime(data, "created_at"),
		UpdatedAt:    getTime(data, "updated_at"),
	}, nil
}
