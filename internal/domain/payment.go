package domain

import (
	"context"
	"time"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentAbandoned PaymentStatus = "abandoned"
)

// CheckoutConfig is handed to a payment gateway to start a checkout.
// Amount is in minor units of CurrencyCode.
type CheckoutConfig struct {
	PayerEmail   string
	Amount       int64
	CurrencyCode string
	Reference    string
	Plan         PlanTier
	CallbackURL  string
}

// Checkout is what the client needs to redirect the payer.
type Checkout struct {
	Reference        string   `json:"reference"`
	AuthorizationURL string   `json:"authorization_url,omitempty"`
	AccessCode       string   `json:"access_code,omitempty"`
	Amount           int64    `json:"amount"`
	CurrencyCode     string   `json:"currency"`
	DisplayAmount    string   `json:"display_amount"`
	Plan             PlanTier `json:"plan"`
	Provider         string   `json:"provider"`
}

// PaymentOutcome is a verified gateway result.
type PaymentOutcome struct {
	Status         PaymentStatus `json:"status"`
	Reference      string        `json:"reference"`
	Amount         int64         `json:"amount"`
	CurrencyCode   string        `json:"currency"`
	Plan           PlanTier      `json:"plan"`
	PaidAt         time.Time     `json:"paid_at"`
	GatewayMessage string        `json:"gateway_message,omitempty"`
}

// PaymentAttempt is the ledger row for one checkout. Applied flips once the
// payment has been credited to a subscription.
type PaymentAttempt struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Reference    string        `json:"reference"`
	Plan         PlanTier      `json:"plan"`
	Amount       int64         `json:"amount"`
	CurrencyCode string        `json:"currency"`
	Status       PaymentStatus `json:"status"`
	Applied      bool          `json:"applied"`
	Provider     string        `json:"provider"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type PaymentGateway interface {
	Name() string
	InitializeCheckout(ctx context.Context, cfg CheckoutConfig) (*Checkout, error)
	Verify(ctx context.Context, reference string) (*PaymentOutcome, error)
}

// WebhookVerifier is implemented by gateways that sign webhook deliveries.
type WebhookVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

type PaymentRepository interface {
	Create(ctx context.Context, attempt *PaymentAttempt, token string) error
	GetByReference(ctx context.Context, reference string, token string) (*PaymentAttempt, error)
	Update(ctx context.Context, attempt *PaymentAttempt, token string) error
}

// PlanPrice is one plan priced in a local currency.
type PlanPrice struct {
	Plan          Plan    `json:"plan"`
	LocalAmount   float64 `json:"local_amount"`
	MinorUnits    int64   `json:"minor_units"`
	DisplayAmount string  `json:"display_amount"`
}

// PricingView is the plan catalogue for one currency.
type PricingView struct {
	CurrencyCode string      `json:"currency"`
	Plans        []PlanPrice `json:"plans"`
}
