package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloggenie-server/internal/domain"
)

func TestPaymentService_PricingInLocalCurrency(t *testing.T) {
	env := newTestEnv()

	view := env.payments.Pricing("NG")
	assert.Equal(t, "NGN", view.CurrencyCode)
	require.Len(t, view.Plans, 3)

	starter := view.Plans[1]
	assert.Equal(t, domain.PlanStarter, starter.Plan.Tier)
	assert.Equal(t, float64(4000), starter.LocalAmount)
	assert.Equal(t, int64(400000), starter.MinorUnits)
	assert.Contains(t, starter.DisplayAmount, "4,000")

	pro := view.Plans[2]
	assert.Equal(t, float64(40000), pro.LocalAmount)

	assert.Equal(t, "USD", env.payments.Pricing("Atlantis").CurrencyCode)
	assert.Equal(t, "GBP", env.payments.Pricing("en-GB").CurrencyCode)
}

func TestPaymentService_CheckoutRecordsPendingAttempt(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := &domain.User{ID: "u1", Email: "ada@example.com"}

	checkout, err := env.payments.Checkout(ctx, user, "starter", "Nigeria", "https://app.example.com/return", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(checkout.Reference, ReferencePrefix))
	assert.Equal(t, int64(400000), checkout.Amount)
	assert.Equal(t, "NGN", checkout.CurrencyCode)
	assert.NotEmpty(t, checkout.DisplayAmount)

	attempt, err := env.paymentRepo.GetByReference(ctx, checkout.Reference, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, attempt.Status)
	assert.Equal(t, domain.PlanStarter, attempt.Plan)
	assert.False(t, attempt.Applied)

	_, err = env.payments.Checkout(ctx, user, "free", "NG", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)
	_, err = env.payments.Checkout(ctx, user, "platinum", "NG", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)
}

func TestPaymentService_ClosedCheckoutNeverActivates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := &domain.User{ID: "u1", Email: "ada@example.com"}

	checkout, err := env.payments.Checkout(ctx, user, "pro", "US", "", "")
	require.NoError(t, err)

	_, err = env.payments.Complete(ctx, user, checkout.Reference, "closed", "")
	assert.ErrorIs(t, err, domain.ErrPaymentNotCompleted)

	sub, err := env.subscriptions.Current(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, sub.PlanTier)

	attempt, err := env.paymentRepo.GetByReference(ctx, checkout.Reference, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAbandoned, attempt.Status)
}

func TestPaymentService_FailedVerificationDoesNotActivate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := &domain.User{ID: "u1", Email: "ada@example.com"}

	checkout, err := env.payments.Checkout(ctx, user, "starter", "US", "", "")
	require.NoError(t, err)
	env.gateway.SetOutcome(checkout.Reference, domain.PaymentFailed)

	_, err = env.payments.Complete(ctx, user, checkout.Reference, "success", "")
	assert.ErrorIs(t, err, domain.ErrPaymentNotCompleted)

	_, ent, err := env.subscriptions.Entitlements(ctx, user.ID, "")
	require.NoError(t, err)
	assert.False(t, ent.Premium)
}

func TestPaymentService_OtherUsersReferenceIsDenied(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	payer := &domain.User{ID: "payer", Email: "p@example.com"}
	thief := &domain.User{ID: "thief", Email: "t@example.com"}

	checkout, err := env.payments.Checkout(ctx, payer, "pro", "US", "", "")
	require.NoError(t, err)

	_, err = env.payments.Complete(ctx, thief, checkout.Reference, "success", "")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = env.payments.Complete(ctx, thief, "BG-UNKNOWN", "success", "")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

// underpayingGateway reports a successful charge for less than was asked.
type underpayingGateway struct{ *SandboxGateway }

func (g underpayingGateway) Verify(ctx context.Context, reference string) (*domain.PaymentOutcome, error) {
	outcome, err := g.SandboxGateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	outcome.Amount = 100
	return outcome, nil
}

func TestPaymentService_AmountMismatchIsRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := &domain.User{ID: "u1", Email: "ada@example.com"}
	payments := NewPaymentService(underpayingGateway{env.gateway}, env.paymentRepo, env.subscriptions, env.logger)

	checkout, err := payments.Checkout(ctx, user, "pro", "US", "", "")
	require.NoError(t, err)

	_, err = payments.Complete(ctx, user, checkout.Reference, "success", "")
	assert.ErrorIs(t, err, domain.ErrPaymentMismatch)

	sub, err := env.subscriptions.Current(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, sub.PlanTier)
}

func TestPaymentService_NoGateway(t *testing.T) {
	env := newTestEnv()
	payments := NewPaymentService(nil, env.paymentRepo, env.subscriptions, env.logger)

	_, err := payments.Checkout(context.Background(), &domain.User{ID: "u1"}, "pro", "US", "", "")
	assert.ErrorIs(t, err, domain.ErrGatewayNotConfigured)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// fakePaystack serves the two transaction endpoints the gateway uses.
func fakePaystack(t *testing.T, secret string, status string) *httptest.Server {
	t.Helper()
	var (
		amount   int64
		currency string
	)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+secret {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": false, "message": "Invalid key"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/transaction/initialize":
			var body struct {
				Amount    int64  `json:"amount"`
				Currency  string `json:"currency"`
				Reference string `json:"reference"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			amount, currency = body.Amount, body.Currency
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  true,
				"message": "Authorization URL created",
				"data": map[string]interface{}{
					"authorization_url": "https://checkout.paystack.com/abc",
					"access_code":       "abc",
					"reference":         body.Reference,
				},
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/transaction/verify/"):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  true,
				"message": "Verification successful",
				"data": map[string]interface{}{
					"status":           status,
					"reference":        strings.TrimPrefix(r.URL.Path, "/transaction/verify/"),
					"amount":           amount,
					"currency":         currency,
					"paid_at":          "2025-03-10T09:00:00Z",
					"gateway_response": "Successful",
					"metadata":         map[string]string{"plan": "starter"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": false, "message": "not found"})
		}
	}))
}

func TestPaystackGateway_CheckoutAndComplete(t *testing.T) {
	const secret = "sk_test_123"
	server := fakePaystack(t, secret, "success")
	defer server.Close()

	env := newTestEnv()
	ctx := context.Background()
	user := &domain.User{ID: "u1", Email: "ada@example.com"}
	payments := NewPaymentService(NewPaystackGateway(server.URL, secret), env.paymentRepo, env.subscriptions, env.logger)
	payments.now = env.clock.Now

	checkout, err := payments.Checkout(ctx, user, "pro", "Ghana", "", "")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", checkout.AuthorizationURL)
	assert.Equal(t, "GHS", checkout.CurrencyCode)
	assert.Equal(t, "paystack", checkout.Provider)

	res, err := payments.Complete(ctx, user, checkout.Reference, "", "")
	require.NoError(t, err)
	// metadata says starter, the ledger says pro
	assert.Equal(t, domain.PlanPro, res.Subscription.PlanTier)
	assert.Equal(t, "GHS", res.Subscription.CurrencyCode)
}

func TestPaystackGateway_AbandonedTransaction(t *testing.T) {
	const secret = "sk_test_123"
	server := fakePaystack(t, secret, "abandoned")
	defer server.Close()

	gw := NewPaystackGateway(server.URL, secret)
	_, err := gw.InitializeCheckout(context.Background(), domain.CheckoutConfig{
		PayerEmail: "a@example.com", Amount: 500, CurrencyCode: "USD", Reference: "BG-1", Plan: domain.PlanStarter,
	})
	require.NoError(t, err)

	outcome, err := gw.Verify(context.Background(), "BG-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAbandoned, outcome.Status)
	assert.Equal(t, int64(500), outcome.Amount)
}

func TestPaystackGateway_RejectsBadKey(t *testing.T) {
	server := fakePaystack(t, "sk_test_123", "success")
	defer server.Close()

	gw := NewPaystackGateway(server.URL, "wrong")
	_, err := gw.InitializeCheckout(context.Background(), domain.CheckoutConfig{Reference: "BG-1", Plan: domain.PlanPro})
	assert.Error(t, err)
}

func TestPaymentService_Webhook(t *testing.T) {
	const secret = "sk_test_123"
	server := fakePaystack(t, secret, "success")
	defer server.Close()

	env := newTestEnv()
	ctx := context.Background()
	user := &domain.User{ID: "u1", Email: "ada@example.com"}
	payments := NewPaymentService(NewPaystackGateway(server.URL, secret), env.paymentRepo, env.subscriptions, env.logger)
	payments.now = env.clock.Now

	checkout, err := payments.Checkout(ctx, user, "starter", "Kenya", "", "")
	require.NoError(t, err)

	body := []byte(`{"event":"charge.success","data":{"reference":"` + checkout.Reference + `"}}`)
	assert.ErrorIs(t, payments.HandleWebhook(ctx, body, "deadbeef"), domain.ErrInvalidSignature)

	require.NoError(t, payments.HandleWebhook(ctx, body, sign(secret, body)))
	_, ent, err := env.subscriptions.Entitlements(ctx, user.ID, "")
	require.NoError(t, err)
	assert.True(t, ent.FullContent)

	// a redelivered webhook is harmless
	require.NoError(t, payments.HandleWebhook(ctx, body, sign(secret, body)))

	other := []byte(`{"event":"transfer.success","data":{"reference":"TRF-1"}}`)
	require.NoError(t, payments.HandleWebhook(ctx, other, sign(secret, other)))

	foreign := []byte(`{"event":"charge.success","data":{"reference":"OTHER-1"}}`)
	require.NoError(t, payments.HandleWebhook(ctx, foreign, sign(secret, foreign)))
}

func TestPaymentService_WebhookNeedsVerifier(t *testing.T) {
	env := newTestEnv()
	err := env.payments.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.ErrorIs(t, err, domain.ErrGatewayNotConfigured)
}
