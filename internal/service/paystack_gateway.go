package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"bloggenie-server/internal/domain"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

// PaystackGateway talks to the Paystack transaction API.
type PaystackGateway struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewPaystackGateway(baseURL, secretKey string) *PaystackGateway {
	if baseURL == "" {
		baseURL = defaultPaystackBaseURL
	}
	return &PaystackGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *PaystackGateway) Name() string { return "paystack" }

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (g *PaystackGateway) do(ctx context.Context, method, path string, body interface{}) (*paystackEnvelope, error) {
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode paystack response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("paystack returned status %d: %s", resp.StatusCode, env.Message)
	}
	return &env, nil
}

func (g *PaystackGateway) InitializeCheckout(ctx context.Context, cfg domain.CheckoutConfig) (*domain.Checkout, error) {
	env, err := g.do(ctx, http.MethodPost, "/transaction/initialize", map[string]interface{}{
		"email":        cfg.PayerEmail,
		"amount":       cfg.Amount,
		"currency":     cfg.CurrencyCode,
		"reference":    cfg.Reference,
		"callback_url": cfg.CallbackURL,
		"metadata":     map[string]string{"plan": cfg.Plan.String()},
	})
	if err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("paystack rejected checkout: %s", env.Message)
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode checkout: %w", err)
	}

	return &domain.Checkout{
		Reference:        cfg.Reference,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Amount:           cfg.Amount,
		CurrencyCode:     cfg.CurrencyCode,
		Plan:             cfg.Plan,
		Provider:         g.Name(),
	}, nil
}

func (g *PaystackGateway) Verify(ctx context.Context, reference string) (*domain.PaymentOutcome, error) {
	env, err := g.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentNotFound, env.Message)
	}

	var data struct {
		Status          string `json:"status"`
		Reference       string `json:"reference"`
		Amount          int64  `json:"amount"`
		Currency        string `json:"currency"`
		PaidAt          string `json:"paid_at"`
		GatewayResponse string `json:"gateway_response"`
		Metadata        struct {
			Plan string `json:"plan"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode verification: %w", err)
	}

	outcome := &domain.PaymentOutcome{
		Reference:      data.Reference,
		Amount:         data.Amount,
		CurrencyCode:   data.Currency,
		GatewayMessage: data.GatewayResponse,
	}
	switch data.Status {
	case "success":
		outcome.Status = domain.PaymentSucceeded
	case "abandoned":
		outcome.Status = domain.PaymentAbandoned
	case "ongoing", "pending", "processing", "queued":
		outcome.Status = domain.PaymentPending
	default:
		outcome.Status = domain.PaymentFailed
	}
	if plan, err := domain.ParsePlanTier(data.Metadata.Plan); err == nil {
		outcome.Plan = plan
	}
	if t, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
		outcome.PaidAt = t
	}
	return outcome, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header: hex HMAC-SHA512 of the body.
func (g *PaystackGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(g.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// SandboxGateway completes every checkout it has issued. It backs demo mode
// and tests.
type SandboxGateway struct {
	mu        sync.Mutex
	checkouts map[string]domain.CheckoutConfig
	outcomes  map[string]domain.PaymentStatus
}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{
		checkouts: make(map[string]domain.CheckoutConfig),
		outcomes:  make(map[string]domain.PaymentStatus),
	}
}

func (g *SandboxGateway) Name() string { return "sandbox" }

func (g *SandboxGateway) InitializeCheckout(ctx context.Context, cfg domain.CheckoutConfig) (*domain.Checkout, error) {
	g.mu.Lock()
	g.checkouts[cfg.Reference] = cfg
	g.mu.Unlock()
	return &domain.Checkout{
		Reference:    cfg.Reference,
		AccessCode:   "sandbox-" + cfg.Reference,
		Amount:       cfg.Amount,
		CurrencyCode: cfg.CurrencyCode,
		Plan:         cfg.Plan,
		Provider:     g.Name(),
	}, nil
}

// SetOutcome forces the status Verify reports for reference.
func (g *SandboxGateway) SetOutcome(reference string, status domain.PaymentStatus) {
	g.mu.Lock()
	g.outcomes[reference] = status
	g.mu.Unlock()
}

func (g *SandboxGateway) Verify(ctx context.Context, reference string) (*domain.PaymentOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cfg, ok := g.checkouts[reference]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	status, forced := g.outcomes[reference]
	if !forced {
		status = domain.PaymentSucceeded
	}
	return &domain.PaymentOutcome{
		Status:       status,
		Reference:    reference,
		Amount:       cfg.Amount,
		CurrencyCode: cfg.CurrencyCode,
		Plan:         cfg.Plan,
		PaidAt:       time.Now(),
	}, nil
}
