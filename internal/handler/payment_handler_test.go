package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bloggenie-server/internal/domain"
)

func TestPaymentHandler_PricingLocale(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodGet, "/api/v1/pricing?country=NG", "", nil)
	if got := decodeBody(t, rr)["currency"]; got != "NGN" {
		t.Fatalf("expected NGN for ?country=NG, got %v", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing", nil)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	rr = httptest.NewRecorder()
	srv.handler.ServeHTTP(rr, req)
	if got := decodeBody(t, rr)["currency"]; got != "GBP" {
		t.Fatalf("expected GBP from Accept-Language, got %v", got)
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/pricing", "", nil)
	if got := decodeBody(t, rr)["currency"]; got != domain.DefaultCurrency {
		t.Fatalf("expected %s without a hint, got %v", domain.DefaultCurrency, got)
	}
}

func TestPaymentHandler_CheckoutAndCallback(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("payer", "payer@example.com")

	rr := srv.do(t, http.MethodPost, "/api/v1/payments/checkout", token, map[string]string{"plan": "starter", "country": "Kenya"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	checkout := decodeBody(t, rr)
	if checkout["currency"] != "KES" {
		t.Fatalf("expected KES checkout, got %v", checkout["currency"])
	}
	reference := checkout["reference"].(string)

	rr = srv.do(t, http.MethodPost, "/api/v1/payments/callback", token, map[string]string{"reference": reference, "status": "success"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["duplicate"] != false {
		t.Fatalf("expected first activation, got %v", body)
	}

	// Replaying the callback is harmless.
	rr = srv.do(t, http.MethodPost, "/api/v1/payments/callback", token, map[string]string{"reference": reference, "status": "success"})
	if rr.Code != http.StatusOK || decodeBody(t, rr)["duplicate"] != true {
		t.Fatalf("expected duplicate callback to succeed, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/subscription", token, nil)
	sub, _ := decodeBody(t, rr)["subscription"].(map[string]interface{})
	if sub["plan_type"] != "starter" || sub["status"] != "active" {
		t.Fatalf("unexpected subscription %v", sub)
	}
}

func TestPaymentHandler_CheckoutRejectsBadPlan(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("payer-2", "payer2@example.com")

	for _, plan := range []string{"free", "platinum", ""} {
		rr := srv.do(t, http.MethodPost, "/api/v1/payments/checkout", token, map[string]string{"plan": plan})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("plan %q: expected status %d, got %d", plan, http.StatusBadRequest, rr.Code)
		}
	}
}

func TestPaymentHandler_AbandonedCallback(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("payer-3", "payer3@example.com")

	rr := srv.do(t, http.MethodPost, "/api/v1/payments/checkout", token, map[string]string{"plan": "pro"})
	reference := decodeBody(t, rr)["reference"].(string)

	rr = srv.do(t, http.MethodPost, "/api/v1/payments/callback", token, map[string]string{"reference": reference, "status": "cancelled"})
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("expected status %d, got %d: %s", http.StatusPaymentRequired, rr.Code, rr.Body.String())
	}

	rr = srv.do(t, http.MethodPost, "/api/v1/payments/callback", demoToken("intruder", "i@example.com"), map[string]string{"reference": reference, "status": "success"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
}

func TestPaymentHandler_WebhookWithoutGateway(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/v1/payments/webhook", "", `{"event":"charge.success"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestSubscriptionHandler_Cancel(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("subscriber", "sub@example.com")

	rr := srv.do(t, http.MethodPost, "/api/v1/subscription/cancel", token, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status %d for a free plan, got %d", http.StatusConflict, rr.Code)
	}

	srv.upgrade(t, token, domain.PlanPro)
	rr = srv.do(t, http.MethodPost, "/api/v1/subscription/cancel", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/subscription", token, nil)
	ent, _ := decodeBody(t, rr)["entitlements"].(map[string]interface{})
	if ent["premium"] != false {
		t.Fatalf("expected cancelled plan to lose premium, got %v", ent)
	}
}
