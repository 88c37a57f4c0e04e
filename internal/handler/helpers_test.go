package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/repository"
	"bloggenie-server/internal/service"
	"bloggenie-server/internal/validator"
)

const testAdminSecret = "admin-secret"

type testServer struct {
	handler       http.Handler
	subscriptions *service.SubscriptionService
	ideas         *service.IdeaService
	payments      *service.PaymentService
	gateway       *service.SandboxGateway
}

// newTestServer wires the full router on an in-memory store with demo auth
// and the offline generator.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := NewMockHandlerLogger()
	store := repository.NewMemoryStore()
	validate := validator.New()

	subRepo := repository.NewSubscriptionRepository(store, logger)
	paymentRepo := repository.NewPaymentRepository(store, logger)
	prefRepo := repository.NewPreferenceRepository(store, logger)

	subscriptions := service.NewSubscriptionService(subRepo, paymentRepo, logger)
	usage := service.NewUsageService(repository.NewUsageRepository(store, logger), logger)
	prefs := service.NewUserPreferencesService(prefRepo, logger)
	generator := service.NewGenerator(nil, logger)
	ideas := service.NewIdeaService(repository.NewIdeaRepository(store, logger), subscriptions, usage, prefs, generator, logger)
	posts := service.NewPostService(repository.NewPostRepository(store, logger), ideas, subscriptions, generator, logger)
	gateway := service.NewSandboxGateway()
	payments := service.NewPaymentService(gateway, paymentRepo, subscriptions, logger)
	ratings := service.NewRatingService(repository.NewRatingRepository(store, logger), prefRepo, service.DefaultRatingCooldown, logger)
	authService := service.NewAuthService(nil, "", service.AuthModeDemo, logger)

	h := Handlers{
		Auth:         NewAuthHandler(authService, subscriptions, validate, logger),
		Subscription: NewSubscriptionHandler(subscriptions, ideas, logger),
		Payment:      NewPaymentHandler(payments, prefs, validate, logger),
		Idea:         NewIdeaHandler(ideas, validate, logger),
		Post:         NewPostHandler(posts, validate, logger),
		Preference:   NewPreferenceHandler(prefs, validate, logger),
		Rating:       NewRatingHandler(ratings, validate, logger),
		Admin:        NewAdminHandler(testAdminSecret, subscriptions, validate, logger),
	}

	return &testServer{
		handler:       NewRouter(h, NewAuthMiddleware(authService, logger).Middleware, nil),
		subscriptions: subscriptions,
		ideas:         ideas,
		payments:      payments,
		gateway:       gateway,
	}
}

func demoToken(id, email string) string {
	return "demo:" + id + ":" + email
}

// do sends a request through the router. A non-empty token is sent as a bearer token.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return payload
}

// upgrade moves a user onto tier through checkout and the sandbox callback.
func (s *testServer) upgrade(t *testing.T, token string, tier domain.PlanTier) {
	t.Helper()

	rr := s.do(t, http.MethodPost, "/api/v1/payments/checkout", token, map[string]string{
		"plan":    tier.String(),
		"country": "United States",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("checkout: expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	reference, _ := decodeBody(t, rr)["reference"].(string)

	rr = s.do(t, http.MethodPost, "/api/v1/payments/callback", token, map[string]string{
		"reference": reference,
		"status":    "success",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("callback: expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
}
