package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"service":"bloggenie-server"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/subscription"},
		{http.MethodPost, "/api/v1/ideas"},
		{http.MethodGet, "/api/v1/posts"},
		{http.MethodGet, "/api/v1/usage"},
		{http.MethodPost, "/api/v1/payments/checkout"},
	} {
		rr := srv.do(t, route.method, route.path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected status %d, got %d", route.method, route.path, http.StatusUnauthorized, rr.Code)
		}
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	srv := newTestServer(t)

	if rr := srv.do(t, http.MethodGet, "/api/v1/pricing", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("pricing: expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr := srv.do(t, http.MethodGet, "/api/v1/reviews", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("reviews: expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ideas", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	rr := httptest.NewRecorder()
	srv.handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin, got %q", got)
	}
}
