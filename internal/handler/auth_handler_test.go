package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuthHandler_SignInDemo(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "Writer@Example.com",
		"password": "anything",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	payload := decodeBody(t, rr)
	token, _ := payload["access_token"].(string)
	if !strings.HasPrefix(token, "demo:") {
		t.Fatalf("expected a demo token, got %v", payload)
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/auth/profile", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestAuthHandler_SignInValidation(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"email": "not-an-email"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}

	rr = srv.do(t, http.MethodPost, "/api/v1/auth/signin", "", "{bad")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestAuthHandler_GetProfile_Unauthorized(t *testing.T) {
	handler := NewAuthHandler(nil, nil, nil, NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	rr := httptest.NewRecorder()
	handler.GetProfile(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "User not found in context") {
		t.Fatalf("expected error message in response, got %s", rr.Body.String())
	}
}

func TestAuthHandler_GetProfile_FreePlan(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodGet, "/api/v1/auth/profile", demoToken("user-1", "a@example.com"), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	payload := decodeBody(t, rr)
	ent, _ := payload["entitlements"].(map[string]interface{})
	if ent["tier"] != "free" || ent["daily_idea_limit"] != float64(5) {
		t.Fatalf("unexpected entitlements %v", ent)
	}
}
