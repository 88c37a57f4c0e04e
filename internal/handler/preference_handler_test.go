package handler

import (
	"net/http"
	"testing"
)

func TestPreferenceHandler_GetDefaults(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("user-1", "test@example.com")

	rr := srv.do(t, http.MethodGet, "/api/v1/preferences", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	prefs := decodeBody(t, rr)
	if prefs["user_id"] != "user-1" {
		t.Fatalf("expected user id user-1, got %v", prefs["user_id"])
	}
	if prefs["show_rating_modal"] != true {
		t.Fatalf("expected rating prompt enabled by default, got %v", prefs)
	}
}

func TestPreferenceHandler_UpdatePreferences(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("user-1", "test@example.com")

	rr := srv.do(t, http.MethodPut, "/api/v1/preferences", token, map[string]interface{}{
		"theme":    "dark",
		"timezone": "Africa/Lagos",
		"country":  "Nigeria",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	prefs := decodeBody(t, rr)
	if prefs["theme"] != "dark" || prefs["country"] != "Nigeria" {
		t.Fatalf("unexpected preferences %v", prefs)
	}

	// The stored country drives checkout currency when the request omits it.
	rr = srv.do(t, http.MethodPost, "/api/v1/payments/checkout", token, map[string]string{"plan": "starter"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	if got := decodeBody(t, rr)["currency"]; got != "NGN" {
		t.Fatalf("expected NGN checkout, got %v", got)
	}
}

func TestPreferenceHandler_UpdateValidation(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("user-1", "test@example.com")

	tests := []struct {
		name string
		body interface{}
	}{
		{"bad json", "{bad"},
		{"unknown theme", map[string]string{"theme": "neon"}},
		{"unknown timezone", map[string]string{"timezone": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := srv.do(t, http.MethodPut, "/api/v1/preferences", token, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
		})
	}
}
