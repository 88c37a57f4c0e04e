package handler

import (
	"net/http"
	"strings"
	"testing"

	"bloggenie-server/internal/domain"
)

func firstIdeaID(t *testing.T, srv *testServer, token string) string {
	t.Helper()
	rr := srv.do(t, http.MethodPost, "/api/v1/ideas", token, map[string]interface{}{"topic": "remote work", "count": 1})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	ideas, _ := decodeBody(t, rr)["ideas"].([]interface{})
	return ideas[0].(map[string]interface{})["id"].(string)
}

func TestPostHandler_ExpandRequiresPaidPlan(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("free-user", "free@example.com")
	ideaID := firstIdeaID(t, srv, token)

	rr := srv.do(t, http.MethodPost, "/api/v1/ideas/"+ideaID+"/expand", token, nil)
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("expected status %d, got %d", http.StatusPaymentRequired, rr.Code)
	}
	payload := decodeBody(t, rr)
	if payload["required_plan"] != "starter" || payload["upgrade_url"] != upgradeURL {
		t.Fatalf("unexpected upgrade body %v", payload)
	}
}

func TestPostHandler_ExpandAndExport(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("starter-user", "starter@example.com")
	srv.upgrade(t, token, domain.PlanStarter)
	ideaID := firstIdeaID(t, srv, token)

	rr := srv.do(t, http.MethodPost, "/api/v1/ideas/"+ideaID+"/expand", token, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	post := decodeBody(t, rr)
	postID := post["id"].(string)
	if post["status"] != "draft" {
		t.Fatalf("expected a draft post, got %v", post["status"])
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/posts/"+postID+"/export", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, ".md") {
		t.Fatalf("unexpected content disposition %s", cd)
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/posts/"+postID+"/export?format=html", token, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<h1") {
		t.Fatalf("expected html export, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/posts/"+postID+"/export?format=docx", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "format: Must be one of: markdown, html, text") {
		t.Fatalf("expected a format validation message, got %s", rr.Body.String())
	}

	// Rewriting is a Pro feature.
	rr = srv.do(t, http.MethodPost, "/api/v1/posts/"+postID+"/rewrite", token, map[string]string{"style": "casual"})
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("expected status %d, got %d", http.StatusPaymentRequired, rr.Code)
	}
}

func TestPostHandler_UpdateAndDelete(t *testing.T) {
	srv := newTestServer(t)
	token := demoToken("pro-user", "pro@example.com")
	srv.upgrade(t, token, domain.PlanPro)
	ideaID := firstIdeaID(t, srv, token)

	rr := srv.do(t, http.MethodPost, "/api/v1/ideas/"+ideaID+"/expand", token, nil)
	postID := decodeBody(t, rr)["id"].(string)

	rr = srv.do(t, http.MethodPut, "/api/v1/posts/"+postID, token, map[string]string{"title": "Edited title", "status": "published"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	updated := decodeBody(t, rr)
	if updated["title"] != "Edited title" || updated["status"] != "published" {
		t.Fatalf("unexpected post %v", updated)
	}

	rr = srv.do(t, http.MethodPost, "/api/v1/posts/"+postID+"/rewrite", token, map[string]string{"style": "professional"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = srv.do(t, http.MethodGet, "/api/v1/posts/"+postID, demoToken("someone-else", "x@example.com"), nil)
	if rr.Code == http.StatusOK {
		t.Fatalf("expected another user to be refused")
	}

	rr = srv.do(t, http.MethodDelete, "/api/v1/posts/"+postID, token, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	rr = srv.do(t, http.MethodGet, "/api/v1/posts/"+postID, token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
