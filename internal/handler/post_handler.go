package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/service"
	"bloggenie-server/internal/validator"
)

type PostHandler struct {
	posts    *service.PostService
	validate *validator.Validator
	logger   domain.Logger
}

func NewPostHandler(posts *service.PostService, validate *validator.Validator, logger domain.Logger) *PostHandler {
	return &PostHandler{
		posts:    posts,
		validate: validate,
		logger:   logger,
	}
}

// Expand turns one of the user's ideas into a full draft post
func (h *PostHandler) Expand(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	ideaID := mux.Vars(r)["id"]
	post, err := h.posts.Expand(r.Context(), user.ID, ideaID, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to expand idea", err, "user_id", user.ID, "idea_id", ideaID)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	posts, err := h.posts.List(r.Context(), user.ID, queryInt(r, "limit"), token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to list posts", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Get(r.Context(), user.ID, mux.Vars(r)["id"], token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to get post", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var update domain.PostUpdate
	if err := decodeJSON(w, r, h.validate, &update); err != nil {
		writeAppError(w, h.logger, "Invalid post update", err)
		return
	}

	post, err := h.posts.Update(r.Context(), user.ID, mux.Vars(r)["id"], &update, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to update post", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), user.ID, mux.Vars(r)["id"], token); err != nil {
		writeAppError(w, h.logger, "Failed to delete post", err, "user_id", user.ID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export downloads a post as ?format=markdown|html|text (markdown by default)
type exportQuery struct {
	Format string `json:"format" validate:"export_format"`
}

func (h *PostHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	query := exportQuery{Format: r.URL.Query().Get("format")}
	if err := h.validate.Validate(&query); err != nil {
		writeAppError(w, h.logger, "Invalid export request", err)
		return
	}
	if query.Format == "" {
		query.Format = string(domain.ExportMarkdown)
	}
	format, err := domain.ParseExportFormat(query.Format)
	if err != nil {
		writeAppError(w, h.logger, "Invalid export format", err)
		return
	}

	doc, err := h.posts.Export(r.Context(), user.ID, mux.Vars(r)["id"], format, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to export post", err, "user_id", user.ID)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

type rewriteRequest struct {
	Style string `json:"style" validate:"required,rewrite_style"`
}

func (h *PostHandler) Rewrite(w http.ResponseWriter, r *http.Request) {
	user, token, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req rewriteRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeAppError(w, h.logger, "Invalid rewrite request", err)
		return
	}
	style, err := domain.ParseRewriteStyle(req.Style)
	if err != nil {
		writeAppError(w, h.logger, "Invalid rewrite style", err)
		return
	}

	post, err := h.posts.Rewrite(r.Context(), user.ID, mux.Vars(r)["id"], style, token)
	if err != nil {
		writeAppError(w, h.logger, "Failed to rewrite post", err, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, post)
}
