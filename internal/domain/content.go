package domain

import (
	"context"
	"strings"
	"time"
)

const (
	MinIdeaCount     = 1
	MaxIdeaCount     = 10
	DefaultIdeaCount = 3
	MaxTopicLength   = 200
)

// BlogIdea is a generated title suggestion.
type BlogIdea struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id,omitempty"`
	Topic             string    `json:"topic"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Tags              []string  `json:"tags"`
	EstimatedReadTime int       `json:"estimated_read_time"`
	CreatedAt         time.Time `json:"created_at"`
}

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

// BlogPost is a full article expanded from an idea.
type BlogPost struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id,omitempty"`
	IdeaID            string     `json:"idea_id,omitempty"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Excerpt           string     `json:"excerpt"`
	Category          string     `json:"category"`
	Tags              []string   `json:"tags"`
	EstimatedReadTime int        `json:"estimated_read_time"`
	Status            PostStatus `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PostUpdate holds the editable fields of a post; nil means unchanged.
type PostUpdate struct {
	Title   *string     `json:"title" validate:"omitempty,min=1,max=300"`
	Content *string     `json:"content" validate:"omitempty,min=1"`
	Excerpt *string     `json:"excerpt" validate:"omitempty,max=500"`
	Tags    []string    `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	Status  *PostStatus `json:"status" validate:"omitempty,oneof=draft published"`
}

// IdeaGenerationResult is what a generation request returns to the caller.
type IdeaGenerationResult struct {
	Ideas   []*BlogIdea  `json:"ideas"`
	Usage   *UsageResult `json:"usage"`
	Warning string       `json:"warning,omitempty"`
}

type ExportFormat string

const (
	ExportMarkdown ExportFormat = "markdown"
	ExportHTML     ExportFormat = "html"
	ExportText     ExportFormat = "text"
)

// ParseExportFormat accepts the format names and common file extensions.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return ExportMarkdown, nil
	case "html", "htm":
		return ExportHTML, nil
	case "text", "txt", "plain":
		return ExportText, nil
	}
	return "", ErrUnsupportedFormat
}

// ExportedDocument is a rendered post ready for download.
type ExportedDocument struct {
	Filename    string
	ContentType string
	Body        []byte
}

type RewriteStyle string

const (
	RewriteProfessional RewriteStyle = "professional"
	RewriteCasual       RewriteStyle = "casual"
	RewriteAcademic     RewriteStyle = "academic"
)

func ParseRewriteStyle(s string) (RewriteStyle, error) {
	switch RewriteStyle(strings.ToLower(strings.TrimSpace(s))) {
	case RewriteProfessional:
		return RewriteProfessional, nil
	case RewriteCasual:
		return RewriteCasual, nil
	case RewriteAcademic:
		return RewriteAcademic, nil
	}
	return "", ErrUnsupportedRewrite
}

type IdeaRepository interface {
	Create(ctx context.Context, idea *BlogIdea, token string) error
	Get(ctx context.Context, id string, token string) (*BlogIdea, error)
	ListByUser(ctx context.Context, userID string, limit int, token string) ([]*BlogIdea, error)
	Delete(ctx context.Context, id string, token string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *BlogPost, token string) error
	Get(ctx context.Context, id string, token string) (*BlogPost, error)
	ListByUser(ctx context.Context, userID string, limit int, token string) ([]*BlogPost, error)
	Update(ctx context.Context, post *BlogPost, token string) error
	Delete(ctx context.Context, id string, token string) error
}
