package repository

import (
	"context"
	"errors"
	"fmt"

	"bloggenie-server/internal/domain"
)

// IdeaRepository persists generated ideas.
type IdeaRepository struct {
	store  domain.DocumentStore
	logger domain.Logger
}

func NewIdeaRepository(store domain.DocumentStore, logger domain.Logger) *IdeaRepository {
	return &IdeaRepository{store: store, logger: logger}
}

func (r *IdeaRepository) Create(ctx context.Context, idea *domain.BlogIdea, token string) error {
	row, err := r.store.Create(ctx, domain.EntityIdeas, domain.Record{
		"id":                  idea.ID,
		"user_id":             idea.UserID,
		"topic":               idea.Topic,
		"title":               idea.Title,
		"description":         idea.Description,
		"category":            idea.Category,
		"tags":                stringsToInterfaces(idea.Tags),
		"estimated_read_time": idea.EstimatedReadTime,
		"created_at":          formatTime(idea.CreatedAt),
	}, token)
	if err != nil {
		return fmt.Errorf("failed to save idea: %w", err)
	}
	idea.ID = getString(row, "id")
	return nil
}

func (r *IdeaRepository) Get(ctx context.Context, id string, token string) (*domain.BlogIdea, error) {
	row, err := r.store.Get(ctx, domain.EntityIdeas, id, token)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.ErrIdeaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}
	return mapToIdea(row), nil
}

func (r *IdeaRepository) ListByUser(ctx context.Context, userID string, limit int, token string) ([]*domain.BlogIdea, error) {
	rows, err := r.store.List(ctx, domain.EntityIdeas, domain.Query{
		Filter:     map[string]interface{}{"user_id": userID},
		OrderBy:    "created_at",
		Descending: true,
		Limit:      limit,
	}, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	ideas := make([]*domain.BlogIdea, 0, len(rows))
	for _, row := range rows {
		ideas = append(ideas, mapToIdea(row))
	}
	return ideas, nil
}

func (r *IdeaRepository) Delete(ctx context.Context, id string, token string) error {
	err := r.store.Delete(ctx, domain.EntityIdeas, id, token)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.ErrIdeaNotFound
	}
	return err
}

func mapToIdea(data map[string]interface{}) *domain.BlogIdea {
	return &domain.BlogIdea{
		ID:                getString(data, "id"),
		UserID:            getString(data, "user_id"),
		Topic:             getString(data, "topic"),
		Title:             getString(data, "title"),
		Description:       getString(data, "description"),
		Category:          getString(data, "category"),
		Tags:              getStringArray(data, "tags"),
		EstimatedReadTime: getInt(data, "estimated_read_time"),
		CreatedAt:         getTime(data, "created_at"),
	}
}

// PostRepository persists expanded posts.
type PostRepository struct {
	store  domain.DocumentStore
	logger domain.Logger
}

func NewPostRepository(store domain.DocumentStore, logger domain.Logger) *PostRepository {
	return &PostRepository{store: store, logger: logger}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.BlogPost, token string) error {
	row, err := r.store.Create(ctx, domain.EntityPosts, postToRecord(post), token)
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}
	post.ID = getString(row, "id")
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id string, token string) (*domain.BlogPost, error) {
	row, err := r.store.Get(ctx, domain.EntityPosts, id, token)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return mapToPost(row), nil
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string, limit int, token string) ([]*domain.BlogPost, error) {
	rows, err := r.store.List(ctx, domain.EntityPosts, domain.Query{
		Filter:     map[string]interface{}{"user_id": userID},
		OrderBy:    "updated_at",
		Descending: true,
		Limit:      limit,
	}, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	posts := make([]*domain.BlogPost, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, mapToPost(row))
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *domain.BlogPost, token string) error {
	_, err := r.store.Update(ctx, domain.EntityPosts, post.ID, postToRecord(post), token)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string, token string) error {
	err := r.store.Delete(ctx, domain.EntityPosts, id, token)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.ErrPostNotFound
	}
	return err
}

func postToRecord(post *domain.BlogPost) domain.Record {
	rec := domain.Record{
		"user_id":             post.UserID,
		"idea_id":             post.IdeaID,
		"title":               post.Title,
		"content":             post.Content,
		"excerpt":             post.Excerpt,
		"category":            post.Category,
		"tags":                stringsToInterfaces(post.Tags),
		"estimated_read_time": post.EstimatedReadTime,
		"status":              string(post.Status),
		"created_at":          formatTime(post.CreatedAt),
		"updated_at":          formatTime(post.UpdatedAt),
	}
	if post.ID != "" {
		rec["id"] = post.ID
	}
	return rec
}

func mapToPost(data map[string]interface{}) *domain.BlogPost {
	return &domain.BlogPost{
		ID:                getString(data, "id"),
		UserID:            getString(data, "user_id"),
		IdeaID:            getString(data, "idea_id"),
		Title:             getString(data, "title"),
		Content:           getString(data, "content"),
		Excerpt:           getString(data, "excerpt"),
		Category:          getString(data, "category"),
		Tags:              getStringArray(data, "tags"),
		EstimatedReadTime: getInt(data, "estimated_read_time"),
		Status:            domain.PostStatus(getString(data, "status")),
		CreatedAt:         getTime(data, "created_at"),
		UpdatedAt:         getTime(data, "updated_at"),
	}
}
