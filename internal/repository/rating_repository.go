package repository

import (
	"context"
	"fmt"

	"bloggenie-server/internal/domain"
)

type RatingRepository struct {
	store  domain.DocumentStore
	logger domain.Logger
}

func NewRatingRepository(store domain.DocumentStore, logger domain.Logger) *RatingRepository {
	return &RatingRepository{store: store, logger: logger}
}

func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating, token string) error {
	row, err := r.store.Create(ctx, domain.EntityRatings, domain.Record{
		"user_id":    rating.UserID,
		"name":       rating.Name,
		"rating":     rating.Rating,
		"feedback":   rating.Feedback,
		"created_at": formatTime(rating.CreatedAt),
	}, token)
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}
	rating.ID = getString(row, "id")
	return nil
}

// LatestByUser returns nil, nil when the user has never rated.
func (r *RatingRepository) LatestByUser(ctx context.Context, userID string, token string) (*domain.Rating, error) {
	rows, err := r.store.List(ctx, domain.EntityRatings, domain.Query{
		Filter:     map[string]interface{}{"user_id": userID},
		OrderBy:    "created_at",
		Descending: true,
		Limit:      1,
	}, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToRating(rows[0]), nil
}

func (r *RatingRepository) ListRecent(ctx context.Context, limit int, token string) ([]*domain.Rating, error) {
	rows, err := r.store.List(ctx, domain.EntityRatings, domain.Query{
		OrderBy:    "created_at",
		Descending: true,
		Limit:      limit,
	}, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	out := make([]*domain.Rating, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapToRating(row))
	}
	return out, nil
}

func mapToRating(data map[string]interface{}) *domain.Rating {
	return &domain.Rating{
		ID:        getString(data, "id"),
		UserID:    getString(data, "user_id"),
		Name:      getString(data, "name"),
		Rating:    getInt(data, "rating"),
		Feedback:  getString(data, "feedback"),
		CreatedAt: getTime(data, "created_at"),
	}
}
