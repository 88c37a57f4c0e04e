package domain

import (
	"context"
	"time"
)

const (
	MinRating         = 1
	MaxRating         = 5
	MaxFeedbackLength = 1000
)

// Rating is a user review of the product.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingPrompt tells the client whether to show the rating dialog.
type RatingPrompt struct {
	Show           bool       `json:"show"`
	NextEligibleAt *time.Time `json:"next_eligible_at,omitempty"`
}

type RatingRepository interface {
	Create(ctx context.Context, rating *Rating, token string) error
	LatestByUser(ctx context.Context, userID string, token string) (*Rating, error)
	ListRecent(ctx context.Context, limit int, token string) ([]*Rating, error)
}
