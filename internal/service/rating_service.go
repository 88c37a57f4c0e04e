package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"bloggenie-server/internal/domain"
)

const (
	DefaultRatingCooldown = 7 * 24 * time.Hour
	maxPublicReviews      = 50
)

// RatingService decides when to ask for a rating and stores reviews.
type RatingService struct {
	ratings  domain.RatingRepository
	prefs    domain.UserPreferencesRepository
	cooldown time.Duration
	logger   domain.Logger
	now      func() time.Time
}

func NewRatingService(ratings domain.RatingRepository, prefs domain.UserPreferencesRepository, cooldown time.Duration, logger domain.Logger) *RatingService {
	if cooldown <= 0 {
		cooldown = DefaultRatingCooldown
	}
	return &RatingService{
		ratings:  ratings,
		prefs:    prefs,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// Prompt reports whether to show the rating dialog now. Showing it records
// the time, so the user is asked at most once per cooldown window.
func (s *RatingService) Prompt(ctx context.Context, userID string, token string) (*domain.RatingPrompt, error) {
	prefs, err := s.prefs.GetPreferences(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if !prefs.ShowRatingModal {
		return &domain.RatingPrompt{Show: false}, nil
	}

	now := s.now()
	if next, due := s.nextEligible(ctx, prefs, userID, token, now); !due {
		return &domain.RatingPrompt{Show: false, NextEligibleAt: &next}, nil
	}

	prefs.LastRatingPromptAt = &now
	prefs.UpdatedAt = now
	if err := s.prefs.UpdatePreferences(ctx, prefs, token); err != nil {
		return nil, err
	}
	return &domain.RatingPrompt{Show: true}, nil
}

// Submit stores a rating. A user may rate once per cooldown window.
func (s *RatingService) Submit(ctx context.Context, user *domain.User, rating int, feedback string, token string) (*domain.Rating, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, &domain.ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}
	feedback = strings.TrimSpace(feedback)
	if utf8.RuneCountInString(feedback) > domain.MaxFeedbackLength {
		return nil, &domain.ValidationError{Field: "feedback", Message: "must be at most 1000 characters"}
	}

	now := s.now()
	latest, err := s.ratings.LatestByUser(ctx, user.ID, token)
	if err != nil {
		return nil, err
	}
	if latest != nil && now.Sub(latest.CreatedAt) < s.cooldown {
		return nil, domain.ErrRatingNotDue
	}

	name := user.DisplayName
	if name == "" {
		name = strings.Split(user.Email, "@")[0]
	}
	r := &domain.Rating{
		UserID:    user.ID,
		Name:      name,
		Rating:    rating,
		Feedback:  feedback,
		CreatedAt: now,
	}
	if err := s.ratings.Create(ctx, r, token); err != nil {
		return nil, err
	}

	if prefs, err := s.prefs.GetPreferences(ctx, user.ID, token); err == nil {
		prefs.LastRatingPromptAt = &now
		prefs.UpdatedAt = now
		if err := s.prefs.UpdatePreferences(ctx, prefs, token); err != nil {
			s.logger.Warn("Failed to record rating prompt time", "user_id", user.ID, "error", err)
		}
	}

	s.logger.Info("Rating submitted", "user_id", user.ID, "rating", rating)
	return r, nil
}

// Reviews lists the most recent public reviews.
func (s *RatingService) Reviews(ctx context.Context, limit int) ([]*domain.Rating, error) {
	if limit <= 0 || limit > maxPublicReviews {
		limit = maxPublicReviews
	}
	reviews, err := s.ratings.ListRecent(ctx, limit, "")
	if err != nil {
		return nil, err
	}
	for _, r := range reviews {
		r.UserID = ""
	}
	return reviews, nil
}

func (s *RatingService) nextEligible(ctx context.Context, prefs *domain.UserPreferences, userID, token string, now time.Time) (time.Time, bool) {
	last := time.Time{}
	if prefs.LastRatingPromptAt != nil {
		last = *prefs.LastRatingPromptAt
	}
	if latest, err := s.ratings.LatestByUser(ctx, userID, token); err == nil && latest != nil && latest.CreatedAt.After(last) {
		last = latest.CreatedAt
	}
	if last.IsZero() {
		return now, true
	}
	next := last.Add(s.cooldown)
	return next, !now.Before(next)
}
