package repository

import (
	"context"
	"fmt"

	"bloggenie-server/internal/domain"
)

// PreferenceRepository implements domain.UserPreferencesRepository over a DocumentStore
type PreferenceRepository struct {
	store  domain.DocumentStore
	logger domain.Logger
}

func NewPreferenceRepository(store domain.DocumentStore, logger domain.Logger) *PreferenceRepository {
	return &PreferenceRepository{store: store, logger: logger}
}

// GetPreferences returns stored preferences, or the defaults if none exist
func (r *PreferenceRepository) GetPreferences(ctx context.Context, userID string, token string) (*domain.UserPreferences, error) {
	row, err := r.load(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return domain.DefaultPreferences(userID), nil
	}
	return mapToPreferences(row), nil
}

// UpdatePreferences updates or creates the user's preferences row
func (r *PreferenceRepository) UpdatePreferences(ctx context.Context, prefs *domain.UserPreferences, token string) error {
	data := domain.Record{
		"user_id":               prefs.UserID,
		"theme":                 prefs.Theme,
		"email_notifications":   prefs.EmailNotifications,
		"show_rating_modal":     prefs.ShowRatingModal,
		"timezone":              prefs.Timezone,
		"country":               prefs.Country,
		"last_rating_prompt_at": nil,
		"updated_at":            formatTime(prefs.UpdatedAt),
	}
	if prefs.LastRatingPromptAt != nil {
		data["last_rating_prompt_at"] = formatTime(*prefs.LastRatingPromptAt)
	}

	row, err := r.load(ctx, prefs.UserID, token)
	if err != nil {
		return err
	}
	if row == nil {
		_, err = r.store.Create(ctx, domain.EntityPreferences, data, token)
	} else {
		_, err = r.store.Update(ctx, domain.EntityPreferences, getString(row, "id"), data, token)
	}
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}

	r.logger.Debug("Preferences updated", "user_id", prefs.UserID)
	return nil
}

func (r *PreferenceRepository) load(ctx context.Context, userID, token string) (domain.Record, error) {
	rows, err := r.store.List(ctx, domain.EntityPreferences, domain.Query{
		Filter: map[string]interface{}{"user_id": userID},
		Limit:  1,
	}, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func mapToPreferences(data map[string]interface{}) *domain.UserPreferences {
	prefs := domain.DefaultPreferences(getString(data, "user_id"))
	if theme := getString(data, "theme"); theme != "" {
		prefs.Theme = theme
	}
	if _, ok := data["email_notifications"]; ok {
		prefs.EmailNotifications = getBool(data, "email_notifications")
	}
	if _, ok := data["show_rating_modal"]; ok {
		prefs.ShowRatingModal = getBool(data, "show_rating_modal")
	}
	prefs.Timezone = getString(data, "timezone")
	prefs.Country = getString(data, "country")
	prefs.LastRatingPromptAt = getTimePointer(data, "last_rating_prompt_at")
	prefs.UpdatedAt = getTime(data, "updated_at")
	return prefs
}
