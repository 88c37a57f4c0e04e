package domain

import (
	"context"
	"time"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// UserPreferences holds per-user settings
type UserPreferences struct {
	UserID             string     `json:"user_id"`
	Theme              string     `json:"theme"`
	EmailNotifications bool       `json:"email_notifications"`
	ShowRatingModal    bool       `json:"show_rating_modal"`
	Timezone           string     `json:"timezone,omitempty"`
	Country            string     `json:"country,omitempty"`
	LastRatingPromptAt *time.Time `json:"last_rating_prompt_at,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// DefaultPreferences returns the settings a user starts with.
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:             userID,
		Theme:              ThemeSystem,
		EmailNotifications: true,
		ShowRatingModal:    true,
	}
}

// PreferencesUpdate holds the editable preference fields; nil means unchanged.
type PreferencesUpdate struct {
	Theme              *string `json:"theme" validate:"omitempty,oneof=light dark system"`
	EmailNotifications *bool   `json:"email_notifications"`
	ShowRatingModal    *bool   `json:"show_rating_modal"`
	Timezone           *string `json:"timezone" validate:"omitempty,max=64"`
	Country            *string `json:"country" validate:"omitempty,max=64"`
}

type UserPreferencesRepository interface {
	GetPreferences(ctx context.Context, userID string, token string) (*UserPreferences, error)
	UpdatePreferences(ctx context.Context, prefs *UserPreferences, token string) error
}
