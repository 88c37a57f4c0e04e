package service

import (
	"context"
	"strings"
	"time"

	"bloggenie-server/internal/domain"
)

type UserPreferencesService struct {
	userPreferencesRepo domain.UserPreferencesRepository
	logger              domain.Logger
	now                 func() time.Time
}

func NewUserPreferencesService(
	userPreferencesRepo domain.UserPreferencesRepository,
	logger domain.Logger,
) *UserPreferencesService {
	return &UserPreferencesService{
		userPreferencesRepo: userPreferencesRepo,
		logger:              logger,
		now:                 time.Now,
	}
}

// GetPreferences retrieves user preferences
func (s *UserPreferencesService) GetPreferences(ctx context.Context, userID string, token string) (*domain.UserPreferences, error) {
	return s.userPreferencesRepo.GetPreferences(ctx, userID, token)
}

// UpdatePreferences applies the non-nil fields of update
func (s *UserPreferencesService) UpdatePreferences(ctx context.Context, userID string, update *domain.PreferencesUpdate, token string) (*domain.UserPreferences, error) {
	prefs, err := s.userPreferencesRepo.GetPreferences(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	if update.Theme != nil {
		switch *update.Theme {
		case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
			prefs.Theme = *update.Theme
		default:
			return nil, &domain.ValidationError{Field: "theme", Message: "must be light, dark or system"}
		}
	}
	if update.EmailNotifications != nil {
		prefs.EmailNotifications = *update.EmailNotifications
	}
	if update.ShowRatingModal != nil {
		prefs.ShowRatingModal = *update.ShowRatingModal
	}
	if update.Timezone != nil {
		tz := strings.TrimSpace(*update.Timezone)
		if tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				return nil, &domain.ValidationError{Field: "timezone", Message: "unknown timezone"}
			}
		}
		prefs.Timezone = tz
	}
	if update.Country != nil {
		prefs.Country = strings.TrimSpace(*update.Country)
	}

	prefs.UserID = userID
	prefs.UpdatedAt = s.now()
	if err := s.userPreferencesRepo.UpdatePreferences(ctx, prefs, token); err != nil {
		return nil, err
	}
	return prefs, nil
}

// Location resolves the timezone used for the user's calendar day. A stored
// preference wins over the client hint; anything unresolvable is UTC.
func (s *UserPreferencesService) Location(ctx context.Context, userID, clientHint string, token string) *time.Location {
	if prefs, err := s.userPreferencesRepo.GetPreferences(ctx, userID, token); err == nil && prefs.Timezone != "" {
		if loc, err := time.LoadLocation(prefs.Timezone); err == nil {
			return loc
		}
	} else if err != nil {
		s.logger.Warn("Failed to load timezone preference", "user_id", userID, "error", err)
	}

	if clientHint != "" {
		if loc, err := time.LoadLocation(clientHint); err == nil {
			return loc
		}
	}
	return time.UTC
}

// Country returns the stored billing country, or "" if unset.
func (s *UserPreferencesService) Country(ctx context.Context, userID string, token string) string {
	prefs, err := s.userPreferencesRepo.GetPreferences(ctx, userID, token)
	if err != nil {
		return ""
	}
	return prefs.Country
}
