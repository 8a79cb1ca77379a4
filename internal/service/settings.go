package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/repository"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
	"github.com/Piyushkr001/revix/pkg/middleware"
)

// PrefsInput is a partial preferences update. Nil fields take the defaults,
// not the stored values.
type PrefsInput struct {
	EmailProductInsights *bool
	EmailWeeklyDigest    *bool
	EmailSecurityAlerts  *bool
	DefaultSource        *string
	AutoSaveAnalyses     *bool
}

// SettingsService serves the settings view and stores preferences.
type SettingsService struct {
	users    repository.UserRepository
	settings repository.SettingsRepository
	profiles ProfileResolver
	logger   *slog.Logger
	now      func() time.Time
}

// NewSettingsService creates a new settings service.
func NewSettingsService(users repository.UserRepository, settings repository.SettingsRepository, profiles ProfileResolver, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		users:    users,
		settings: settings,
		profiles: profiles,
		logger:   logger,
		now:      utcNow,
	}
}

// Get refreshes the caller's mirror row and returns it with the stored
// preferences, or the defaults when none were saved.
func (s *SettingsService) Get(ctx context.Context, p *middleware.Principal) (*domain.Settings, error) {
	profile := s.profiles.Resolve(ctx, p)

	u, _, err := s.users.Upsert(ctx, profile.ToUser(s.now()))
	if err != nil {
		return nil, fmt.Errorf("sync user: %w", err)
	}

	prefs := domain.DefaultPrefs()
	stored, err := s.settings.GetPrefs(ctx, p.UserID)
	switch {
	case err == nil:
		prefs = *stored
	case errors.Is(err, apperrors.ErrNotFound):
		// never saved, keep defaults
	default:
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return &domain.Settings{
		User:  domain.SettingsUser{ID: u.ID, Email: u.Email, Name: u.Name},
		Prefs: prefs,
	}, nil
}

// Save replaces the caller's preferences. Last write wins.
func (s *SettingsService) Save(ctx context.Context, userID string, input *PrefsInput) (*domain.NotificationPrefs, error) {
	prefs := domain.DefaultPrefs()
	if input.EmailProductInsights != nil {
		prefs.EmailProductInsights = *input.EmailProductInsights
	}
	if input.EmailWeeklyDigest != nil {
		prefs.EmailWeeklyDigest = *input.EmailWeeklyDigest
	}
	if input.EmailSecurityAlerts != nil {
		prefs.EmailSecurityAlerts = *input.EmailSecurityAlerts
	}
	if input.DefaultSource != nil {
		prefs.DefaultSource = domain.NormalizeSource(*input.DefaultSource)
	}
	if input.AutoSaveAnalyses != nil {
		prefs.AutoSaveAnalyses = *input.AutoSaveAnalyses
	}

	if err := s.settings.UpsertPrefs(ctx, userID, prefs); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	s.logger.InfoContext(ctx, "settings saved", slog.String("user_id", userID))
	return &prefs, nil
}
