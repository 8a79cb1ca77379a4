package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/repository"
	apperrors "github.com/Piyushkr001/revix/pkg/errors"
	"github.com/Piyushkr001/revix/pkg/middleware"
)

// ProfileResolver yields the identity provider's view of the caller.
type ProfileResolver interface {
	Resolve(ctx context.Context, p *middleware.Principal) *domain.Profile
}

// UpdateProfileInput holds optional profile changes. Nil fields are kept.
type UpdateProfileInput struct {
	Name     *string
	ImageURL *string
}

// UserService maintains the local mirror of identity-provider accounts.
type UserService struct {
	users    repository.UserRepository
	profiles ProfileResolver
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, profiles ProfileResolver, events EventPublisher, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		profiles: profiles,
		events:   events,
		logger:   logger,
		now:      utcNow,
	}
}

// SyncMe upserts the caller's mirror row from the resolved profile. created
// reports whether the row was new.
func (s *UserService) SyncMe(ctx context.Context, p *middleware.Principal) (*domain.User, bool, error) {
	profile := s.profiles.Resolve(ctx, p)
	if strings.TrimSpace(profile.Email) == "" {
		return nil, false, apperrors.InvalidInput("No email found for user")
	}

	u, created, err := s.users.Upsert(ctx, profile.ToUser(s.now()))
	if err != nil {
		return nil, false, fmt.Errorf("sync user: %w", err)
	}

	if created {
		s.logger.InfoContext(ctx, "user synced", slog.String("user_id", u.ID))
	}
	return u, created, nil
}

// IsSynced reports whether the caller has a mirror row.
func (s *UserService) IsSynced(ctx context.Context, userID string) (bool, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check user synced: %w", err)
	}
	return ok, nil
}

// UpdateMe applies profile changes to the caller's mirror row.
func (s *UserService) UpdateMe(ctx context.Context, userID string, input *UpdateProfileInput) (*domain.User, error) {
	name := input.Name
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		name = &trimmed
	}

	u, err := s.users.UpdateProfile(ctx, userID, name, input.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Deactivate marks the caller inactive. Stored analyses and reports are kept.
func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deactivated", slog.String("user_id", userID))

	if err := s.events.PublishUserDeactivated(ctx, userID); err != nil {
		logPublishError(ctx, s.logger, "user.deactivated", userID, err)
	}
	return nil
}
