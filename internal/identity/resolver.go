package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/repository"
	"github.com/Piyushkr001/revix/pkg/middleware"
)

// Resolver produces the caller's profile: cache first, then the remote
// source, then the token claims. Cache failures are logged and ignored.
type Resolver struct {
	source ProfileSource
	cache  repository.ProfileCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewResolver creates a resolver. source and cache may be nil.
func NewResolver(source ProfileSource, cache repository.ProfileCache, ttl time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{source: source, cache: cache, ttl: ttl, logger: logger}
}

// Resolve returns the profile for p. It never fails: when the provider is
// unreachable the claims carried by the token are used.
func (r *Resolver) Resolve(ctx context.Context, p *middleware.Principal) *domain.Profile {
	claims := ClaimsProfile(p)
	if r.source == nil {
		return claims
	}

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, p.UserID)
		if err != nil {
			r.logger.WarnContext(ctx, "profile cache read failed",
				slog.String("user_id", p.UserID),
				slog.String("error", err.Error()),
			)
		} else if ok {
			return merge(cached, claims)
		}
	}

	remote, err := r.source.Profile(ctx, p.UserID)
	if err != nil {
		r.logger.WarnContext(ctx, "identity provider lookup failed, using token claims",
			slog.String("user_id", p.UserID),
			slog.String("error", err.Error()),
		)
		return claims
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, remote, r.ttl); err != nil {
			r.logger.WarnContext(ctx, "profile cache write failed",
				slog.String("user_id", p.UserID),
				slog.String("error", err.Error()),
			)
		}
	}
	return merge(remote, claims)
}

// merge fills blanks in primary from fallback. The id always comes from
// the verified token.
func merge(primary, fallback *domain.Profile) *domain.Profile {
	out := *primary
	out.ID = fallback.ID
	if out.Email == "" {
		out.Email = fallback.Email
	}
	if out.FirstName == "" && out.LastName == "" && out.Username == "" {
		out.FirstName = fallback.FirstName
		out.LastName = fallback.LastName
		out.Username = fallback.Username
	}
	if out.ImageURL == "" {
		out.ImageURL = fallback.ImageURL
	}
	return &out
}
