package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/Piyushkr001/revix/pkg/errors"
	"github.com/Piyushkr001/revix/pkg/httputil"
)

// Limiter decides whether the caller identified by key may proceed.
// retryAfter is only meaningful when allowed is false.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// AllowRequest applies lim to the authenticated caller of r, keyed by scope
// and user id. When the caller is over the limit it writes 429 with
// Retry-After and returns false. Limiter errors let the request through.
func AllowRequest(w http.ResponseWriter, r *http.Request, lim Limiter, scope string, logger *slog.Logger) bool {
	userID := UserIDFromContext(r.Context())
	if lim == nil || userID == "" {
		return true
	}

	allowed, retryAfter, err := lim.Allow(r.Context(), scope+":"+userID)
	if err != nil {
		logger.WarnContext(r.Context(), "rate limiter unavailable, allowing request",
			slog.String("scope", scope),
			slog.String("error", err.Error()),
		)
		return true
	}
	if allowed {
		return true
	}

	secs := int(retryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	httputil.WriteError(w, r, apperrors.RateLimited("too many requests, try again later"), logger)
	return false
}
