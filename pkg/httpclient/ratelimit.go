package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	apperrors "github.com/Piyushkr001/revix/pkg/errors"
)

// RateLimitedClient caps the outbound request rate with a token bucket.
// Calls over budget fail immediately instead of waiting.
type RateLimitedClient struct {
	next    Doer
	limiter *rate.Limiter
}

// NewRateLimitedClient allows rps requests per second with the given burst.
// A non-positive rps disables limiting.
func NewRateLimitedClient(next Doer, rps float64, burst int) *RateLimitedClient {
	lim := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &RateLimitedClient{next: next, limiter: lim}
}

// Do sends req when a token is available.
func (c *RateLimitedClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if !c.limiter.Allow() {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Host, apperrors.ErrRateLimited)
	}
	return c.next.Do(ctx, req)
}
