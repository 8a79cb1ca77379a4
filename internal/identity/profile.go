package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/pkg/httpclient"
	"github.com/Piyushkr001/revix/pkg/middleware"
)

// ProfileSource loads the provider's view of a user.
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (*domain.Profile, error)
}

// ClaimsProfile builds a profile from token claims alone.
func ClaimsProfile(p *middleware.Principal) *domain.Profile {
	return &domain.Profile{
		ID:        p.UserID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Username:  p.Username,
		ImageURL:  p.ImageURL,
	}
}

// HTTPProfileSource fetches profiles from the provider's user API:
// GET {baseURL}/{userID} with the API key as a bearer token.
type HTTPProfileSource struct {
	client  httpclient.Doer
	baseURL string
	apiKey  string
}

// NewHTTPProfileSource creates a profile source. client is expected to carry
// the circuit breaker and rate limiter.
func NewHTTPProfileSource(client httpclient.Doer, baseURL, apiKey string) *HTTPProfileSource {
	return &HTTPProfileSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type providerUser struct {
	ID                    string         `json:"id"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	Username              *string        `json:"username"`
	ImageURL              *string        `json:"image_url"`
}

// primaryEmail prefers the primary address, then the first one listed.
func (u *providerUser) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID && e.EmailAddress != "" {
			return e.EmailAddress
		}
	}
	for _, e := range u.EmailAddresses {
		if e.EmailAddress != "" {
			return e.EmailAddress
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Profile implements ProfileSource.
func (s *HTTPProfileSource) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if s.apiKey != "" {
		header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := httpclient.Get(ctx, s.client, s.baseURL+"/"+url.PathEscape(userID), header)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, "identity provider")
	}
	defer func() { _ = resp.Body.Close() }()

	var u providerUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if u.ID == "" {
		u.ID = userID
	}

	return &domain.Profile{
		ID:        u.ID,
		Email:     u.primaryEmail(),
		FirstName: deref(u.FirstName),
		LastName:  deref(u.LastName),
		Username:  deref(u.Username),
		ImageURL:  deref(u.ImageURL),
	}, nil
}
