package domain

import (
	"strings"
	"time"
)

// User mirrors an identity-provider account. The id is the provider's
// user id.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	ImageURL  *string   `json:"imageUrl"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile is what the identity provider knows about a user.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// DisplayName joins first and last name, falling back to the username.
// It returns nil when neither is known.
func (p *Profile) DisplayName() *string {
	var parts []string
	for _, s := range []string{p.FirstName, p.LastName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	name := strings.Join(parts, " ")
	if name == "" {
		name = strings.TrimSpace(p.Username)
	}
	if name == "" {
		return nil
	}
	return &name
}

// ToUser builds the mirror row for p.
func (p *Profile) ToUser(now time.Time) *User {
	var image *string
	if p.ImageURL != "" {
		img := p.ImageURL
		image = &img
	}
	return &User{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.DisplayName(),
		ImageURL:  image,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
