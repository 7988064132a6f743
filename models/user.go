package models

import (
	"time"
)

// Provider names accepted by the user directory.
const (
	ProviderGoogle   = "google"
	ProviderLinkedIn = "linkedin"
)

// User represents a registered account. A user is created on first
// successful login from a provider and may carry zero, one or two
// provider links. ID is assigned at creation and never changes.
type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	Avatar               string    `json:"avatar,omitempty"`
	GoogleID             string    `json:"-"`
	LinkedInID           string    `json:"-"`
	LinkedInAccessToken  string    `json:"-"`
	LinkedInRefreshToken string    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// MeResponse is the payload returned by GET /api/auth/me. It mirrors
// what the dashboard frontend expects, tokens included for the
// LinkedIn analytics widgets.
type MeResponse struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	Avatar              string `json:"avatar"`
	LinkedInAccessToken string `json:"linkedinAccessToken,omitempty"`
}

// ToMeResponse projects the user onto the /me wire format.
func (u *User) ToMeResponse() MeResponse {
	return MeResponse{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		Avatar:              u.Avatar,
		LinkedInAccessToken: u.LinkedInAccessToken,
	}
}

// ExternalID returns the user's ID for the given provider, empty if
// the provider is not linked.
func (u *User) ExternalID(provider string) string {
	switch provider {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderLinkedIn:
		return u.LinkedInID
	}
	return ""
}
