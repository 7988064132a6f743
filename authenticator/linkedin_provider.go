package authenticator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"

	"github.com/foldax/insights-backend/models"
)

const linkedinUserInfoURL = "https://api.linkedin.com/v2/userinfo"

// LinkedInConfig holds LinkedIn OAuth2 configuration
type LinkedInConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	// Endpoint and UserInfoURL are overridable for tests.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// LinkedInProvider implements Provider for LinkedIn. LinkedIn's OIDC
// support stops short of usable ID-token claims, so after the token
// exchange the profile comes from an authenticated userinfo call.
type LinkedInProvider struct {
	cfg    LinkedInConfig
	oauth  *oauth2.Config
	client *http.Client
}

// NewLinkedInProvider creates a LinkedIn provider with the given configuration
func NewLinkedInProvider(cfg LinkedInConfig) *LinkedInProvider {
	if cfg.Endpoint == (oauth2.Endpoint{}) {
		cfg.Endpoint = linkedin.Endpoint
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = linkedinUserInfoURL
	}
	return &LinkedInProvider{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     cfg.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the registry key for LinkedIn
func (p *LinkedInProvider) Name() string {
	return models.ProviderLinkedIn
}

// BeginAuth returns the LinkedIn authorization URL for the given state
func (p *LinkedInProvider) BeginAuth(ctx context.Context, state string) (string, error) {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return "", &ProviderError{Provider: p.Name(), Op: "begin auth", Err: errors.New("linkedin client credentials are not configured")}
	}
	return p.oauth.AuthCodeURL(state), nil
}

// linkedinUserInfo is the userinfo endpoint response
type linkedinUserInfo struct {
	ID        string `json:"id"`
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	FirstName string `json:"localizedFirstName"`
	LastName  string `json:"localizedLastName"`
}

// subjectID prefers the legacy id field, falling back to the OIDC sub
func (u *linkedinUserInfo) subjectID() string {
	if u.ID != "" {
		return u.ID
	}
	return u.Sub
}

// CompleteAuth exchanges the authorization code and fetches the user
// profile from the userinfo endpoint
func (p *LinkedInProvider) CompleteAuth(ctx context.Context, code string) (*Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Op: "token exchange", Err: err}
	}

	info, err := p.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Op: "fetch userinfo", Err: err}
	}

	subject := info.subjectID()
	if subject == "" {
		return nil, &ProviderError{Provider: p.Name(), Op: "fetch userinfo", Err: errors.New("missing subject identifier in userinfo response")}
	}

	// LinkedIn does not return an avatar here; the display name is the
	// localized first and last names joined with a space.
	return &Profile{
		Provider:     p.Name(),
		SubjectID:    subject,
		Email:        info.Email,
		DisplayName:  strings.TrimSpace(info.FirstName + " " + info.LastName),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

// fetchUserInfo retrieves the profile with the bearer access token
func (p *LinkedInProvider) fetchUserInfo(ctx context.Context, accessToken string) (*linkedinUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info linkedinUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}

	return &info, nil
}

// compile-time interface checks
var (
	_ Provider = (*GoogleProvider)(nil)
	_ Provider = (*LinkedInProvider)(nil)
)
