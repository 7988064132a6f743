package authenticator

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/foldax/insights-backend/models"
)

const googleIssuer = "https://accounts.google.com"

// GoogleConfig holds Google OAuth2/OIDC configuration
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	// IssuerURL overrides the Google issuer, for tests.
	IssuerURL string
}

// GoogleProvider implements Provider for Google via OpenID Connect.
// OIDC discovery is deferred to first use so that a process started
// without Google credentials (or network) still boots; the flow then
// fails per request with a ProviderError.
type GoogleProvider struct {
	cfg    GoogleConfig
	client *http.Client

	mu       sync.Mutex
	provider *oidc.Provider
	oauthCfg *oauth2.Config
}

// NewGoogleProvider creates a Google provider with the given configuration
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	if cfg.IssuerURL == "" {
		cfg.IssuerURL = googleIssuer
	}
	return &GoogleProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the registry key for Google
func (p *GoogleProvider) Name() string {
	return models.ProviderGoogle
}

// init runs OIDC discovery once and builds the oauth2 config
func (p *GoogleProvider) init(ctx context.Context) (*oauth2.Config, *oidc.Provider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.provider != nil {
		return p.oauthCfg, p.provider, nil
	}

	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return nil, nil, errors.New("google client credentials are not configured")
	}

	ctx = oidc.ClientContext(ctx, p.client)
	provider, err := oidc.NewProvider(ctx, p.cfg.IssuerURL)
	if err != nil {
		return nil, nil, err
	}

	p.provider = provider
	p.oauthCfg = &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  p.cfg.CallbackURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	return p.oauthCfg, p.provider, nil
}

// BeginAuth returns the Google authorization URL for the given state
func (p *GoogleProvider) BeginAuth(ctx context.Context, state string) (string, error) {
	conf, _, err := p.init(ctx)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Op: "begin auth", Err: err}
	}
	return conf.AuthCodeURL(state), nil
}

// CompleteAuth exchanges the authorization code, verifies the ID token
// and extracts the profile claims
func (p *GoogleProvider) CompleteAuth(ctx context.Context, code string) (*Profile, error) {
	conf, provider, err := p.init(ctx)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Op: "complete auth", Err: err}
	}

	ctx = oidc.ClientContext(ctx, p.client)
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Op: "token exchange", Err: err}
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, &ProviderError{Provider: p.Name(), Op: "token exchange", Err: errors.New("no id_token in token response")}
	}

	idToken, err := provider.Verifier(&oidc.Config{ClientID: p.cfg.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Op: "verify id token", Err: err}
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Op: "parse claims", Err: err}
	}

	if claims.Sub == "" {
		return nil, &ProviderError{Provider: p.Name(), Op: "parse claims", Err: errors.New("missing sub claim")}
	}

	return &Profile{
		Provider:     p.Name(),
		SubjectID:    claims.Sub,
		Email:        claims.Email,
		DisplayName:  claims.Name,
		AvatarURL:    claims.Picture,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}
