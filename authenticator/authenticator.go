package authenticator

import (
	"context"
	"fmt"
)

// Profile is the normalized identity returned by a provider after a
// completed authorization-code flow. SubjectID is the provider-scoped
// stable identifier; it is never defaulted.
type Profile struct {
	Provider     string
	SubjectID    string
	Email        string
	DisplayName  string
	AvatarURL    string
	AccessToken  string
	RefreshToken string
}

// Provider abstracts one external OAuth2/OIDC identity provider.
// Providers are stateless beyond their configuration and perform no
// storage side effects; persisting the resulting profile is the
// caller's job.
type Provider interface {
	// Name returns the registry key, e.g. "google".
	Name() string

	// BeginAuth returns the provider's authorization URL carrying the
	// given anti-forgery state.
	BeginAuth(ctx context.Context, state string) (string, error)

	// CompleteAuth exchanges the authorization code and fetches the
	// normalized profile. Any failure is a *ProviderError.
	CompleteAuth(ctx context.Context, code string) (*Profile, error)
}

// ProviderError wraps any network or protocol failure talking to an
// external identity provider.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Registry holds the configured providers. It is built once at startup
// and passed to the auth controller; there is no process-wide mutable
// strategy table.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry from the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get looks up a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
