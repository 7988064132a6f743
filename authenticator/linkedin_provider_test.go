package authenticator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newLinkedInTestServer fakes the token and userinfo endpoints
func newLinkedInTestServer(t *testing.T, userinfoStatus int, userinfoBody string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer at-1" {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userinfoStatus)
		fmt.Fprint(w, userinfoBody)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestLinkedInProvider(server *httptest.Server) *LinkedInProvider {
	return NewLinkedInProvider(LinkedInConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:5000/api/auth/linkedin/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  server.URL + "/auth",
			TokenURL: server.URL + "/token",
		},
		UserInfoURL: server.URL + "/userinfo",
	})
}

func TestLinkedInBeginAuthCarriesState(t *testing.T) {
	server := newLinkedInTestServer(t, http.StatusOK, `{}`)
	provider := newTestLinkedInProvider(server)

	authURL, err := provider.BeginAuth(context.Background(), "state-123")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "state-123", parsed.Query().Get("state"))
	assert.Equal(t, "code", parsed.Query().Get("response_type"))
	assert.True(t, strings.Contains(parsed.Query().Get("scope"), "openid"))
}

func TestLinkedInBeginAuthWithoutCredentials(t *testing.T) {
	provider := NewLinkedInProvider(LinkedInConfig{})

	_, err := provider.BeginAuth(context.Background(), "state-123")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "linkedin", provErr.Provider)
}

func TestLinkedInCompleteAuth(t *testing.T) {
	server := newLinkedInTestServer(t, http.StatusOK,
		`{"id":"l1","email":"bob@example.com","localizedFirstName":"Bob","localizedLastName":"Builder"}`)
	provider := newTestLinkedInProvider(server)

	profile, err := provider.CompleteAuth(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "linkedin", profile.Provider)
	assert.Equal(t, "l1", profile.SubjectID)
	assert.Equal(t, "bob@example.com", profile.Email)
	// First and last name joined with a single space
	assert.Equal(t, "Bob Builder", profile.DisplayName)
	// LinkedIn provides no avatar through this endpoint
	assert.Empty(t, profile.AvatarURL)
	assert.Equal(t, "at-1", profile.AccessToken)
	assert.Equal(t, "rt-1", profile.RefreshToken)
}

func TestLinkedInCompleteAuthFallsBackToSub(t *testing.T) {
	server := newLinkedInTestServer(t, http.StatusOK,
		`{"sub":"l-sub","email":"bob@example.com","localizedFirstName":"Bob","localizedLastName":"Builder"}`)
	provider := newTestLinkedInProvider(server)

	profile, err := provider.CompleteAuth(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "l-sub", profile.SubjectID)
}

func TestLinkedInCompleteAuthMissingSubject(t *testing.T) {
	server := newLinkedInTestServer(t, http.StatusOK,
		`{"email":"bob@example.com","localizedFirstName":"Bob","localizedLastName":"Builder"}`)
	provider := newTestLinkedInProvider(server)

	_, err := provider.CompleteAuth(context.Background(), "auth-code")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "linkedin", provErr.Provider)
}

func TestLinkedInCompleteAuthUserInfoFailure(t *testing.T) {
	server := newLinkedInTestServer(t, http.StatusInternalServerError, `boom`)
	provider := newTestLinkedInProvider(server)

	_, err := provider.CompleteAuth(context.Background(), "auth-code")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
}

func TestLinkedInCompleteAuthMalformedUserInfo(t *testing.T) {
	server := newLinkedInTestServer(t, http.StatusOK, `not-json`)
	provider := newTestLinkedInProvider(server)

	_, err := provider.CompleteAuth(context.Background(), "auth-code")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
}

func TestLinkedInCompleteAuthTokenExchangeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	provider := newTestLinkedInProvider(server)

	_, err := provider.CompleteAuth(context.Background(), "bad-code")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "token exchange", provErr.Op)
}

func TestProviderErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := &ProviderError{Provider: "linkedin", Op: "token exchange", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "linkedin")
}

func TestRegistry(t *testing.T) {
	server := newLinkedInTestServer(t, http.StatusOK, `{}`)
	linkedIn := newTestLinkedInProvider(server)

	registry := NewRegistry(linkedIn)

	got, ok := registry.Get("linkedin")
	require.True(t, ok)
	assert.Equal(t, linkedIn, got)

	_, ok = registry.Get("github")
	assert.False(t, ok)

	assert.Equal(t, []string{"linkedin"}, registry.Names())
}
