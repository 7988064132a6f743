package controllers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldax/insights-backend/authenticator"
	"github.com/foldax/insights-backend/database"
	"github.com/foldax/insights-backend/metrics"
	authmiddleware "github.com/foldax/insights-backend/middleware"
	"github.com/foldax/insights-backend/models"
	"github.com/foldax/insights-backend/repositories"
	"github.com/foldax/insights-backend/services"
)

const (
	testSuccessURL = "http://frontend.example/dashboard"
	testFailureURL = "http://frontend.example/login"
)

// fakeProvider implements authenticator.Provider without any network
type fakeProvider struct {
	name    string
	profile *authenticator.Profile
	err     error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) BeginAuth(ctx context.Context, state string) (string, error) {
	return "https://provider.example/authorize?state=" + url.QueryEscape(state), nil
}

func (f *fakeProvider) CompleteAuth(ctx context.Context, code string) (*authenticator.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type testEnv struct {
	server   *httptest.Server
	client   *http.Client
	repos    *repositories.Repositories
	services *services.Services
	provider *fakeProvider
}

func setupTestDB(t *testing.T) *sql.DB {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	t.Cleanup(func() {
		database.CloseDB()
	})

	return database.GetDB()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	repos := repositories.NewRepositories(db)
	srvs := services.NewServices(repos)

	provider := &fakeProvider{
		name: models.ProviderGoogle,
		profile: &authenticator.Profile{
			Provider:    models.ProviderGoogle,
			SubjectID:   "g1",
			Email:       "ann@example.com",
			DisplayName: "Ann",
			AvatarURL:   "https://example.com/ann.png",
		},
	}

	ctrl := NewControllers(srvs, authenticator.NewRegistry(provider), repos.LoginEvent, metrics.NewCollector(), AuthConfig{
		SuccessURL: testSuccessURL,
		FailureURL: testFailureURL,
	})

	r := chi.NewRouter()

	sessionHandler, err := session.Sessioner(session.Options{
		Provider:    "memory",
		CookieName:  "insights_oauth",
		Gclifetime:  3600,
		Maxlifetime: 3600,
	})
	require.NoError(t, err)
	r.Use(sessionHandler)

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/status", ctrl.Auth.Status)
		r.Post("/logout", ctrl.Auth.Logout)
		r.Get("/{provider}", ctrl.Auth.Login)
		r.Get("/{provider}/callback", ctrl.Auth.Callback)

		r.Group(func(r chi.Router) {
			r.Use(authmiddleware.RequireAuth(srvs.Session))
			r.Get("/me", ctrl.Auth.Me)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authmiddleware.RequireAuth(srvs.Session))
		r.Get("/api/users/profile", ctrl.Users.Profile)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		// Redirects are inspected, not followed
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{
		server:   server,
		client:   client,
		repos:    repos,
		services: srvs,
		provider: provider,
	}
}

// beginLogin starts the flow and returns the state issued to the provider
func (env *testEnv) beginLogin(t *testing.T) string {
	t.Helper()

	resp, err := env.client.Get(env.server.URL + "/api/auth/google")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

// callback completes the flow with the given state
func (env *testEnv) callback(t *testing.T, state string) *http.Response {
	t.Helper()

	resp, err := env.client.Get(env.server.URL + "/api/auth/google/callback?state=" + url.QueryEscape(state) + "&code=auth-code")
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (env *testEnv) getJSON(t *testing.T, path string, out interface{}) int {
	t.Helper()

	resp, err := env.client.Get(env.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestLoginFlowEstablishesSession(t *testing.T) {
	env := newTestEnv(t)

	state := env.beginLogin(t)
	resp := env.callback(t, state)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, testSuccessURL, resp.Header.Get("Location"))

	// Session cookie is set
	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == services.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "expected session cookie after login")
	assert.True(t, sessionCookie.HttpOnly)
	assert.NotEmpty(t, sessionCookie.Value)

	// A user record exists for the profile
	user, err := env.repos.User.GetByExternalID(context.Background(), models.ProviderGoogle, "g1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ann@example.com", user.Email)

	// /me returns the principal
	var me struct {
		User models.MeResponse `json:"user"`
	}
	status := env.getJSON(t, "/api/auth/me", &me)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, user.ID, me.User.ID)
	assert.Equal(t, "Ann", me.User.Name)

	// /status reports authenticated
	var statusBody map[string]bool
	env.getJSON(t, "/api/auth/status", &statusBody)
	assert.True(t, statusBody["isAuthenticated"])
}

func TestReloginYieldsSameUser(t *testing.T) {
	env := newTestEnv(t)

	state := env.beginLogin(t)
	env.callback(t, state)

	first, err := env.repos.User.GetByExternalID(context.Background(), models.ProviderGoogle, "g1")
	require.NoError(t, err)
	require.NotNil(t, first)

	state = env.beginLogin(t)
	env.callback(t, state)

	second, err := env.repos.User.GetByExternalID(context.Background(), models.ProviderGoogle, "g1")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID)

	count, err := env.repos.User.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCallbackStateMismatchFails(t *testing.T) {
	env := newTestEnv(t)

	env.beginLogin(t)
	resp := env.callback(t, "forged-state")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, testFailureURL, resp.Header.Get("Location"))

	// No session was established
	for _, c := range resp.Cookies() {
		assert.NotEqual(t, services.SessionCookieName, c.Name)
	}

	status := env.getJSON(t, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCallbackWithoutInitiationFails(t *testing.T) {
	env := newTestEnv(t)

	resp := env.callback(t, "whatever")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, testFailureURL, resp.Header.Get("Location"))
}

func TestCallbackProviderErrorFails(t *testing.T) {
	env := newTestEnv(t)
	env.provider.err = &authenticator.ProviderError{
		Provider: "google",
		Op:       "token exchange",
		Err:      context.DeadlineExceeded,
	}

	state := env.beginLogin(t)
	resp := env.callback(t, state)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, testFailureURL, resp.Header.Get("Location"))

	status := env.getJSON(t, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCallbackDuplicateEmailFails(t *testing.T) {
	env := newTestEnv(t)

	// The email is already owned by a LinkedIn-linked user
	existing := &models.User{
		ID:         "u-existing",
		Email:      "ann@example.com",
		Name:       "Ann L",
		LinkedInID: "l1",
	}
	require.NoError(t, env.repos.User.Create(context.Background(), existing))

	state := env.beginLogin(t)
	resp := env.callback(t, state)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, testFailureURL, resp.Header.Get("Location"))
}

func TestUnknownProviderIs404(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Get(env.server.URL + "/api/auth/github")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMeWithoutSessionIs401(t *testing.T) {
	env := newTestEnv(t)

	var body map[string]string
	status := env.getJSON(t, "/api/auth/me", &body)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Not authenticated", body["message"])
}

func TestStatusWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	var body map[string]bool
	status := env.getJSON(t, "/api/auth/status", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.False(t, body["isAuthenticated"])
}

func TestLogoutDestroysSession(t *testing.T) {
	env := newTestEnv(t)

	state := env.beginLogin(t)
	env.callback(t, state)

	resp, err := env.client.Post(env.server.URL+"/api/auth/logout", "application/json", strings.NewReader(""))
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", body["message"])

	// The session no longer resolves
	status := env.getJSON(t, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var statusBody map[string]bool
	env.getJSON(t, "/api/auth/status", &statusBody)
	assert.False(t, statusBody["isAuthenticated"])

	// Logout without a session is still a success
	resp, err = env.client.Post(env.server.URL+"/api/auth/logout", "application/json", strings.NewReader(""))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRouteRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	status := env.getJSON(t, "/api/users/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	state := env.beginLogin(t)
	env.callback(t, state)

	var body map[string]string
	status = env.getJSON(t, "/api/users/profile", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User profile", body["message"])
}
