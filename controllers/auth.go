package controllers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"

	"github.com/foldax/insights-backend/authenticator"
	"github.com/foldax/insights-backend/metrics"
	"github.com/foldax/insights-backend/middleware"
	"github.com/foldax/insights-backend/models"
	"github.com/foldax/insights-backend/repositories"
	"github.com/foldax/insights-backend/services"
	"github.com/foldax/insights-backend/userctx"
)

// stateSessionKey is where the in-flight OAuth state lives in the
// cookie session between Login and Callback.
const stateSessionKey = "oauth_state"

// AuthConfig holds the auth controller's redirect and cookie settings
type AuthConfig struct {
	// SuccessURL is where the browser lands after a completed login.
	SuccessURL string
	// FailureURL is where the browser lands when a login fails.
	FailureURL string
	// SecureCookies marks the session cookie Secure (set under TLS).
	SecureCookies bool
}

// AuthController orchestrates the login flow: provider redirect, state
// validation, code exchange, user upsert, session establishment.
type AuthController struct {
	providers *authenticator.Registry
	services  *services.Services
	events    repositories.LoginEventRepository
	metrics   *metrics.Collector
	cfg       AuthConfig
}

// NewAuthController creates a new auth controller
func NewAuthController(
	providers *authenticator.Registry,
	services *services.Services,
	events repositories.LoginEventRepository,
	collector *metrics.Collector,
	cfg AuthConfig,
) *AuthController {
	return &AuthController{
		providers: providers,
		services:  services,
		events:    events,
		metrics:   collector,
		cfg:       cfg,
	}
}

// Login initiates the authentication flow for the named provider
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	provider, ok := ac.providers.Get(chi.URLParam(r, "provider"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Generate random state for CSRF protection
	state, err := generateRandomState()
	if err != nil {
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	// Save the state in the session to validate in callback
	sess := session.GetSession(r)
	sess.Set(stateSessionKey, state)

	redirectURL, err := provider.BeginAuth(r.Context(), state)
	if err != nil {
		log.Printf("begin auth failed: %v", err)
		ac.failLogin(w, r, provider.Name(), models.LoginOutcomeProviderError)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// Callback completes the flow: validates state, exchanges the code,
// upserts the user and establishes the session
func (ac *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	provider, ok := ac.providers.Get(chi.URLParam(r, "provider"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	sess := session.GetSession(r)

	// Verify state before anything else
	storedState, _ := sess.Get(stateSessionKey).(string)
	sess.Delete(stateSessionKey)
	if storedState == "" || r.URL.Query().Get("state") != storedState {
		ac.failLogin(w, r, provider.Name(), models.LoginOutcomeStateMismatch)
		return
	}

	// The provider signals a denied or failed authorization in the
	// error query parameter
	if r.URL.Query().Get("error") != "" {
		ac.failLogin(w, r, provider.Name(), models.LoginOutcomeProviderError)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		ac.failLogin(w, r, provider.Name(), models.LoginOutcomeProviderError)
		return
	}

	profile, err := provider.CompleteAuth(r.Context(), code)
	if err != nil {
		log.Printf("complete auth failed: %v", err)
		ac.failLogin(w, r, provider.Name(), models.LoginOutcomeProviderError)
		return
	}

	user, err := ac.services.Auth.UpsertFromProfile(r.Context(), profile)
	if err != nil {
		log.Printf("user upsert failed: %v", err)
		ac.failLogin(w, r, provider.Name(), models.LoginOutcomeDirectoryErr)
		return
	}

	token, err := ac.services.Session.Establish(r.Context(), user.ID)
	if err != nil {
		log.Printf("session establishment failed: %v", err)
		ac.failLogin(w, r, provider.Name(), models.LoginOutcomeDirectoryErr)
		return
	}

	ac.setSessionCookie(w, token)
	ac.recordLogin(r, provider.Name(), user.ID, models.LoginOutcomeSuccess)
	ac.metrics.RecordSessionEstablished()

	http.Redirect(w, r, ac.cfg.SuccessURL, http.StatusSeeOther)
}

// Logout destroys the current session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(services.SessionCookieName); err == nil {
		token = cookie.Value
	}

	if err := ac.services.Session.Destroy(r.Context(), token); err != nil {
		log.Printf("session destruction failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error logging out"})
		return
	}

	ac.clearSessionCookie(w)
	ac.metrics.RecordLogout()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the authenticated principal. The route is wrapped in
// RequireAuth, so the principal is always present here.
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user := userctx.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authenticated"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user.ToMeResponse()})
}

// Status reports whether the request carries a valid session. It never
// requires one.
func (ac *AuthController) Status(w http.ResponseWriter, r *http.Request) {
	authenticated := false
	if cookie, err := r.Cookie(services.SessionCookieName); err == nil {
		user, err := ac.services.Session.Resolve(r.Context(), cookie.Value)
		if err != nil {
			log.Printf("session resolution failed: %v", err)
		}
		authenticated = user != nil
	}

	writeJSON(w, http.StatusOK, map[string]bool{"isAuthenticated": authenticated})
}

// failLogin records the failed attempt and redirects to the failure URL
func (ac *AuthController) failLogin(w http.ResponseWriter, r *http.Request, provider, outcome string) {
	ac.recordLogin(r, provider, "", outcome)
	http.Redirect(w, r, ac.cfg.FailureURL, http.StatusSeeOther)
}

// recordLogin appends a login event and bumps the attempt counter.
// The event write happens off the request path.
func (ac *AuthController) recordLogin(r *http.Request, provider, userID, outcome string) {
	ac.metrics.RecordLoginAttempt(provider, outcome)

	event := &models.LoginEvent{
		Provider:  provider,
		UserID:    userID,
		Outcome:   outcome,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	go func() {
		if err := ac.events.Create(context.Background(), event); err != nil {
			log.Printf("failed to record login event: %v", err)
		}
	}()
}

// setSessionCookie attaches the session token to the response
func (ac *AuthController) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     services.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   ac.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie
func (ac *AuthController) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     services.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ac.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
