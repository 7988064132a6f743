package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/foldax/insights-backend/models"
	"github.com/foldax/insights-backend/repositories"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "insights_session"

// SessionTTL is the fixed session lifetime. There is no sliding
// renewal; a session expires SessionTTL after creation.
const SessionTTL = 24 * time.Hour

// SessionService bridges an authenticated user to subsequent requests
type SessionService interface {
	// Establish creates a server-side session and returns its token.
	Establish(ctx context.Context, internalID string) (string, error)

	// Resolve returns the user behind a session token, nil for an
	// unknown or expired token or a vanished user. The user is
	// re-fetched on every call; nothing is cached.
	Resolve(ctx context.Context, token string) (*models.User, error)

	// Destroy invalidates the session. Destroying an already-invalid
	// token is not an error.
	Destroy(ctx context.Context, token string) error
}

// sessionService implements SessionService
type sessionService struct {
	sessions repositories.SessionRepository
	users    repositories.UserRepository
	now      func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(sessions repositories.SessionRepository, users repositories.UserRepository) SessionService {
	return &sessionService{
		sessions: sessions,
		users:    users,
		now:      time.Now,
	}
}

// Establish creates a new session for the given user
func (s *sessionService) Establish(ctx context.Context, internalID string) (string, error) {
	token, err := generateSessionToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now().UTC()
	session := &models.Session{
		Token:     token,
		UserID:    internalID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	return token, nil
}

// Resolve looks up the session and re-fetches its user
func (s *sessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	if session.ExpiredAt(s.now().UTC()) {
		// Expired rows are garbage; drop them on sight.
		if err := s.sessions.Delete(ctx, token); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return s.users.GetByInternalID(ctx, session.UserID)
}

// Destroy invalidates the session server-side
func (s *sessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// generateSessionToken returns a 256-bit random token
func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
