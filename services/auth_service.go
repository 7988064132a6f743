package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/foldax/insights-backend/authenticator"
	"github.com/foldax/insights-backend/models"
	"github.com/foldax/insights-backend/repositories"
)

// AuthService is the user directory: it turns external profiles into
// persistent user records
type AuthService interface {
	// UpsertFromProfile returns the user linked to the profile's
	// external identity, creating it on first login. Repeated logins
	// with the same external identity always resolve to the same user.
	UpsertFromProfile(ctx context.Context, profile *authenticator.Profile) (*models.User, error)

	// GetUser looks up a user by internal ID, nil if absent.
	GetUser(ctx context.Context, internalID string) (*models.User, error)
}

// authService implements AuthService
type authService struct {
	users repositories.UserRepository
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository) AuthService {
	return &authService{users: users}
}

// UpsertFromProfile implements the insert-if-absent-else-update keyed
// by (provider, external ID). There is no in-process locking: on a
// concurrent first login the storage layer's unique constraint picks
// a winner and the loser re-reads the winning row.
func (s *authService) UpsertFromProfile(ctx context.Context, profile *authenticator.Profile) (*models.User, error) {
	if profile.SubjectID == "" {
		return nil, fmt.Errorf("profile for provider %s has no subject ID", profile.Provider)
	}

	existing, err := s.users.GetByExternalID(ctx, profile.Provider, profile.SubjectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.refresh(ctx, existing, profile)
	}

	user := newUserFromProfile(profile)
	err = s.users.Create(ctx, user)
	if err == nil {
		return user, nil
	}

	// Lost the insert race against a concurrent login with the same
	// external identity; the winner's row is the user.
	if errors.Is(err, models.ErrExternalIDConflict) {
		winner, getErr := s.users.GetByExternalID(ctx, profile.Provider, profile.SubjectID)
		if getErr != nil {
			return nil, getErr
		}
		if winner == nil {
			return nil, err
		}
		return s.refresh(ctx, winner, profile)
	}

	return nil, err
}

// GetUser looks up a user by internal ID
func (s *authService) GetUser(ctx context.Context, internalID string) (*models.User, error) {
	return s.users.GetByInternalID(ctx, internalID)
}

// refresh overwrites the mutable fields the provider re-asserts on
// every login. External IDs are write-once and never touched here.
func (s *authService) refresh(ctx context.Context, user *models.User, profile *authenticator.Profile) (*models.User, error) {
	if profile.AvatarURL != "" {
		user.Avatar = profile.AvatarURL
	}
	if profile.Provider == models.ProviderLinkedIn {
		user.LinkedInAccessToken = profile.AccessToken
		user.LinkedInRefreshToken = profile.RefreshToken
	}

	if err := s.users.UpdateTokens(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// newUserFromProfile builds a fresh user record for a first login
func newUserFromProfile(profile *authenticator.Profile) *models.User {
	user := &models.User{
		ID:     uuid.NewString(),
		Email:  profile.Email,
		Name:   profile.DisplayName,
		Avatar: profile.AvatarURL,
	}

	switch profile.Provider {
	case models.ProviderGoogle:
		user.GoogleID = profile.SubjectID
	case models.ProviderLinkedIn:
		user.LinkedInID = profile.SubjectID
		user.LinkedInAccessToken = profile.AccessToken
		user.LinkedInRefreshToken = profile.RefreshToken
	}

	return user
}
