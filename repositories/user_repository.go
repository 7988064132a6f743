package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/foldax/insights-backend/models"
)

// UserRepository interface defines user directory database operations
type UserRepository interface {
	GetByInternalID(ctx context.Context, id string) (*models.User, error)
	GetByExternalID(ctx context.Context, provider, externalID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateTokens(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int, error)
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `
	id, email, name, avatar, google_id, linkedin_id,
	linkedin_access_token, linkedin_refresh_token, created_at, updated_at
`

// scanUser scans one user row, mapping NULL provider IDs to empty strings
func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var googleID, linkedinID sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Avatar,
		&googleID,
		&linkedinID,
		&user.LinkedInAccessToken,
		&user.LinkedInRefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.GoogleID = googleID.String
	user.LinkedInID = linkedinID.String
	return &user, nil
}

// GetByInternalID retrieves a user by internal ID, nil if absent
func (r *userRepository) GetByInternalID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByExternalID retrieves a user by provider-specific external ID, nil if absent
func (r *userRepository) GetByExternalID(ctx context.Context, provider, externalID string) (*models.User, error) {
	column, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, externalID))
}

// GetByEmail retrieves a user by email, nil if absent
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Create inserts a new user. The storage layer's unique constraints
// are the only guard against concurrent duplicate inserts: a lost race
// on a provider ID surfaces as models.ErrExternalIDConflict, a taken
// email as *models.DuplicateEmailError.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, avatar, google_id, linkedin_id,
		                   linkedin_access_token, linkedin_refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Avatar,
		nullString(user.GoogleID),
		nullString(user.LinkedInID),
		user.LinkedInAccessToken,
		user.LinkedInRefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return translateUniqueViolation(err, user.Email)
	}

	return nil
}

// UpdateTokens refreshes the mutable profile fields of an existing
// user. Provider IDs are write-once and deliberately not part of the
// update set.
func (r *userRepository) UpdateTokens(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET avatar = ?, linkedin_access_token = ?, linkedin_refresh_token = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		user.Avatar,
		user.LinkedInAccessToken,
		user.LinkedInRefreshToken,
		now,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found", user.ID)
	}

	user.UpdatedAt = now
	return nil
}

// Count returns the total number of users
func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// providerColumn maps a provider name to its external-ID column
func providerColumn(provider string) (string, error) {
	switch provider {
	case models.ProviderGoogle:
		return "google_id", nil
	case models.ProviderLinkedIn:
		return "linkedin_id", nil
	}
	return "", fmt.Errorf("unknown provider %q", provider)
}

// translateUniqueViolation maps sqlite unique-constraint failures onto
// the directory's typed errors
func translateUniqueViolation(err error, email string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		if strings.Contains(sqliteErr.Error(), "users.email") {
			return &models.DuplicateEmailError{Email: email}
		}
		return models.ErrExternalIDConflict
	}
	return fmt.Errorf("failed to create user: %w", err)
}

// nullString maps an empty string to NULL so absent provider links do
// not participate in the unique indexes
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
