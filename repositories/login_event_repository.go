package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/foldax/insights-backend/models"
)

// LoginEventRepository handles login audit trail persistence
type LoginEventRepository interface {
	Create(ctx context.Context, event *models.LoginEvent) error
}

type loginEventRepository struct {
	db *sql.DB
}

// NewLoginEventRepository creates a new login event repository
func NewLoginEventRepository(db *sql.DB) LoginEventRepository {
	return &loginEventRepository{db: db}
}

// Create inserts a new login event
func (r *loginEventRepository) Create(ctx context.Context, event *models.LoginEvent) error {
	query := `
		INSERT INTO login_events (timestamp, provider, user_id, outcome, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		event.Timestamp,
		event.Provider,
		event.UserID,
		event.Outcome,
		event.IPAddress,
		event.UserAgent,
	)
	return err
}
