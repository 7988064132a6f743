package userctx

import (
	"context"

	"github.com/foldax/insights-backend/models"
)

// Context key type
type contextKey string

const userKey contextKey = "user"

// SetUser attaches the resolved principal to the request context
func SetUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser retrieves the principal from the request context, nil when
// the request is unauthenticated
func GetUser(ctx context.Context) *models.User {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserID retrieves the principal's internal ID, empty when the
// request is unauthenticated
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}
