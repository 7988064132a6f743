package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/foldax/insights-backend/authenticator"
	"github.com/foldax/insights-backend/metrics"
	"github.com/foldax/insights-backend/repositories"
	"github.com/foldax/insights-backend/services"
)

// writeJSON renders a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// Controllers holds all controller instances
type Controllers struct {
	Auth      *AuthController
	Analytics *AnalyticsController
	Posts     *PostsController
	Users     *UsersController
}

// NewControllers creates and initializes all controller instances
func NewControllers(
	services *services.Services,
	providers *authenticator.Registry,
	events repositories.LoginEventRepository,
	collector *metrics.Collector,
	authCfg AuthConfig,
) *Controllers {
	return &Controllers{
		Auth:      NewAuthController(providers, services, events, collector, authCfg),
		Analytics: NewAnalyticsController(),
		Posts:     NewPostsController(),
		Users:     NewUsersController(),
	}
}
