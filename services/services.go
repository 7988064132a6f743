package services

import (
	"github.com/foldax/insights-backend/repositories"
)

// Services holds all service instances
type Services struct {
	Auth    AuthService
	Session SessionService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories) *Services {
	return &Services{
		Auth:    NewAuthService(repos.User),
		Session: NewSessionService(repos.Session, repos.User),
	}
}
