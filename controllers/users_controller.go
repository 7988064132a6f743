package controllers

import (
	"net/http"
)

// UsersController serves the user profile endpoints
type UsersController struct{}

// NewUsersController creates a new users controller
func NewUsersController() *UsersController {
	return &UsersController{}
}

// Health reports the users subsystem status
func (c *UsersController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Profile returns profile data for the dashboard
func (c *UsersController) Profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "User profile"})
}
