package controllers

import (
	"net/http"
)

// AnalyticsController serves the dashboard's analytics endpoints. The
// data is mock content until the real provider integrations land.
type AnalyticsController struct{}

// NewAnalyticsController creates a new analytics controller
func NewAnalyticsController() *AnalyticsController {
	return &AnalyticsController{}
}

// Health reports the analytics subsystem status
func (c *AnalyticsController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// LinkedIn returns LinkedIn analytics data
func (c *AnalyticsController) LinkedIn(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "LinkedIn analytics data"})
}
