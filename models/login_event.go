package models

import "time"

// Login attempt outcomes recorded in the audit trail.
const (
	LoginOutcomeSuccess       = "success"
	LoginOutcomeStateMismatch = "state_mismatch"
	LoginOutcomeProviderError = "provider_error"
	LoginOutcomeDirectoryErr  = "directory_error"
)

// LoginEvent is one row of the append-only login audit trail.
type LoginEvent struct {
	ID        int64
	Timestamp time.Time
	Provider  string
	UserID    string
	Outcome   string
	IPAddress string
	UserAgent string
}
