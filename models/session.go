package models

import "time"

// Session is a server-side session record. The token is the value
// stored in the browser cookie; nothing else about the session ever
// leaves the server.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the session is past its lifetime at the
// given instant.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
