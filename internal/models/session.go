package models

import "time"

// Session binds a client-held token to a user until it expires or is
// destroyed at logout.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	FirstName string    `json:"first_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
