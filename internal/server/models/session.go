package models

import "time"

// Session backs a bearer token; the token is valid while the row exists
// and has not expired.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PasswordReset is a pending single-use reset request. Only the SHA-256 of
// the token is stored.
type PasswordReset struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
