// models/session.go
package models

import "time"

// Session lifetimes. The guest identity gets a much shorter window.
const (
	SessionDuration      = 24 * time.Hour
	GuestSessionDuration = 2 * time.Hour
)

// SessionCookieName is the cookie carrying the opaque bearer token.
const SessionCookieName = "session-token"

// Session is a persisted bearer-token row.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthSession is a resolved session: the token plus the fully loaded user
// (role, effective permissions, category grants).
type AuthSession struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
