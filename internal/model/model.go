// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// TokenPair collects an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// User represents an account stored on the server.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte    // Argon2id(password, SaltAuth)
	SaltAuth  []byte    // per-user auth salt
	CreatedAt time.Time
}

// Group is a named bundle of permissions assignable to users (many-to-many).
type Group struct {
	ID   uuid.UUID
	Name string // unique
}

// Permission is a named privilege referenced by authorization checks.
type Permission struct {
	ID          uuid.UUID
	Name        string // unique, enforced before create/update
	Description string
}

// RefreshSession is the stored record of an active refresh session for a
// (user, device) pair. The refresh token itself is never stored; only its
// identifier (jti) is, so rotation can compare-and-swap on it.
type RefreshSession struct {
	TokenID   string // jti of the current refresh token
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HistoryEvent kinds.
const (
	EventLogin  = "login"
	EventLogout = "logout"
)

// HistoryEvent is a single append-only login/logout record.
type HistoryEvent struct {
	UserID    uuid.UUID
	Device    string
	Event     string // EventLogin | EventLogout
	CreatedAt time.Time
}
