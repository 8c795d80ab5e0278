// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Taxonomy sentinels shared by services, repositories and the HTTP layer.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., permission name taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials indicates a failed username/password check.
	// It never distinguishes which factor was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a structurally or cryptographically invalid,
	// expired or wrong-kind token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenRevoked indicates an access token present in the denylist.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrMissingDevice indicates the client did not supply a device identity.
	ErrMissingDevice = errors.New("missing device identity")

	// ErrDuplicateSession indicates an active session already exists for the
	// (user, device) pair; sign-in never replaces it implicitly.
	ErrDuplicateSession = errors.New("duplicate session")

	// ErrSessionNotFound indicates no active session for (user, device).
	// Replay of an already-rotated refresh token lands here as well.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotAuthorized indicates a valid identity with insufficient permissions.
	ErrNotAuthorized = errors.New("not enough rights")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreUnavailable indicates a transient backing-store failure
	// (timeout, connection loss). Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
