package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/model"
)

// SessionStore is the durable map of active refresh sessions keyed by
// (user, device). The auth service is its only mutator. Per-key mutations
// are linearizable: Put is create-only and Rotate is a compare-and-swap on
// the stored token ID, so concurrent rotation attempts on the same key
// cannot both succeed.
type SessionStore interface {
	// Put creates the session; errs.ErrDuplicateSession when one already
	// exists for (userID, device).
	Put(ctx context.Context, userID uuid.UUID, device string, s model.RefreshSession) error
	// Get loads the session; errs.ErrSessionNotFound when absent.
	Get(ctx context.Context, userID uuid.UUID, device string) (*model.RefreshSession, error)
	// Rotate atomically replaces the session iff the stored token ID equals
	// oldTokenID; errs.ErrSessionNotFound otherwise (absent key or an
	// already-rotated token).
	Rotate(ctx context.Context, userID uuid.UUID, device, oldTokenID string, s model.RefreshSession) error
	// Delete removes the session; deleting an absent key is a no-op.
	Delete(ctx context.Context, userID uuid.UUID, device string) error
	// DeleteAll purges every session of the user and returns how many were
	// removed.
	DeleteAll(ctx context.Context, userID uuid.UUID) (int, error)
	// Count returns the number of live sessions of the user.
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

// Denylist is the durable set of revoked access-token IDs. Entries expire
// at their TTL; absence is the default (open) state.
type Denylist interface {
	// Put marks the token ID revoked for ttl. Idempotent.
	Put(ctx context.Context, tokenID string, ttl time.Duration) error
	// Contains reports whether the token ID is currently revoked.
	Contains(ctx context.Context, tokenID string) (bool, error)
}
