package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/model"
)

// HistoryRepository is the append-only login/logout log. Events are never
// mutated after the append.
type HistoryRepository interface {
	// Append records a login/logout event.
	Append(ctx context.Context, ev model.HistoryEvent) error
	// Count returns the number of events recorded for the user.
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	// Page returns events newest-first; pages are 1-based.
	Page(ctx context.Context, userID uuid.UUID, size, number int) ([]model.HistoryEvent, error)
}
