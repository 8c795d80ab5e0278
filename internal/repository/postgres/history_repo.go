package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/model"
)

// HistoryRepo implements HistoryRepository using PostgreSQL.
type HistoryRepo struct{ db *DB }

// NewHistoryRepo constructs a login-history repository.
func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

// Append records a login/logout event.
func (r *HistoryRepo) Append(ctx context.Context, ev model.HistoryEvent) error {
	const q = `
INSERT INTO login_history (user_id, device, event, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, ev.UserID, ev.Device, ev.Event, ev.CreatedAt)
	return err
}

// Count returns the number of events recorded for the user.
func (r *HistoryRepo) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM login_history WHERE user_id=$1`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Page returns events newest-first; pages are 1-based.
func (r *HistoryRepo) Page(ctx context.Context, userID uuid.UUID, size, number int) ([]model.HistoryEvent, error) {
	const q = `
SELECT user_id, device, event, created_at
FROM login_history
WHERE user_id=$1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	if size <= 0 {
		size = 20
	}
	if number <= 0 {
		number = 1
	}
	rows, err := r.db.Pool.Query(ctx, q, userID, size, (number-1)*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HistoryEvent
	for rows.Next() {
		var ev model.HistoryEvent
		if err := rows.Scan(&ev.UserID, &ev.Device, &ev.Event, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
