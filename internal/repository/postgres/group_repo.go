package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/vpetrukhin/authgate/internal/errs"
	"github.com/vpetrukhin/authgate/internal/model"
)

// GroupRepo implements GroupRepository using PostgreSQL.
type GroupRepo struct{ db *DB }

// NewGroupRepo constructs a group repository.
func NewGroupRepo(db *DB) *GroupRepo { return &GroupRepo{db: db} }

// GetByID selects a group by ID.
func (r *GroupRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	const q = `SELECT id, name FROM groups WHERE id=$1`
	var g model.Group
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&g.ID, &g.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// PermissionsOf returns the permission names granted by the group.
func (r *GroupRepo) PermissionsOf(ctx context.Context, groupID uuid.UUID) ([]string, error) {
	const q = `
SELECT p.name
FROM group_permissions gp
JOIN permissions p ON p.id = gp.permission_id
WHERE gp.group_id = $1`
	rows, err := r.db.Pool.Query(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddToUser assigns the group to the user; re-assigning is a no-op success.
func (r *GroupRepo) AddToUser(ctx context.Context, userID, groupID uuid.UUID) error {
	const q = `
INSERT INTO user_groups (user_id, group_id)
VALUES ($1, $2)
ON CONFLICT (user_id, group_id) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, userID, groupID)
	return err
}

// RemoveFromUser removes the assignment; errs.ErrNotFound when absent.
func (r *GroupRepo) RemoveFromUser(ctx context.Context, userID, groupID uuid.UUID) error {
	const q = `DELETE FROM user_groups WHERE user_id=$1 AND group_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, groupID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
