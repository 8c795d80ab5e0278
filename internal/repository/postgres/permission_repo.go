package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/vpetrukhin/authgate/internal/errs"
	"github.com/vpetrukhin/authgate/internal/model"
)

// PermissionRepo implements PermissionRepository using PostgreSQL.
type PermissionRepo struct{ db *DB }

// NewPermissionRepo constructs a permission repository.
func NewPermissionRepo(db *DB) *PermissionRepo { return &PermissionRepo{db: db} }

// Create inserts a new permission row; the unique index on name surfaces
// duplicates as errs.ErrAlreadyExists.
func (r *PermissionRepo) Create(ctx context.Context, p *model.Permission) error {
	const q = `
INSERT INTO permissions (id, name, description)
VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, p.ID, p.Name, p.Description)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// List returns all permissions ordered by name.
func (r *PermissionRepo) List(ctx context.Context) ([]model.Permission, error) {
	const q = `SELECT id, name, description FROM permissions ORDER BY name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Permission
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID selects a permission by ID.
func (r *PermissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Permission, error) {
	const q = `SELECT id, name, description FROM permissions WHERE id=$1`
	var p model.Permission
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update replaces name/description of an existing permission.
func (r *PermissionRepo) Update(ctx context.Context, p *model.Permission) error {
	const q = `UPDATE permissions SET name=$2, description=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, p.ID, p.Name, p.Description)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a permission by ID.
func (r *PermissionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM permissions WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
