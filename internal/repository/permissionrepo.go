package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/model"
)

// PermissionRepository provides CRUD access to permission records.
// Name uniqueness is enforced by the backend and surfaced as
// errs.ErrAlreadyExists.
type PermissionRepository interface {
	// Create inserts a new permission.
	Create(ctx context.Context, p *model.Permission) error
	// List returns all permissions ordered by name.
	List(ctx context.Context) ([]model.Permission, error)
	// GetByID loads a permission by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Permission, error)
	// Update replaces name/description of an existing permission.
	Update(ctx context.Context, p *model.Permission) error
	// Delete removes a permission by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
