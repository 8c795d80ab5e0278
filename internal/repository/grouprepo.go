package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/model"
)

// GroupRepository provides read access to groups and mutates user-group
// assignments. Group CRUD itself is administrative and out of band; the
// service only assigns and resolves.
type GroupRepository interface {
	// GetByID loads a group by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	// PermissionsOf returns the permission names granted by the group.
	PermissionsOf(ctx context.Context, groupID uuid.UUID) ([]string, error)
	// AddToUser assigns the group to the user. Assigning an already-held
	// group is a no-op success.
	AddToUser(ctx context.Context, userID, groupID uuid.UUID) error
	// RemoveFromUser removes the assignment; errs.ErrNotFound when the user
	// does not hold the group.
	RemoveFromUser(ctx context.Context, userID, groupID uuid.UUID) error
}
