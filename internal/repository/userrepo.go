// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/model"
)

// UserRepository provides access to user accounts and their group assignments.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpdatePassword replaces the stored hash and salt.
	UpdatePassword(ctx context.Context, id uuid.UUID, pwdHash, saltAuth []byte) error
	// GroupsOf returns IDs of groups assigned to the user.
	GroupsOf(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}
