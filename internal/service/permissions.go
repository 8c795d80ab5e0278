package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/errs"
	"github.com/vpetrukhin/authgate/internal/model"
	"github.com/vpetrukhin/authgate/internal/repository"
)

// PermissionService is the administrative flow over permission records and
// user-group assignments.
type PermissionService interface {
	// Create inserts a permission; errs.ErrAlreadyExists on a taken name.
	Create(ctx context.Context, name, description string) (*model.Permission, error)
	// List returns all permissions.
	List(ctx context.Context) ([]model.Permission, error)
	// Update renames/redescribes a permission; errs.ErrNotFound on missing
	// id, errs.ErrAlreadyExists on a name collision.
	Update(ctx context.Context, id uuid.UUID, name, description string) (*model.Permission, error)
	// Delete removes a permission; errs.ErrNotFound on missing id.
	Delete(ctx context.Context, id uuid.UUID) error
	// AddGroupToUser assigns a group; assigning an already-held group is a
	// no-op success.
	AddGroupToUser(ctx context.Context, userID, groupID uuid.UUID) error
	// RemoveGroupFromUser removes an assignment; errs.ErrNotFound when the
	// user does not hold the group.
	RemoveGroupFromUser(ctx context.Context, userID, groupID uuid.UUID) error
}

type PermissionServiceImpl struct {
	perms  repository.PermissionRepository
	groups repository.GroupRepository
	users  repository.UserRepository
}

// NewPermissionService constructs PermissionService with required repositories.
func NewPermissionService(
	perms repository.PermissionRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
) *PermissionServiceImpl {
	return &PermissionServiceImpl{perms: perms, groups: groups, users: users}
}

// Create validates the name and inserts a permission.
func (s *PermissionServiceImpl) Create(ctx context.Context, name, description string) (*model.Permission, error) {
	if name == "" {
		return nil, errors.New("validation: empty permission name")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &model.Permission{ID: id, Name: name, Description: description}
	if err := s.perms.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all permissions.
func (s *PermissionServiceImpl) List(ctx context.Context) ([]model.Permission, error) {
	return s.perms.List(ctx)
}

// Update replaces name/description of an existing permission.
func (s *PermissionServiceImpl) Update(ctx context.Context, id uuid.UUID, name, description string) (*model.Permission, error) {
	if name == "" {
		return nil, errors.New("validation: empty permission name")
	}
	p := &model.Permission{ID: id, Name: name, Description: description}
	if err := s.perms.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a permission by id.
func (s *PermissionServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.perms.Delete(ctx, id)
}

// AddGroupToUser verifies both sides exist, then assigns idempotently.
func (s *PermissionServiceImpl) AddGroupToUser(ctx context.Context, userID, groupID uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return err
	}
	return s.groups.AddToUser(ctx, userID, groupID)
}

// RemoveGroupFromUser removes the assignment; an unassigned group is
// errs.ErrNotFound on every call, not just the first.
func (s *PermissionServiceImpl) RemoveGroupFromUser(ctx context.Context, userID, groupID uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.groups.RemoveFromUser(ctx, userID, groupID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrNotFound
		}
		return err
	}
	return nil
}
