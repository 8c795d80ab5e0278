package service

import (
	"context"

	"github.com/vpetrukhin/authgate/internal/repository"
)

// Authorizer resolves a subject's effective permission set through its
// groups. It is a read-only consumer of user/group/permission records and
// never mutates them.
type Authorizer interface {
	// RequiredPermissions reports whether the subject holds every one of the
	// required permission names (logical AND, no partial grants). Unknown
	// subjects and resolution failures yield false, never an error: callers
	// treat that as "not authorized", not as a system fault.
	RequiredPermissions(ctx context.Context, subject string, required []string) bool
}

type AuthorizerImpl struct {
	users  repository.UserRepository
	groups repository.GroupRepository
}

// NewAuthorizer constructs an Authorizer over the user and group directories.
func NewAuthorizer(users repository.UserRepository, groups repository.GroupRepository) *AuthorizerImpl {
	return &AuthorizerImpl{users: users, groups: groups}
}

// RequiredPermissions flattens the subject's group grants into a set and
// checks membership of every required name.
func (a *AuthorizerImpl) RequiredPermissions(ctx context.Context, subject string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	u, err := a.users.GetByUsername(ctx, subject)
	if err != nil {
		return false
	}
	groupIDs, err := a.users.GroupsOf(ctx, u.ID)
	if err != nil {
		return false
	}
	granted := make(map[string]struct{})
	for _, gid := range groupIDs {
		names, err := a.groups.PermissionsOf(ctx, gid)
		if err != nil {
			return false
		}
		for _, name := range names {
			granted[name] = struct{}{}
		}
	}
	for _, name := range required {
		if _, ok := granted[name]; !ok {
			return false
		}
	}
	return true
}
