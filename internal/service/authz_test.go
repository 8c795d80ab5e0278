package service

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/errs"
	"github.com/vpetrukhin/authgate/internal/model"
	"github.com/vpetrukhin/authgate/internal/repository"
)

type fakeGroups struct {
	byID    map[uuid.UUID]*model.Group
	grants  map[uuid.UUID][]string
	members map[string][]uuid.UUID // "user|group" presence

	permsErr  error
	addErr    error
	removeErr error
}

var _ repository.GroupRepository = (*fakeGroups)(nil)

func memberKey(userID, groupID uuid.UUID) string {
	return userID.String() + "|" + groupID.String()
}

func (f *fakeGroups) GetByID(_ context.Context, id uuid.UUID) (*model.Group, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *g
	return &c, nil
}

func (f *fakeGroups) PermissionsOf(_ context.Context, groupID uuid.UUID) ([]string, error) {
	if f.permsErr != nil {
		return nil, f.permsErr
	}
	return f.grants[groupID], nil
}

func (f *fakeGroups) AddToUser(_ context.Context, userID, groupID uuid.UUID) error {
	if f.addErr != nil {
		return f.addErr
	}
	if f.members == nil {
		f.members = map[string][]uuid.UUID{}
	}
	k := memberKey(userID, groupID)
	if _, held := f.members[k]; held {
		return nil // idempotent
	}
	f.members[k] = nil
	return nil
}

func (f *fakeGroups) RemoveFromUser(_ context.Context, userID, groupID uuid.UUID) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	k := memberKey(userID, groupID)
	if _, held := f.members[k]; !held {
		return errs.ErrNotFound
	}
	delete(f.members, k)
	return nil
}

func newAuthzFixture(t *testing.T) (*AuthorizerImpl, *fakeUsers, *fakeGroups, *model.User) {
	t.Helper()

	user := &model.User{ID: uuid.Must(uuid.NewV4()), Username: "alice"}
	g1 := uuid.Must(uuid.NewV4())

	users := &fakeUsers{
		byName: map[string]*model.User{"alice": user},
		groups: map[uuid.UUID][]uuid.UUID{user.ID: {g1}},
	}
	groups := &fakeGroups{
		byID:   map[uuid.UUID]*model.Group{g1: {ID: g1, Name: "editors"}},
		grants: map[uuid.UUID][]string{g1: {"a", "b"}},
	}
	return NewAuthorizer(users, groups), users, groups, user
}

func TestAuthorizer_RequiredPermissions(t *testing.T) {
	t.Parallel()
	az, _, _, _ := newAuthzFixture(t)
	ctx := context.Background()

	if !az.RequiredPermissions(ctx, "alice", []string{"a"}) {
		t.Fatalf("want true for granted permission")
	}
	if !az.RequiredPermissions(ctx, "alice", []string{"a", "b"}) {
		t.Fatalf("want true for full grant")
	}
	// Logical AND: one missing name fails the whole check.
	if az.RequiredPermissions(ctx, "alice", []string{"a", "c"}) {
		t.Fatalf("want false when any required permission is missing")
	}
	// An empty requirement only needs a resolved check path.
	if !az.RequiredPermissions(ctx, "alice", nil) {
		t.Fatalf("want true for empty requirement")
	}
}

func TestAuthorizer_UnknownSubjectIsFalseNotError(t *testing.T) {
	t.Parallel()
	az, _, _, _ := newAuthzFixture(t)

	if az.RequiredPermissions(context.Background(), "nobody", []string{"a"}) {
		t.Fatalf("want false for unknown subject")
	}
}

func TestAuthorizer_ResolutionFailureIsFalse(t *testing.T) {
	t.Parallel()
	az, _, groups, _ := newAuthzFixture(t)

	groups.permsErr = errs.ErrStoreUnavailable
	if az.RequiredPermissions(context.Background(), "alice", []string{"a"}) {
		t.Fatalf("want false when permission resolution fails")
	}
}
