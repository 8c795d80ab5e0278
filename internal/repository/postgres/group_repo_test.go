package postgres

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/vpetrukhin/authgate/internal/errs"
)

func TestGroupRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewGroupRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, name FROM groups WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(id, "admins"))
	g, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "admins", g.Name)

	mock.ExpectQuery(`SELECT id, name FROM groups WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGroupRepo_PermissionsOf(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewGroupRepo(db)
	ctx := context.Background()
	groupID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT p.name\s+FROM group_permissions gp\s+JOIN permissions p ON p.id = gp.permission_id\s+WHERE gp.group_id = \$1`).
		WithArgs(groupID).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("items.read").AddRow("items.write"))
	names, err := r.PermissionsOf(ctx, groupID)
	require.NoError(t, err)
	require.Equal(t, []string{"items.read", "items.write"}, names)
}

func TestGroupRepo_AddToUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewGroupRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	groupID := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`INSERT INTO user_groups \(user_id, group_id\)\s+VALUES \(\$1, \$2\)\s+ON CONFLICT \(user_id, group_id\) DO NOTHING`).
		WithArgs(userID, groupID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.AddToUser(ctx, userID, groupID))

	// Re-assignment hits the conflict clause and succeeds with zero rows.
	mock.ExpectExec(`INSERT INTO user_groups \(user_id, group_id\)\s+VALUES \(\$1, \$2\)\s+ON CONFLICT \(user_id, group_id\) DO NOTHING`).
		WithArgs(userID, groupID).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	require.NoError(t, r.AddToUser(ctx, userID, groupID))
}

func TestGroupRepo_RemoveFromUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewGroupRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	groupID := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM user_groups WHERE user_id=\$1 AND group_id=\$2`).
		WithArgs(userID, groupID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.RemoveFromUser(ctx, userID, groupID))

	mock.ExpectExec(`DELETE FROM user_groups WHERE user_id=\$1 AND group_id=\$2`).
		WithArgs(userID, groupID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.RemoveFromUser(ctx, userID, groupID), errs.ErrNotFound)
}
