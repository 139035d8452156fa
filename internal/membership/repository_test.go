// waypoint | 2026
// repository_test.go

package membership

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointhq/waypoint/internal/access"
	"github.com/waypointhq/waypoint/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestListForUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	joined := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	pro := "pro"
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"group_id", "group_name", "role",
		"plan_name", "plan_end_date", "joined_at",
	}).
		AddRow("g1", "Field Survey", "owner", &pro, &end, joined).
		AddRow("g2", "Trail Crew", "contributor", nil, nil, joined)

	mock.ExpectQuery(`SELECT m\.group_id,`).
		WithArgs("alice").
		WillReturnRows(rows)

	memberships, err := repo.ListForUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, memberships, 2)

	assert.Equal(t, "g1", memberships[0].GroupID)
	assert.Equal(t, access.RoleOwner, memberships[0].Role)
	require.NotNil(t, memberships[0].PlanName)
	assert.Equal(t, "pro", *memberships[0].PlanName)

	assert.Equal(t, access.RoleContributor, memberships[1].Role)
	assert.Nil(t, memberships[1].PlanName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT user_id, group_id, role`).
		WithArgs("ghost", "g1").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "group_id", "role", "created_at", "updated_at",
		}))

	_, err := repo.Get(context.Background(), "ghost", "g1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIdempotent(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	m := &Membership{
		UserID:  "bob",
		GroupID: "g1",
		Role:    access.RoleContributor,
	}

	mock.ExpectExec(`INSERT INTO memberships`).
		WithArgs("bob", "g1", access.RoleContributor).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.Insert(ctx, m)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Conflict path: no row written.
	mock.ExpectExec(`INSERT INTO memberships`).
		WithArgs("bob", "g1", access.RoleContributor).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err = repo.Insert(ctx, m)
	require.NoError(t, err)
	assert.False(t, inserted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE memberships`).
		WithArgs("ghost", "g1", access.RoleAdmin).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRole(context.Background(), "ghost", "g1", access.RoleAdmin)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNonMember(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM memberships`).
		WithArgs("ghost", "g1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "ghost", "g1")
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}
