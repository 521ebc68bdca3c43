package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/domain"
)

func TestCollaborationRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO collaborations`).
			WithArgs("ev-1", "user-2", domain.RoleEditor, "user-1", testTime, testTime).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("col-1"))

		repo := NewCollaborationRepository(db)
		collab := &domain.Collaboration{
			EventID:   "ev-1",
			UserID:    "user-2",
			Role:      domain.RoleEditor,
			InvitedBy: "user-1",
			CreatedAt: testTime,
			UpdatedAt: testTime,
		}
		require.NoError(t, repo.Create(ctx, collab))
		require.Equal(t, "col-1", collab.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate maps unique violation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO collaborations`).
			WillReturnError(&pq.Error{Code: "23505"})

		repo := NewCollaborationRepository(db)
		err = repo.Create(ctx, &domain.Collaboration{EventID: "ev-1", UserID: "user-2"})
		require.ErrorIs(t, err, domain.ErrAlreadyCollaborator)
	})
}

func TestCollaborationRepository_GetByEventAndUser(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM collaborations`).
		WithArgs("ev-1", "user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "role", "invited_by", "created_at", "updated_at"}).
			AddRow("col-1", "ev-1", "user-2", "viewer", "user-1", testTime, testTime))

	repo := NewCollaborationRepository(db)
	collab, err := repo.GetByEventAndUser(ctx, "ev-1", "user-2")
	require.NoError(t, err)
	require.Equal(t, domain.RoleViewer, collab.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollaborationRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`JOIN users u ON u.id = c.user_id`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "event_id", "user_id", "role", "invited_by", "created_at", "updated_at",
			"username", "email", "first_name", "last_name",
		}).
			AddRow("col-1", "ev-1", "user-1", "owner", "user-1", testTime, testTime, "alice", "alice@example.com", "Alice", nil).
			AddRow("col-2", "ev-1", "user-2", "viewer", "user-1", testTime, testTime, "bob", "bob@example.com", nil, nil))

	repo := NewCollaborationRepository(db)
	members, err := repo.ListByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "alice", members[0].Username)
	require.Equal(t, "Alice", members[0].FirstName)
	require.Empty(t, members[1].FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollaborationRepository_UpdateRole(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`UPDATE collaborations SET role`).
		WithArgs(domain.RoleEditor, "col-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "role", "invited_by", "created_at", "updated_at"}).
			AddRow("col-1", "ev-1", "user-2", "editor", "user-1", testTime, testTime))

	repo := NewCollaborationRepository(db)
	collab, err := repo.UpdateRole(ctx, "col-1", domain.RoleEditor)
	require.NoError(t, err)
	require.Equal(t, domain.RoleEditor, collab.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollaborationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM collaborations WHERE id`).
		WithArgs("col-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewCollaborationRepository(db)
	require.ErrorIs(t, repo.Delete(ctx, "col-missing"), domain.ErrNotFound)
}
