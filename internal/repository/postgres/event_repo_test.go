package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/domain"
)

var testTime = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "category", "start_date", "end_date",
		"location", "cover_image", "owner_id", "is_public", "invitation_link",
		"created_at", "updated_at",
	})
}

func addEventRow(rows *sqlmock.Rows, id string) *sqlmock.Rows {
	return rows.AddRow(id, "Garden party", "bring drinks", "party", testTime, testTime.Add(4*time.Hour),
		"Backyard", nil, "user-1", false, "invite-abc", testTime, testTime)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success inserts event and owner collaboration",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("Garden party", "", "party", testTime, testTime.Add(4*time.Hour), "",
						"", "user-1", false, "invite-abc", testTime, testTime).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
				mock.ExpectExec(`INSERT INTO collaborations`).
					WithArgs("ev-1", "user-1", domain.RoleOwner, "user-1", testTime, testTime).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantID: "ev-1",
		},
		{
			name: "collaboration insert failure rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
				mock.ExpectExec(`INSERT INTO collaborations`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			event := &domain.Event{
				Title:          "Garden party",
				Category:       domain.CategoryParty,
				StartDate:      testTime,
				EndDate:        testTime.Add(4 * time.Hour),
				OwnerID:        "user-1",
				InvitationLink: "invite-abc",
				CreatedAt:      testTime,
				UpdatedAt:      testTime,
			}
			err = repo.Create(ctx, event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, description, category`).
			WithArgs("ev-1").
			WillReturnRows(addEventRow(eventRows(), "ev-1"))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", event.ID)
		require.Equal(t, "bring drinks", event.Description)
		require.Empty(t, event.CoverImage)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, description, category`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_ListForUser(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := addEventRow(eventRows(), "ev-1")
	rows = addEventRow(rows, "ev-2")
	mock.ExpectQuery(`FROM events e`).
		WithArgs("user-1").
		WillReturnRows(rows)

	repo := NewEventRepository(db)
	events, err := repo.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	title := "New title"
	isPublic := true
	mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\), title = \$1, is_public = \$2`).
		WithArgs("New title", true, "ev-1").
		WillReturnRows(addEventRow(eventRows(), "ev-1"))

	repo := NewEventRepository(db)
	_, err = repo.Update(ctx, "ev-1", domain.EventPatch{Title: &title, IsPublic: &isPublic})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_UpdateNoFields(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// An empty patch falls back to a plain fetch.
	mock.ExpectQuery(`SELECT id, title, description, category`).
		WithArgs("ev-1").
		WillReturnRows(addEventRow(eventRows(), "ev-1"))

	repo := NewEventRepository(db)
	event, err := repo.Update(ctx, "ev-1", domain.EventPatch{})
	require.NoError(t, err)
	require.Equal(t, "ev-1", event.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades children first", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM rsvps WHERE event_id`).
			WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM invitations WHERE event_id`).
			WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM collaborations WHERE event_id`).
			WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM events WHERE id`).
			WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing event rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM rsvps WHERE event_id`).
			WithArgs("ev-missing").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM invitations WHERE event_id`).
			WithArgs("ev-missing").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM collaborations WHERE event_id`).
			WithArgs("ev-missing").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM events WHERE id`).
			WithArgs("ev-missing").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "ev-missing"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
