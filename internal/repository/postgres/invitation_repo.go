package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"eventplanner/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

const invitationColumns = `id, event_id, invited_by, invitee_email, invitee_username, invitee_user_id, status, token, created_at, updated_at`

func scanInvitation(row interface{ Scan(dest ...any) error }) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var email, username, userID sql.NullString
	err := row.Scan(
		&inv.ID, &inv.EventID, &inv.InvitedBy, &email, &username, &userID,
		&inv.Status, &inv.Token, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.InviteeEmail = email.String
	inv.InviteeUsername = username.String
	inv.InviteeUserID = userID.String
	return inv, nil
}

// nullable maps "" to NULL so the partial unique indexes on invitee identity
// never collide on empty strings.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (event_id, invited_by, invitee_email, invitee_username, invitee_user_id, status, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.EventID, inv.InvitedBy, nullable(inv.InviteeEmail), nullable(inv.InviteeUsername),
		nullable(inv.InviteeUserID), inv.Status, inv.Token, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateInvitation
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) GetByEventAndInvitee(ctx context.Context, eventID, userID, email string) (*domain.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE event_id = $1
		  AND (($2 != '' AND invitee_user_id = $2) OR ($3 != '' AND invitee_email = $3))
		LIMIT 1
	`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, eventID, userID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE event_id = $1 ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	invitations := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) (*domain.Invitation, error) {
	query := `
		UPDATE invitations SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + invitationColumns
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
