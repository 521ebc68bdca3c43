package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventplanner/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

// Upsert writes the response keyed on the (event_id, user_id) uniqueness
// constraint. The last writer wins.
func (r *rsvpRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO rsvps (event_id, user_id, status, comment, guests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET status = EXCLUDED.status, comment = EXCLUDED.comment, guests = EXCLUDED.guests, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query,
		rsvp.EventID, rsvp.UserID, rsvp.Status, rsvp.Comment, rsvp.Guests, rsvp.CreatedAt, rsvp.UpdatedAt,
	).Scan(&rsvp.ID, &rsvp.CreatedAt)
}

func (r *rsvpRepository) GetByID(ctx context.Context, id string) (*domain.RSVP, error) {
	query := `
		SELECT id, event_id, user_id, status, comment, guests, created_at, updated_at
		FROM rsvps
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *rsvpRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	query := `
		SELECT id, event_id, user_id, status, comment, guests, created_at, updated_at
		FROM rsvps
		WHERE event_id = $1 AND user_id = $2
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, eventID, userID))
}

func (r *rsvpRepository) scanOne(row *sql.Row) (*domain.RSVP, error) {
	rsvp := &domain.RSVP{}
	var comment sql.NullString
	err := row.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.Status, &comment, &rsvp.Guests, &rsvp.CreatedAt, &rsvp.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rsvp.Comment = comment.String
	return rsvp, nil
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVPWithUser, error) {
	query := `
		SELECT r.id, r.event_id, r.user_id, r.status, r.comment, r.guests, r.created_at, r.updated_at,
		       u.username, u.email, u.first_name, u.last_name
		FROM rsvps r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rsvps := make([]*domain.RSVPWithUser, 0)
	for rows.Next() {
		row := &domain.RSVPWithUser{}
		var comment, firstName, lastName sql.NullString
		if err := rows.Scan(
			&row.ID, &row.EventID, &row.UserID, &row.Status, &comment, &row.Guests, &row.CreatedAt, &row.UpdatedAt,
			&row.Username, &row.Email, &firstName, &lastName,
		); err != nil {
			return nil, err
		}
		row.Comment = comment.String
		row.FirstName = firstName.String
		row.LastName = lastName.String
		rsvps = append(rsvps, row)
	}
	return rsvps, rows.Err()
}

func (r *rsvpRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM rsvps WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
