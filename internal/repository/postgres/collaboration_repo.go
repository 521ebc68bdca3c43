package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventplanner/internal/domain"
)

type collaborationRepository struct {
	DB *sql.DB
}

func NewCollaborationRepository(db *sql.DB) domain.CollaborationRepository {
	return &collaborationRepository{
		DB: db,
	}
}

// Create relies on the unique (event_id, user_id) index: a race between two
// writers yields exactly one row and one ErrAlreadyCollaborator.
func (r *collaborationRepository) Create(ctx context.Context, c *domain.Collaboration) error {
	query := `
		INSERT INTO collaborations (event_id, user_id, role, invited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, c.EventID, c.UserID, c.Role, c.InvitedBy, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyCollaborator
		}
		return err
	}
	return nil
}

func (r *collaborationRepository) GetByID(ctx context.Context, id string) (*domain.Collaboration, error) {
	query := `
		SELECT id, event_id, user_id, role, invited_by, created_at, updated_at
		FROM collaborations
		WHERE id = $1
	`
	c := &domain.Collaboration{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.EventID, &c.UserID, &c.Role, &c.InvitedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *collaborationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Collaboration, error) {
	query := `
		SELECT id, event_id, user_id, role, invited_by, created_at, updated_at
		FROM collaborations
		WHERE event_id = $1 AND user_id = $2
	`
	c := &domain.Collaboration{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&c.ID, &c.EventID, &c.UserID, &c.Role, &c.InvitedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *collaborationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.CollaborationWithUser, error) {
	query := `
		SELECT c.id, c.event_id, c.user_id, c.role, c.invited_by, c.created_at, c.updated_at,
		       u.username, u.email, u.first_name, u.last_name
		FROM collaborations c
		JOIN users u ON u.id = c.user_id
		WHERE c.event_id = $1
		ORDER BY c.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.CollaborationWithUser, 0)
	for rows.Next() {
		m := &domain.CollaborationWithUser{}
		var firstName, lastName sql.NullString
		if err := rows.Scan(
			&m.ID, &m.EventID, &m.UserID, &m.Role, &m.InvitedBy, &m.CreatedAt, &m.UpdatedAt,
			&m.Username, &m.Email, &firstName, &lastName,
		); err != nil {
			return nil, err
		}
		m.FirstName = firstName.String
		m.LastName = lastName.String
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *collaborationRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Collaboration, error) {
	query := `
		UPDATE collaborations SET role = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, event_id, user_id, role, invited_by, created_at, updated_at
	`
	c := &domain.Collaboration{}
	err := r.DB.QueryRowContext(ctx, query, role, id).Scan(&c.ID, &c.EventID, &c.UserID, &c.Role, &c.InvitedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *collaborationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM collaborations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
