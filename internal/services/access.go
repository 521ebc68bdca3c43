package services

import (
	"context"
	"errors"
	"fmt"

	"eventplanner/internal/domain"
)

// accessResolver computes a user's effective role on an event. Every
// authorization decision in the services goes through it; no handler performs
// its own role comparison.
type accessResolver struct {
	collabRepo domain.CollaborationRepository
}

// resolveRole returns the user's effective role: owner for the event's owner,
// the stored collaboration role for members, RoleNone otherwise.
func (a *accessResolver) resolveRole(ctx context.Context, event *domain.Event, userID string) (domain.Role, error) {
	if event.OwnerID == userID {
		return domain.RoleOwner, nil
	}
	collab, err := a.collabRepo.GetByEventAndUser(ctx, event.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.RoleNone, nil
		}
		return domain.RoleNone, fmt.Errorf("get collaboration: %w", err)
	}
	return collab.Role, nil
}

// requireAtLeast resolves the user's role and returns ErrForbidden unless it
// ranks at or above required.
func (a *accessResolver) requireAtLeast(ctx context.Context, event *domain.Event, userID string, required domain.Role) error {
	role, err := a.resolveRole(ctx, event, userID)
	if err != nil {
		return err
	}
	if !role.AtLeast(required) {
		return domain.ErrForbidden
	}
	return nil
}
