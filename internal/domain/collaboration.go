package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyCollaborator is returned when adding a user who already holds a
// collaboration on the event.
var ErrAlreadyCollaborator = errors.New("already a collaborator")

// Collaboration is a persistent grant of a role to a user on an event.
// swagger:model Collaboration
type Collaboration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	InvitedBy string    `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CollaborationWithUser bundles a collaboration with the member's identity
// fields for list views.
type CollaborationWithUser struct {
	Collaboration
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CollaborationRepository defines storage operations for collaborations.
// (event_id, user_id) is unique; Create must surface a concurrent duplicate
// as ErrAlreadyCollaborator.
type CollaborationRepository interface {
	Create(ctx context.Context, c *Collaboration) error
	GetByID(ctx context.Context, id string) (*Collaboration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Collaboration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*CollaborationWithUser, error)
	UpdateRole(ctx context.Context, id string, role Role) (*Collaboration, error)
	Delete(ctx context.Context, id string) error
}

// MembershipService manages collaborations and guest invitations for an event.
type MembershipService interface {
	// AddCollaborator grants a role on the event. Owner only. The target is a
	// user id or a username; granting to the owner is rejected.
	AddCollaborator(ctx context.Context, eventID, requesterID, target string, role Role) (*CollaborationWithUser, error)
	UpdateCollaboratorRole(ctx context.Context, collabID, requesterID string, role Role) (*Collaboration, error)
	// RemoveCollaborator is allowed for the owner and for the member removing
	// themselves. The owner's own row cannot be removed.
	RemoveCollaborator(ctx context.Context, collabID, requesterID string) error
	ListCollaborators(ctx context.Context, eventID, requesterID string) ([]*CollaborationWithUser, error)

	CreateInvitation(ctx context.Context, eventID, requesterID, inviteeEmail, inviteeUsername string) (*Invitation, error)
	// UpdateInvitationStatus is restricted to the invitee, matched by resolved
	// user id or by email.
	UpdateInvitationStatus(ctx context.Context, invitationID, requesterID string, status InvitationStatus) (*Invitation, error)
	DeleteInvitation(ctx context.Context, invitationID, requesterID string) error
	ListInvitations(ctx context.Context, eventID, requesterID string) ([]*Invitation, error)
}
