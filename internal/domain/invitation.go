package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateInvitation is returned when an open invitation already targets
// the same invitee identity for the event.
var ErrDuplicateInvitation = errors.New("invitation already sent")

// InvitationStatus is the lifecycle state of a guest invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Valid reports whether s is one of the fixed statuses.
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationDeclined:
		return true
	}
	return false
}

// Invitation is a pending-or-resolved guest request. The invitee may be an
// existing user (InviteeUserID set) or a raw email with no account yet.
// swagger:model Invitation
type Invitation struct {
	ID              string           `json:"id"`
	EventID         string           `json:"event_id"`
	InvitedBy       string           `json:"invited_by"`
	InviteeEmail    string           `json:"invitee_email,omitempty"`
	InviteeUsername string           `json:"invitee_username,omitempty"`
	InviteeUserID   string           `json:"invitee_user_id,omitempty"`
	Status          InvitationStatus `json:"status"`
	Token           string           `json:"token"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	// GetByEventAndInvitee finds the invitation addressed to the given user id
	// or lowercased email for the event. Either argument may be empty.
	GetByEventAndInvitee(ctx context.Context, eventID, userID, email string) (*Invitation, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Invitation, error)
	UpdateStatus(ctx context.Context, id string, status InvitationStatus) (*Invitation, error)
	Delete(ctx context.Context, id string) error
}
