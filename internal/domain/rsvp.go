package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotInvited is returned when a user submits an RSVP without any access
// path to the event.
var ErrNotInvited = errors.New("not invited to this event")

// RSVPStatus is an attendance answer.
type RSVPStatus string

const (
	RSVPYes   RSVPStatus = "yes"
	RSVPNo    RSVPStatus = "no"
	RSVPMaybe RSVPStatus = "maybe"
)

// Valid reports whether s is one of the fixed statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPYes, RSVPNo, RSVPMaybe:
		return true
	}
	return false
}

// MaxRSVPCommentLen bounds the RSVP comment length in runes.
const MaxRSVPCommentLen = 500

// RSVP is a user's attendance response, one per (event, user). Guests counts
// the responder and their plus-ones, never below 1.
// swagger:model RSVP
type RSVP struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	UserID    string     `json:"user_id"`
	Status    RSVPStatus `json:"status"`
	Comment   string     `json:"comment"`
	Guests    int        `json:"guests"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RSVPWithUser bundles an RSVP with the responder's identity fields.
type RSVPWithUser struct {
	RSVP
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RSVPCounts are the aggregate attendance totals, computed on read. Yes and
// maybe sum guest counts; no counts rows; total counts all rows.
type RSVPCounts struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Maybe int `json:"maybe"`
	Total int `json:"total"`
}

// CountRSVPs derives aggregate totals from a list of RSVPs.
func CountRSVPs(rsvps []*RSVPWithUser) RSVPCounts {
	var c RSVPCounts
	for _, r := range rsvps {
		switch r.Status {
		case RSVPYes:
			c.Yes += r.Guests
		case RSVPNo:
			c.No++
		case RSVPMaybe:
			c.Maybe += r.Guests
		}
		c.Total++
	}
	return c
}

// RSVPRepository defines storage operations for RSVPs. (event_id, user_id) is
// unique; Upsert replaces an existing row atomically (last writer wins).
type RSVPRepository interface {
	Upsert(ctx context.Context, r *RSVP) error
	GetByID(ctx context.Context, id string) (*RSVP, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error)
	ListByEventID(ctx context.Context, eventID string) ([]*RSVPWithUser, error)
	Delete(ctx context.Context, id string) error
}

// AttendanceService handles RSVP submissions and the guest list.
type AttendanceService interface {
	// SubmitRSVP creates or replaces the caller's response. The caller must be
	// invited, the owner, or a collaborator; a definite answer also updates the
	// matching invitation status.
	SubmitRSVP(ctx context.Context, eventID, userID string, status RSVPStatus, comment string, guests int) (*RSVP, error)
	ListRSVPs(ctx context.Context, eventID, requesterID string) ([]*RSVPWithUser, RSVPCounts, error)
	GetMyRSVP(ctx context.Context, eventID, userID string) (*RSVP, error)
	DeleteRSVP(ctx context.Context, rsvpID, requesterID string) error
}
