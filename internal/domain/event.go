package domain

import (
	"context"
	"time"
)

// EventCategory classifies an event.
type EventCategory string

const (
	CategoryWedding    EventCategory = "wedding"
	CategoryMeeting    EventCategory = "meeting"
	CategoryParty      EventCategory = "party"
	CategoryConference EventCategory = "conference"
	CategoryOther      EventCategory = "other"
)

// Valid reports whether c is one of the fixed categories.
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryWedding, CategoryMeeting, CategoryParty, CategoryConference, CategoryOther:
		return true
	}
	return false
}

// Field length bounds for event input.
const (
	MaxEventTitleLen       = 200
	MaxEventDescriptionLen = 2000
)

// Event represents a planned event. CoverImage is an opaque asset reference
// owned by an external asset store.
// swagger:model Event
type Event struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Category       EventCategory `json:"category"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	Location       string        `json:"location"`
	CoverImage     string        `json:"cover_image"`
	OwnerID        string        `json:"owner_id"`
	IsPublic       bool          `json:"is_public"`
	InvitationLink string        `json:"invitation_link"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// EventPatch carries a partial event update. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Category    *EventCategory
	StartDate   *time.Time
	EndDate     *time.Time
	Location    *string
	CoverImage  *string
	IsPublic    *bool
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// Create persists the event and the owner's collaboration row in a single
	// transaction.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByInvitationLink(ctx context.Context, link string) (*Event, error)
	// ListForUser returns events the user owns or collaborates on, deduplicated.
	ListForUser(ctx context.Context, userID string) ([]*Event, error)
	Update(ctx context.Context, eventID string, patch EventPatch) (*Event, error)
	// Delete removes the event and all collaboration, invitation, and RSVP rows
	// referencing it in a single transaction.
	Delete(ctx context.Context, id string) error
}

// EventService defines event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	// GetEvent returns the event only if the requester has a role on it or the
	// event is public. A missing event and a denied one are indistinguishable.
	GetEvent(ctx context.Context, eventID, requesterID string) (*Event, error)
	GetEventByInviteLink(ctx context.Context, link string) (*Event, error)
	ListEventsForUser(ctx context.Context, userID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, requesterID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, requesterID string) error
}
