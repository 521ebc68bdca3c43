package domain

// Realtime message types, one per mutation. Each push carries the full
// post-mutation entity, not a diff.
const (
	MsgCollaborationAdded   = "collaboration-added"
	MsgCollaborationUpdated = "collaboration-updated"
	MsgCollaborationRemoved = "collaboration-removed"
	MsgNewInvitation        = "new-invitation"
	MsgInvitationUpdated    = "invitation-updated"
	MsgRSVPUpdated          = "rsvp-updated"
	MsgRSVPDeleted          = "rsvp-deleted"
)

// Broadcaster fans out mutation notifications to realtime subscribers.
// Delivery is best-effort at-most-once: implementations must never block or
// surface an error to the calling mutation.
type Broadcaster interface {
	// PublishEvent notifies every session joined to the event's channel.
	PublishEvent(eventID, messageType string, payload any)
	// PublishUser notifies the user's private channel.
	PublishUser(userID, messageType string, payload any)
}
