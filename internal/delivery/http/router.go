package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventplanner/internal/delivery/http/controllers"
	"eventplanner/internal/delivery/http/middleware"
	"eventplanner/internal/domain"
)

// Controllers bundles the route handlers wired by NewRouter.
type Controllers struct {
	Auth          *controllers.AuthController
	Event         *controllers.EventController
	Collaboration *controllers.CollaborationController
	Invitation    *controllers.InvitationController
	RSVP          *controllers.RSVPController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier, wsHandler http.Handler, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/me", auth(c.Auth.Me))

	// Events
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", auth(c.Event.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Event.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.DeleteEvent))
	mux.HandleFunc("GET /events/invite/{link}", c.Event.GetEventByInviteLink)

	// Collaborations
	mux.HandleFunc("POST /events/{eventID}/collaborations", auth(c.Collaboration.AddCollaborator))
	mux.HandleFunc("GET /events/{eventID}/collaborations", auth(c.Collaboration.ListCollaborators))
	mux.HandleFunc("PATCH /collaborations/{collabID}", auth(c.Collaboration.UpdateCollaboratorRole))
	mux.HandleFunc("DELETE /collaborations/{collabID}", auth(c.Collaboration.RemoveCollaborator))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(c.Invitation.CreateInvitation))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(c.Invitation.ListInvitations))
	mux.HandleFunc("PATCH /invitations/{invitationID}/status", auth(c.Invitation.UpdateInvitationStatus))
	mux.HandleFunc("DELETE /invitations/{invitationID}", auth(c.Invitation.DeleteInvitation))

	// RSVPs
	mux.HandleFunc("POST /events/{eventID}/rsvps", auth(c.RSVP.SubmitRSVP))
	mux.HandleFunc("GET /events/{eventID}/rsvps", auth(c.RSVP.ListRSVPs))
	mux.HandleFunc("GET /events/{eventID}/rsvps/me", auth(c.RSVP.GetMyRSVP))
	mux.HandleFunc("DELETE /rsvps/{rsvpID}", auth(c.RSVP.DeleteRSVP))

	// Realtime
	mux.Handle("GET /ws", wsHandler)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}
