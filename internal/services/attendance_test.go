package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/domain"
)

type attendanceFixture struct {
	svc         domain.AttendanceService
	events      *fakeEventRepo
	collabs     *fakeCollabRepo
	invitations *fakeInvitationRepo
	rsvps       *fakeRSVPRepo
	users       *fakeUserRepo
	broadcaster *fakeBroadcaster
	owner       *domain.User
	event       *domain.Event
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()
	f := &attendanceFixture{
		events:      newFakeEventRepo(),
		collabs:     newFakeCollabRepo(),
		invitations: newFakeInvitationRepo(),
		rsvps:       newFakeRSVPRepo(),
		users:       newFakeUserRepo(),
		broadcaster: &fakeBroadcaster{},
	}
	f.svc = NewAttendanceService(f.events, f.collabs, f.invitations, f.rsvps,
		f.users, f.broadcaster, testLogger(), time.Second)

	f.owner = f.users.add("alice", "alice@example.com")
	f.event = validEvent(f.owner.ID)
	require.NoError(t, f.events.Create(context.Background(), f.event))
	require.NoError(t, f.collabs.Create(context.Background(), &domain.Collaboration{
		EventID: f.event.ID, UserID: f.owner.ID, Role: domain.RoleOwner,
	}))
	return f
}

func (f *attendanceFixture) invite(t *testing.T, user *domain.User) *domain.Invitation {
	t.Helper()
	inv := &domain.Invitation{
		EventID:       f.event.ID,
		InvitedBy:     f.owner.ID,
		InviteeEmail:  strings.ToLower(user.Email),
		InviteeUserID: user.ID,
		Status:        domain.InvitationPending,
	}
	require.NoError(t, f.invitations.Create(context.Background(), inv))
	return inv
}

func TestSubmitRSVPReconcilesInvitation(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.RSVPStatus
		wantInvite domain.InvitationStatus
	}{
		{"yes accepts", domain.RSVPYes, domain.InvitationAccepted},
		{"no declines", domain.RSVPNo, domain.InvitationDeclined},
		{"maybe leaves pending", domain.RSVPMaybe, domain.InvitationPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttendanceFixture(t)
			bob := f.users.add("bob", "bob@example.com")
			inv := f.invite(t, bob)

			rsvp, err := f.svc.SubmitRSVP(context.Background(), f.event.ID, bob.ID, tt.status, "", 1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, rsvp.Status)

			stored, err := f.invitations.GetByID(context.Background(), inv.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantInvite, stored.Status)
			assert.True(t, f.broadcaster.sent("event:"+f.event.ID, domain.MsgRSVPUpdated))
		})
	}
}

func TestSubmitRSVPAccess(t *testing.T) {
	f := newAttendanceFixture(t)
	collaborator := f.users.add("carol", "carol@example.com")
	require.NoError(t, f.collabs.Create(context.Background(), &domain.Collaboration{
		EventID: f.event.ID, UserID: collaborator.ID, Role: domain.RoleViewer,
	}))
	stranger := f.users.add("steve", "steve@example.com")

	// Owner and collaborators can respond without an invitation.
	_, err := f.svc.SubmitRSVP(context.Background(), f.event.ID, f.owner.ID, domain.RSVPYes, "", 1)
	assert.NoError(t, err)
	_, err = f.svc.SubmitRSVP(context.Background(), f.event.ID, collaborator.ID, domain.RSVPMaybe, "", 1)
	assert.NoError(t, err)

	_, err = f.svc.SubmitRSVP(context.Background(), f.event.ID, stranger.ID, domain.RSVPYes, "", 1)
	assert.ErrorIs(t, err, domain.ErrNotInvited)
}

func TestSubmitRSVPValidation(t *testing.T) {
	f := newAttendanceFixture(t)
	bob := f.users.add("bob", "bob@example.com")
	f.invite(t, bob)

	_, err := f.svc.SubmitRSVP(context.Background(), f.event.ID, bob.ID, "perhaps", "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.SubmitRSVP(context.Background(), f.event.ID, bob.ID, domain.RSVPYes, strings.Repeat("x", 501), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Guests below one are floored to one.
	rsvp, err := f.svc.SubmitRSVP(context.Background(), f.event.ID, bob.ID, domain.RSVPYes, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, rsvp.Guests)
}

func TestSubmitRSVPReplacesPrevious(t *testing.T) {
	f := newAttendanceFixture(t)
	bob := f.users.add("bob", "bob@example.com")
	f.invite(t, bob)

	first, err := f.svc.SubmitRSVP(context.Background(), f.event.ID, bob.ID, domain.RSVPYes, "bringing snacks", 3)
	require.NoError(t, err)
	second, err := f.svc.SubmitRSVP(context.Background(), f.event.ID, bob.ID, domain.RSVPNo, "", 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	rows, err := f.rsvps.ListByEventID(context.Background(), f.event.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.RSVPNo, rows[0].Status)
}

func TestListRSVPsCounts(t *testing.T) {
	f := newAttendanceFixture(t)
	for _, r := range []*domain.RSVP{
		{EventID: f.event.ID, UserID: "g-1", Status: domain.RSVPYes, Guests: 2},
		{EventID: f.event.ID, UserID: "g-2", Status: domain.RSVPYes, Guests: 1},
		{EventID: f.event.ID, UserID: "g-3", Status: domain.RSVPMaybe, Guests: 3},
		{EventID: f.event.ID, UserID: "g-4", Status: domain.RSVPNo, Guests: 5},
	} {
		require.NoError(t, f.rsvps.Upsert(context.Background(), r))
	}

	rows, counts, err := f.svc.ListRSVPs(context.Background(), f.event.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	// Yes and maybe sum guests; no counts responses regardless of guests.
	assert.Equal(t, domain.RSVPCounts{Yes: 3, No: 1, Maybe: 3, Total: 4}, counts)
}

func TestListRSVPsAccess(t *testing.T) {
	f := newAttendanceFixture(t)
	stranger := f.users.add("steve", "steve@example.com")

	_, _, err := f.svc.ListRSVPs(context.Background(), f.event.ID, stranger.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.event.IsPublic = true
	_, _, err = f.svc.ListRSVPs(context.Background(), f.event.ID, stranger.ID)
	assert.NoError(t, err)
}

func TestGetMyRSVP(t *testing.T) {
	f := newAttendanceFixture(t)
	bob := f.users.add("bob", "bob@example.com")
	f.invite(t, bob)

	_, err := f.svc.GetMyRSVP(context.Background(), f.event.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.SubmitRSVP(context.Background(), f.event.ID, bob.ID, domain.RSVPMaybe, "", 2)
	require.NoError(t, err)

	got, err := f.svc.GetMyRSVP(context.Background(), f.event.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RSVPMaybe, got.Status)
	assert.Equal(t, 2, got.Guests)
}

func TestDeleteRSVP(t *testing.T) {
	f := newAttendanceFixture(t)
	bob := f.users.add("bob", "bob@example.com")
	f.invite(t, bob)

	rsvp, err := f.svc.SubmitRSVP(context.Background(), f.event.ID, bob.ID, domain.RSVPYes, "", 1)
	require.NoError(t, err)

	err = f.svc.DeleteRSVP(context.Background(), rsvp.ID, f.owner.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.svc.DeleteRSVP(context.Background(), rsvp.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, f.broadcaster.sent("event:"+f.event.ID, domain.MsgRSVPDeleted))

	err = f.svc.DeleteRSVP(context.Background(), rsvp.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
