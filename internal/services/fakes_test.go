package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"eventplanner/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, Create returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByInvitationLink(ctx context.Context, link string) (*domain.Event, error) {
	for _, e := range f.byID {
		if e.InvitationLink == link {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OwnerID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.StartDate != nil {
		e.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		e.EndDate = *patch.EndDate
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.CoverImage != nil {
		e.CoverImage = *patch.CoverImage
	}
	if patch.IsPublic != nil {
		e.IsPublic = *patch.IsPublic
	}
	e.UpdatedAt = time.Now()
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeCollabRepo is an in-memory CollaborationRepository for tests.
type fakeCollabRepo struct {
	byID   map[string]*domain.Collaboration
	users  map[string]*domain.User // optional user details for ListByEventID
	nextID int
}

func newFakeCollabRepo() *fakeCollabRepo {
	return &fakeCollabRepo{
		byID:   make(map[string]*domain.Collaboration),
		users:  make(map[string]*domain.User),
		nextID: 1,
	}
}

func (f *fakeCollabRepo) Create(ctx context.Context, c *domain.Collaboration) error {
	for _, existing := range f.byID {
		if existing.EventID == c.EventID && existing.UserID == c.UserID {
			return domain.ErrAlreadyCollaborator
		}
	}
	c.ID = fmt.Sprintf("col-%d", f.nextID)
	f.nextID++
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCollabRepo) GetByID(ctx context.Context, id string) (*domain.Collaboration, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCollabRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Collaboration, error) {
	for _, c := range f.byID {
		if c.EventID == eventID && c.UserID == userID {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCollabRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.CollaborationWithUser, error) {
	var out []*domain.CollaborationWithUser
	for _, c := range f.byID {
		if c.EventID != eventID {
			continue
		}
		row := &domain.CollaborationWithUser{Collaboration: *c}
		if u, ok := f.users[c.UserID]; ok {
			row.Username = u.Username
			row.Email = u.Email
			row.FirstName = u.FirstName
			row.LastName = u.LastName
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeCollabRepo) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Collaboration, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Role = role
	c.UpdatedAt = time.Now()
	return c, nil
}

func (f *fakeCollabRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeInvitationRepo is an in-memory InvitationRepository for tests.
type fakeInvitationRepo struct {
	byID   map[string]*domain.Invitation
	nextID int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{
		byID:   make(map[string]*domain.Invitation),
		nextID: 1,
	}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.nextID++
	f.byID[inv.ID] = inv
	return nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if inv, ok := f.byID[id]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) GetByEventAndInvitee(ctx context.Context, eventID, userID, email string) (*domain.Invitation, error) {
	for _, inv := range f.byID {
		if inv.EventID != eventID {
			continue
		}
		if userID != "" && inv.InviteeUserID == userID {
			return inv, nil
		}
		if email != "" && strings.EqualFold(inv.InviteeEmail, email) {
			return inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	var out []*domain.Invitation
	for _, inv := range f.byID {
		if inv.EventID == eventID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) (*domain.Invitation, error) {
	inv, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	return inv, nil
}

func (f *fakeInvitationRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeRSVPRepo is an in-memory RSVPRepository for tests.
type fakeRSVPRepo struct {
	byID   map[string]*domain.RSVP
	nextID int
}

func newFakeRSVPRepo() *fakeRSVPRepo {
	return &fakeRSVPRepo{
		byID:   make(map[string]*domain.RSVP),
		nextID: 1,
	}
}

func (f *fakeRSVPRepo) Upsert(ctx context.Context, r *domain.RSVP) error {
	for _, existing := range f.byID {
		if existing.EventID == r.EventID && existing.UserID == r.UserID {
			existing.Status = r.Status
			existing.Comment = r.Comment
			existing.Guests = r.Guests
			existing.UpdatedAt = r.UpdatedAt
			r.ID = existing.ID
			r.CreatedAt = existing.CreatedAt
			return nil
		}
	}
	r.ID = fmt.Sprintf("rsvp-%d", f.nextID)
	f.nextID++
	clone := *r
	f.byID[r.ID] = &clone
	return nil
}

func (f *fakeRSVPRepo) GetByID(ctx context.Context, id string) (*domain.RSVP, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	for _, r := range f.byID {
		if r.EventID == eventID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVPWithUser, error) {
	var out []*domain.RSVPWithUser
	for _, r := range f.byID {
		if r.EventID == eventID {
			out = append(out, &domain.RSVPWithUser{RSVP: *r})
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID   map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:   make(map[string]*domain.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) add(username, email string) *domain.User {
	u := &domain.User{
		ID:       fmt.Sprintf("u-%d", f.nextID),
		Username: username,
		Email:    email,
	}
	f.nextID++
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("u-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// publishedMessage records one Broadcaster call.
type publishedMessage struct {
	Channel     string
	MessageType string
	Payload     any
}

// fakeBroadcaster records published messages for assertions.
type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (f *fakeBroadcaster) PublishEvent(eventID, messageType string, payload any) {
	f.record("event:"+eventID, messageType, payload)
}

func (f *fakeBroadcaster) PublishUser(userID, messageType string, payload any) {
	f.record("user:"+userID, messageType, payload)
}

func (f *fakeBroadcaster) record(channel, messageType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, publishedMessage{Channel: channel, MessageType: messageType, Payload: payload})
}

func (f *fakeBroadcaster) sent(channel, messageType string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.Channel == channel && m.MessageType == messageType {
			return true
		}
	}
	return false
}

// fakeEmailService records invitation emails.
type fakeEmailService struct {
	sent []*domain.InvitationEmailData
	err  error
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// fakeAssetStore records deleted asset refs.
type fakeAssetStore struct {
	deleted []string
	err     error
}

func (f *fakeAssetStore) Delete(ctx context.Context, ref string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, ref)
	return nil
}
