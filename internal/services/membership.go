package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"eventplanner/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex). Targets that
// don't look like an id are resolved as usernames.
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type membershipService struct {
	eventRepo      domain.EventRepository
	collabRepo     domain.CollaborationRepository
	invitationRepo domain.InvitationRepository
	userRepo       domain.UserRepository
	access         *accessResolver
	broadcaster    domain.Broadcaster
	emailService   domain.EmailService
	inviteLinkBase string
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewMembershipService(eventRepo domain.EventRepository,
	collabRepo domain.CollaborationRepository,
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	broadcaster domain.Broadcaster,
	emailService domain.EmailService,
	inviteLinkBase string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.MembershipService {
	return &membershipService{
		eventRepo:      eventRepo,
		collabRepo:     collabRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		access:         &accessResolver{collabRepo: collabRepo},
		broadcaster:    broadcaster,
		emailService:   emailService,
		inviteLinkBase: inviteLinkBase,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *membershipService) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// resolveTarget finds a user by id when the target looks like a UUID and by
// unique username otherwise.
func (s *membershipService) resolveTarget(ctx context.Context, target string) (*domain.User, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, domain.ErrInvalidInput
	}
	var user *domain.User
	var err error
	if uuidRegex.MatchString(target) {
		user, err = s.userRepo.GetByID(ctx, target)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, target)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve target user: %w", err)
	}
	return user, nil
}

func (s *membershipService) AddCollaborator(ctx context.Context, eventID, requesterID, target string, role domain.Role) (*domain.CollaborationWithUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !role.Grantable() {
		return nil, domain.ErrInvalidInput
	}
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != requesterID {
		return nil, domain.ErrForbidden
	}
	user, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if user.ID == event.OwnerID {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	collab := &domain.Collaboration{
		EventID:   eventID,
		UserID:    user.ID,
		Role:      role,
		InvitedBy: requesterID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.collabRepo.Create(ctx, collab); err != nil {
		if errors.Is(err, domain.ErrAlreadyCollaborator) {
			return nil, domain.ErrAlreadyCollaborator
		}
		return nil, fmt.Errorf("create collaboration: %w", err)
	}

	result := &domain.CollaborationWithUser{
		Collaboration: *collab,
		Username:      user.Username,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
	}
	s.broadcaster.PublishUser(user.ID, domain.MsgCollaborationAdded, result)
	s.broadcaster.PublishEvent(eventID, domain.MsgCollaborationUpdated, result)
	return result, nil
}

func (s *membershipService) UpdateCollaboratorRole(ctx context.Context, collabID, requesterID string, role domain.Role) (*domain.Collaboration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !role.Grantable() {
		return nil, domain.ErrInvalidInput
	}
	collab, err := s.collabRepo.GetByID(ctx, collabID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get collaboration: %w", err)
	}
	event, err := s.getEvent(ctx, collab.EventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != requesterID {
		return nil, domain.ErrForbidden
	}
	if collab.UserID == event.OwnerID {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.collabRepo.UpdateRole(ctx, collabID, role)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update collaboration role: %w", err)
	}
	s.broadcaster.PublishEvent(collab.EventID, domain.MsgCollaborationUpdated, updated)
	return updated, nil
}

func (s *membershipService) RemoveCollaborator(ctx context.Context, collabID, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	collab, err := s.collabRepo.GetByID(ctx, collabID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get collaboration: %w", err)
	}
	event, err := s.getEvent(ctx, collab.EventID)
	if err != nil {
		return err
	}
	// Owner may remove anyone; a member may remove themselves. The owner's own
	// row only goes away with the event.
	if event.OwnerID != requesterID && collab.UserID != requesterID {
		return domain.ErrForbidden
	}
	if collab.UserID == event.OwnerID {
		return domain.ErrInvalidInput
	}
	if err := s.collabRepo.Delete(ctx, collabID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete collaboration: %w", err)
	}
	s.broadcaster.PublishEvent(collab.EventID, domain.MsgCollaborationRemoved, map[string]string{"id": collabID})
	return nil
}

func (s *membershipService) ListCollaborators(ctx context.Context, eventID, requesterID string) ([]*domain.CollaborationWithUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireAtLeast(ctx, event, requesterID, domain.RoleEditor); err != nil {
		return nil, err
	}
	members, err := s.collabRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list collaborations: %w", err)
	}
	if members == nil {
		members = []*domain.CollaborationWithUser{}
	}
	return members, nil
}

const invitationTokenBytes = 12

func generateInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "token-" + hex.EncodeToString(b), nil
}

func (s *membershipService) CreateInvitation(ctx context.Context, eventID, requesterID, inviteeEmail, inviteeUsername string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inviteeEmail = strings.ToLower(strings.TrimSpace(inviteeEmail))
	inviteeUsername = strings.TrimSpace(inviteeUsername)
	if inviteeEmail == "" && inviteeUsername == "" {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireAtLeast(ctx, event, requesterID, domain.RoleEditor); err != nil {
		return nil, err
	}

	// A username must resolve to an account; an email is matched best-effort
	// so guests without an account can still be invited.
	var invitee *domain.User
	if inviteeUsername != "" {
		invitee, err = s.userRepo.GetByUsername(ctx, inviteeUsername)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrUserNotFound
			}
			return nil, fmt.Errorf("get user by username: %w", err)
		}
	} else {
		invitee, err = s.userRepo.GetByEmail(ctx, inviteeEmail)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("get user by email: %w", err)
		}
	}

	inviteeUserID := ""
	if invitee != nil {
		inviteeUserID = invitee.ID
	}
	if existing, err := s.invitationRepo.GetByEventAndInvitee(ctx, eventID, inviteeUserID, inviteeEmail); err == nil && existing != nil {
		return nil, domain.ErrDuplicateInvitation
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing invitation: %w", err)
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}
	now := time.Now()
	inv := &domain.Invitation{
		EventID:         eventID,
		InvitedBy:       requesterID,
		InviteeEmail:    inviteeEmail,
		InviteeUsername: inviteeUsername,
		InviteeUserID:   inviteeUserID,
		Status:          domain.InvitationPending,
		Token:           token,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	if inv.InviteeUserID != "" {
		s.broadcaster.PublishUser(inv.InviteeUserID, domain.MsgNewInvitation, inv)
	}
	s.sendInvitationEmail(ctx, event, inv, requesterID)
	return inv, nil
}

// sendInvitationEmail notifies the invitee by mail when an address is known.
// A send failure never fails the invitation.
func (s *membershipService) sendInvitationEmail(ctx context.Context, event *domain.Event, inv *domain.Invitation, requesterID string) {
	if s.emailService == nil || inv.InviteeEmail == "" {
		return
	}
	inviterName := "An event organizer"
	if inviter, err := s.userRepo.GetByID(ctx, requesterID); err == nil {
		name := strings.TrimSpace(inviter.FirstName + " " + inviter.LastName)
		if name == "" {
			name = inviter.Username
		}
		if name != "" {
			inviterName = name
		}
	}
	data := &domain.InvitationEmailData{
		Email:       inv.InviteeEmail,
		InviterName: inviterName,
		EventTitle:  event.Title,
		InviteLink:  strings.TrimRight(s.inviteLinkBase, "/") + "/" + event.InvitationLink,
	}
	if err := s.emailService.SendInvitation(ctx, data); err != nil {
		s.logger.Warn("send invitation email", "event_id", event.ID, "email", inv.InviteeEmail, "err", err)
	}
}

func (s *membershipService) UpdateInvitationStatus(ctx context.Context, invitationID, requesterID string, status domain.InvitationStatus) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	// Only the invitee may answer: matched by resolved user id, or by email
	// when the invitation was never resolved to an account.
	if inv.InviteeUserID != "" {
		if inv.InviteeUserID != requesterID {
			return nil, domain.ErrForbidden
		}
	} else {
		requester, err := s.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			return nil, fmt.Errorf("get requester: %w", err)
		}
		if inv.InviteeEmail == "" || !strings.EqualFold(inv.InviteeEmail, requester.Email) {
			return nil, domain.ErrForbidden
		}
	}

	updated, err := s.invitationRepo.UpdateStatus(ctx, invitationID, status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update invitation status: %w", err)
	}
	s.broadcaster.PublishEvent(inv.EventID, domain.MsgInvitationUpdated, updated)
	return updated, nil
}

func (s *membershipService) DeleteInvitation(ctx context.Context, invitationID, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}
	event, err := s.getEvent(ctx, inv.EventID)
	if err != nil {
		return err
	}
	if err := s.access.requireAtLeast(ctx, event, requesterID, domain.RoleEditor); err != nil {
		return err
	}
	if err := s.invitationRepo.Delete(ctx, invitationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

func (s *membershipService) ListInvitations(ctx context.Context, eventID, requesterID string) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireAtLeast(ctx, event, requesterID, domain.RoleEditor); err != nil {
		return nil, err
	}
	invitations, err := s.invitationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if invitations == nil {
		invitations = []*domain.Invitation{}
	}
	return invitations, nil
}
