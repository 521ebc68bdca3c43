package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"eventplanner/internal/domain"
)

type attendanceService struct {
	eventRepo      domain.EventRepository
	collabRepo     domain.CollaborationRepository
	invitationRepo domain.InvitationRepository
	rsvpRepo       domain.RSVPRepository
	userRepo       domain.UserRepository
	access         *accessResolver
	broadcaster    domain.Broadcaster
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewAttendanceService(eventRepo domain.EventRepository,
	collabRepo domain.CollaborationRepository,
	invitationRepo domain.InvitationRepository,
	rsvpRepo domain.RSVPRepository,
	userRepo domain.UserRepository,
	broadcaster domain.Broadcaster,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendanceService {
	return &attendanceService{
		eventRepo:      eventRepo,
		collabRepo:     collabRepo,
		invitationRepo: invitationRepo,
		rsvpRepo:       rsvpRepo,
		userRepo:       userRepo,
		access:         &accessResolver{collabRepo: collabRepo},
		broadcaster:    broadcaster,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// findInvitation looks up the user's invitation to the event, matching first
// by resolved user id and then by the account's email address.
func (s *attendanceService) findInvitation(ctx context.Context, eventID, userID string) (*domain.Invitation, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	inv, err := s.invitationRepo.GetByEventAndInvitee(ctx, eventID, userID, strings.ToLower(user.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *attendanceService) SubmitRSVP(ctx context.Context, eventID, userID string, status domain.RSVPStatus, comment string, guests int) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if utf8.RuneCountInString(comment) > domain.MaxRSVPCommentLen {
		return nil, domain.ErrInvalidInput
	}
	if guests < 1 {
		guests = 1
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Responding requires standing on the event: a personal invitation, the
	// owner, or a collaborator.
	inv, err := s.findInvitation(ctx, eventID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if inv == nil {
		role, rerr := s.access.resolveRole(ctx, event, userID)
		if rerr != nil {
			return nil, rerr
		}
		if role == domain.RoleNone {
			return nil, domain.ErrNotInvited
		}
	}

	now := time.Now()
	rsvp := &domain.RSVP{
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		Comment:   comment,
		Guests:    guests,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.rsvpRepo.Upsert(ctx, rsvp); err != nil {
		return nil, fmt.Errorf("upsert rsvp: %w", err)
	}

	s.reconcileInvitation(ctx, inv, status)
	s.broadcaster.PublishEvent(eventID, domain.MsgRSVPUpdated, rsvp)
	return rsvp, nil
}

// reconcileInvitation moves the invitation status to follow a definite answer.
// A "maybe" leaves the invitation as it stands.
func (s *attendanceService) reconcileInvitation(ctx context.Context, inv *domain.Invitation, status domain.RSVPStatus) {
	if inv == nil {
		return
	}
	var next domain.InvitationStatus
	switch status {
	case domain.RSVPYes:
		next = domain.InvitationAccepted
	case domain.RSVPNo:
		next = domain.InvitationDeclined
	default:
		return
	}
	if inv.Status == next {
		return
	}
	if _, err := s.invitationRepo.UpdateStatus(ctx, inv.ID, next); err != nil {
		s.logger.Warn("reconcile invitation status", "invitation_id", inv.ID, "err", err)
	}
}

func (s *attendanceService) ListRSVPs(ctx context.Context, eventID, requesterID string) ([]*domain.RSVPWithUser, domain.RSVPCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.RSVPCounts{}, domain.ErrNotFound
		}
		return nil, domain.RSVPCounts{}, fmt.Errorf("get event: %w", err)
	}
	if !event.IsPublic {
		if err := s.access.requireAtLeast(ctx, event, requesterID, domain.RoleViewer); err != nil {
			return nil, domain.RSVPCounts{}, err
		}
	}
	rows, err := s.rsvpRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, domain.RSVPCounts{}, fmt.Errorf("list rsvps: %w", err)
	}
	if rows == nil {
		rows = []*domain.RSVPWithUser{}
	}
	return rows, domain.CountRSVPs(rows), nil
}

func (s *attendanceService) GetMyRSVP(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rsvp, err := s.rsvpRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *attendanceService) DeleteRSVP(ctx context.Context, rsvpID, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rsvp, err := s.rsvpRepo.GetByID(ctx, rsvpID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get rsvp: %w", err)
	}
	if rsvp.UserID != requesterID {
		return domain.ErrForbidden
	}
	if err := s.rsvpRepo.Delete(ctx, rsvpID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete rsvp: %w", err)
	}
	s.broadcaster.PublishEvent(rsvp.EventID, domain.MsgRSVPDeleted, map[string]string{"id": rsvpID})
	return nil
}
