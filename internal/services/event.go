package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"eventplanner/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	access         *accessResolver
	assetStore     domain.AssetStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	collabRepo domain.CollaborationRepository,
	assetStore domain.AssetStore,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		access:         &accessResolver{collabRepo: collabRepo},
		assetStore:     assetStore,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return fmt.Errorf("event owner is required")
	}
	if err := validateEventFields(event.Title, event.Category, event.StartDate, event.EndDate, event.Description); err != nil {
		return err
	}

	event.Title = strings.TrimSpace(event.Title)
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	if event.InvitationLink == "" {
		link, err := generateInvitationLink()
		if err != nil {
			return fmt.Errorf("generate invitation link: %w", err)
		}
		event.InvitationLink = link
	}

	return s.eventRepo.Create(ctx, event)
}

func validateEventFields(title string, category domain.EventCategory, start, end time.Time, description string) error {
	if strings.TrimSpace(title) == "" {
		return domain.ErrInvalidInput
	}
	if utf8.RuneCountInString(title) > domain.MaxEventTitleLen {
		return domain.ErrInvalidInput
	}
	if utf8.RuneCountInString(description) > domain.MaxEventDescriptionLen {
		return domain.ErrInvalidInput
	}
	if !category.Valid() {
		return domain.ErrInvalidInput
	}
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return domain.ErrInvalidInput
	}
	return nil
}

const invitationLinkBytes = 12

func generateInvitationLink() (string, error) {
	b := make([]byte, invitationLinkBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "invite-" + hex.EncodeToString(b), nil
}

// GetEvent merges "does not exist" and "no access" into ErrNotFound so a
// private event's existence never leaks to strangers.
func (s *eventService) GetEvent(ctx context.Context, eventID, requesterID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.IsPublic {
		return event, nil
	}
	role, err := s.access.resolveRole(ctx, event, requesterID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleNone {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *eventService) GetEventByInviteLink(ctx context.Context, link string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByInvitationLink(ctx, link)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by invitation link: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEventsForUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	events, err := s.eventRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, requesterID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.access.requireAtLeast(ctx, event, requesterID, domain.RoleEditor); err != nil {
		return nil, err
	}
	if err := s.validatePatch(event, patch); err != nil {
		return nil, err
	}

	previousCover := event.CoverImage
	updated, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	// Replacing the cover image releases the previous asset. Best-effort: the
	// update has already committed.
	if patch.CoverImage != nil && previousCover != "" && previousCover != *patch.CoverImage {
		if err := s.assetStore.Delete(ctx, previousCover); err != nil {
			s.logger.Warn("delete replaced cover image", "event_id", eventID, "ref", previousCover, "err", err)
		}
	}
	return updated, nil
}

func (s *eventService) validatePatch(event *domain.Event, patch domain.EventPatch) error {
	title := event.Title
	if patch.Title != nil {
		title = *patch.Title
	}
	category := event.Category
	if patch.Category != nil {
		category = *patch.Category
	}
	start := event.StartDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	end := event.EndDate
	if patch.EndDate != nil {
		end = *patch.EndDate
	}
	description := event.Description
	if patch.Description != nil {
		description = *patch.Description
	}
	return validateEventFields(title, category, start, end, description)
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != requesterID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if event.CoverImage != "" {
		if err := s.assetStore.Delete(ctx, event.CoverImage); err != nil {
			s.logger.Warn("delete cover image", "event_id", eventID, "ref", event.CoverImage, "err", err)
		}
	}
	return nil
}
