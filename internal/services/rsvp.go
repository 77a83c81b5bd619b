package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventmanager/internal/access"
	"eventmanager/internal/domain"
)

type rsvpService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	userRepo        domain.UserRepository
	emailService    domain.EmailService
	notifyTimeout   time.Duration
	logger          *slog.Logger
}

// NewRSVPService creates the RSVP state machine. notifyTimeout bounds each
// notification attempt.
func NewRSVPService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	notifyTimeout time.Duration,
	logger *slog.Logger,
) domain.RSVPService {
	return &rsvpService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		notifyTimeout:   notifyTimeout,
		logger:          logger,
	}
}

func (s *rsvpService) Join(ctx context.Context, caller *domain.Caller, eventID string) (domain.RSVPOutcome, error) {
	event, err := s.authorize(ctx, caller, eventID)
	if err != nil {
		return 0, err
	}
	added, err := s.participantRepo.Add(ctx, event.ID, caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("add participant: %w", err)
	}
	if !added {
		s.logger.Warn("rsvp join was a no-op", "event_id", event.ID, "user_id", caller.UserID, "outcome", domain.RSVPAlreadyJoined.String())
		return domain.RSVPAlreadyJoined, nil
	}
	s.notify(ctx, caller, event, domain.RSVPJoined, s.emailService.SendRSVPConfirmation)
	return domain.RSVPJoined, nil
}

func (s *rsvpService) Cancel(ctx context.Context, caller *domain.Caller, eventID string) (domain.RSVPOutcome, error) {
	event, err := s.authorize(ctx, caller, eventID)
	if err != nil {
		return 0, err
	}
	removed, err := s.participantRepo.Remove(ctx, event.ID, caller.UserID)
	if err != nil {
		return 0, fmt.Errorf("remove participant: %w", err)
	}
	if !removed {
		s.logger.Warn("rsvp cancel was a no-op", "event_id", event.ID, "user_id", caller.UserID, "outcome", domain.RSVPNotJoined.String())
		return domain.RSVPNotJoined, nil
	}
	s.notify(ctx, caller, event, domain.RSVPCancelled, s.emailService.SendRSVPCancellation)
	return domain.RSVPCancelled, nil
}

func (s *rsvpService) Status(ctx context.Context, caller *domain.Caller, eventID string) (bool, error) {
	event, err := s.authorize(ctx, caller, eventID)
	if err != nil {
		return false, err
	}
	joined, err := s.participantRepo.IsParticipant(ctx, event.ID, caller.UserID)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return joined, nil
}

func (s *rsvpService) ListMyEvents(ctx context.Context, caller *domain.Caller) ([]*domain.Event, error) {
	if err := access.Evaluate(caller, access.LevelParticipant).Err(); err != nil {
		return nil, err
	}
	events, err := s.participantRepo.ListEventsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list events by user: %w", err)
	}
	return events, nil
}

// authorize checks the caller's level and loads the event.
func (s *rsvpService) authorize(ctx context.Context, caller *domain.Caller, eventID string) (*domain.Event, error) {
	if err := access.Evaluate(caller, access.LevelParticipant).Err(); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// notify makes one bounded delivery attempt. Faults are logged, never returned.
func (s *rsvpService) notify(
	ctx context.Context,
	caller *domain.Caller,
	event *domain.Event,
	outcome domain.RSVPOutcome,
	send func(context.Context, *domain.RSVPEmailData) error,
) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	data := &domain.RSVPEmailData{
		Email:     caller.Email,
		Name:      caller.Email,
		EventName: event.Name,
		Date:      event.Date,
		Time:      event.Time,
		Location:  event.Location,
	}
	if user, err := s.userRepo.GetByID(nctx, caller.UserID); err == nil {
		data.Email = user.Email
		data.Name = user.DisplayName()
	}
	if err := send(nctx, data); err != nil {
		s.logger.Warn("rsvp notification failed",
			"event_id", event.ID,
			"user_id", caller.UserID,
			"outcome", outcome.String(),
			"error", err,
		)
	}
}
