package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

type eventService struct {
	eventRepo       domain.EventRepository
	categoryRepo    domain.CategoryRepository
	participantRepo domain.ParticipantRepository
	now             func() time.Time
}

// NewEventService creates an EventService. Organizer CRUD never touches the
// participant set; participants are only read here.
func NewEventService(
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	participantRepo domain.ParticipantRepository,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		categoryRepo:    categoryRepo,
		participantRepo: participantRepo,
		now:             time.Now,
	}
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	for _, d := range []string{filter.Start, filter.End} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, d); err != nil {
			return nil, 0, fmt.Errorf("%w: dates must use YYYY-MM-DD", domain.ErrInvalidInput)
		}
	}
	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) Create(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return fmt.Errorf("%w: missing event", domain.ErrInvalidInput)
	}
	if err := s.normalize(ctx, event); err != nil {
		return err
	}
	now := s.now()
	event.CreatedAt, event.UpdatedAt = now, now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) Update(ctx context.Context, id string, upd *domain.EventUpdate) (*domain.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd == nil {
		return event, nil
	}
	setIf(&event.Name, upd.Name)
	setIf(&event.Description, upd.Description)
	setIf(&event.Date, upd.Date)
	setIf(&event.Time, upd.Time)
	setIf(&event.Location, upd.Location)
	setIf(&event.CategoryID, upd.CategoryID)
	if err := s.normalize(ctx, event); err != nil {
		return nil, err
	}
	event.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) Participants(ctx context.Context, id string) ([]*domain.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	users, err := s.participantRepo.ListUsersByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return users, nil
}

// normalize trims fields, checks required ones and the date/time layouts, and
// confirms the category exists.
func (s *eventService) normalize(ctx context.Context, e *domain.Event) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Description = strings.TrimSpace(e.Description)
	e.Location = strings.TrimSpace(e.Location)
	e.Date = strings.TrimSpace(e.Date)
	e.Time = strings.TrimSpace(e.Time)
	switch {
	case e.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case e.Location == "":
		return fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	case e.CategoryID == "":
		return fmt.Errorf("%w: category_id is required", domain.ErrInvalidInput)
	}
	if _, err := time.Parse(domain.DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: date must use YYYY-MM-DD", domain.ErrInvalidInput)
	}
	t, err := time.Parse(domain.TimeLayout, e.Time)
	if err != nil {
		// HH:MM:SS is accepted and truncated to minutes.
		if t, err = time.Parse("15:04:05", e.Time); err != nil {
			return fmt.Errorf("%w: time must use HH:MM", domain.ErrInvalidInput)
		}
	}
	e.Time = t.Format(domain.TimeLayout)
	if _, err := s.categoryRepo.GetByID(ctx, e.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: category does not exist", domain.ErrInvalidInput)
		}
		return fmt.Errorf("get category: %w", err)
	}
	return nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
