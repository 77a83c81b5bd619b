package services

import (
	"context"
	"fmt"
	"time"

	"eventmanager/internal/domain"
)

type dashboardService struct {
	eventRepo    domain.EventRepository
	userRepo     domain.UserRepository
	categoryRepo domain.CategoryRepository
	groupRepo    domain.GroupRepository
	now          func() time.Time
}

func NewDashboardService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	categoryRepo domain.CategoryRepository,
	groupRepo domain.GroupRepository,
) domain.DashboardService {
	return &dashboardService{
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		groupRepo:    groupRepo,
		now:          time.Now,
	}
}

// Organizer returns the counters and the events in scope. Unknown scopes
// fall back to today.
func (s *dashboardService) Organizer(ctx context.Context, scope string) (*domain.OrganizerDashboard, error) {
	switch scope {
	case domain.ScopeUpcoming, domain.ScopePast, domain.ScopeAll:
	default:
		scope = domain.ScopeToday
	}
	today := s.now().Format(domain.DateLayout)
	stats, err := s.eventRepo.Stats(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	events, err := s.eventRepo.ListByDay(ctx, scope, today)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return &domain.OrganizerDashboard{EventStats: *stats, Scope: scope, Today: today, Events: events}, nil
}

func (s *dashboardService) Admin(ctx context.Context) (*domain.AdminDashboard, error) {
	stats, err := s.eventRepo.Stats(ctx, s.now().Format(domain.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	categories, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return &domain.AdminDashboard{
		EventStats:      *stats,
		TotalUsers:      users,
		TotalCategories: categories,
		Groups:          groups,
	}, nil
}
