package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

// Seeder writes the data a fresh deployment needs before anyone can sign in:
// an administrator and, optionally, a small sample catalogue.
type Seeder struct {
	userRepo     domain.UserRepository
	groupRepo    domain.GroupRepository
	categoryRepo domain.CategoryRepository
	eventRepo    domain.EventRepository
	hasher       domain.PasswordHasher
	logger       *slog.Logger
	now          func() time.Time
}

func NewSeeder(
	userRepo domain.UserRepository,
	groupRepo domain.GroupRepository,
	categoryRepo domain.CategoryRepository,
	eventRepo domain.EventRepository,
	hasher domain.PasswordHasher,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		userRepo:     userRepo,
		groupRepo:    groupRepo,
		categoryRepo: categoryRepo,
		eventRepo:    eventRepo,
		hasher:       hasher,
		logger:       logger,
		now:          time.Now,
	}
}

// EnsureAdmin makes sure an active account named username exists and belongs
// to the Admin group. An existing account keeps its password; only its
// membership and active flag are repaired. Running it twice is harmless.
func (s *Seeder) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if !usernameRegexp.MatchString(username) {
		return nil, fmt.Errorf("%w: invalid admin username", domain.ErrInvalidInput)
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid admin email", domain.ErrInvalidInput)
	}

	admins, err := s.groupRepo.GetByName(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("get %s group: %w", domain.RoleAdmin, err)
	}

	user, err := s.userRepo.GetByLogin(ctx, username)
	switch {
	case err == nil:
		if !user.IsActive {
			if err := s.userRepo.SetActive(ctx, user.ID, true); err != nil {
				return nil, fmt.Errorf("activate admin: %w", err)
			}
			user.IsActive = true
		}
		s.logger.Info("admin account exists", "username", user.Username)
	case errors.Is(err, domain.ErrUserNotFound):
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user = domain.NewUser(username, email, "", "", s.now().Truncate(time.Microsecond))
		user.PasswordHash = hash
		user.IsActive = true
		user.IsSuperuser = true
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
		s.logger.Info("admin account created", "username", user.Username, "user_id", user.ID)
	default:
		return nil, fmt.Errorf("get admin: %w", err)
	}

	if err := s.groupRepo.AddMember(ctx, user.ID, admins.ID); err != nil {
		return nil, fmt.Errorf("assign %s group: %w", domain.RoleAdmin, err)
	}
	if user.Roles, err = s.groupRepo.ListByUserID(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return user, nil
}

type sampleEvent struct {
	name, description, time, location string
	category                          int
	dayOffset                         int
}

var sampleCategories = []struct{ name, description string }{
	{"Technology", "Talks, meetups and hack nights."},
	{"Music", "Concerts, open mics and jam sessions."},
	{"Sports", "Runs, matches and training sessions."},
	{"Food", "Tastings, cook-alongs and market days."},
	{"Community", "Volunteering, clean-ups and neighbourhood meetings."},
}

var sampleEvents = []sampleEvent{
	{"Go Meetup", "Lightning talks on concurrency patterns.", "18:30", "Berlin", 0, -5},
	{"Jazz in the Park", "An evening of local jazz trios.", "19:00", "Lisbon", 1, -3},
	{"City 10K", "Annual charity run through the old town.", "08:00", "Vienna", 2, -1},
	{"Street Food Friday", "Food trucks from around the region.", "17:00", "Porto", 3, 0},
	{"Riverside Clean-up", "Bring gloves, we provide the bags.", "10:00", "Ghent", 4, 0},
	{"Cloud Native Night", "Operators, controllers and war stories.", "18:00", "Amsterdam", 0, 2},
	{"Open Mic", "Five minutes each, all genres welcome.", "20:00", "Dublin", 1, 4},
	{"Five-a-side Tournament", "Teams of five, sign up at the desk.", "14:00", "Madrid", 2, 6},
	{"Sourdough Workshop", "Starter, shaping and baking.", "11:00", "Copenhagen", 3, 8},
	{"Town Hall", "Quarterly neighbourhood meeting.", "19:30", "Utrecht", 4, 10},
}

// SeedSampleData fills an empty catalogue with five categories and ten events
// scheduled from five days ago to ten days ahead. It does nothing when any
// category exists, so restarts never duplicate the sample.
func (s *Seeder) SeedSampleData(ctx context.Context) error {
	n, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		s.logger.Debug("sample data skipped", "categories", n)
		return nil
	}

	now := s.now()
	categoryIDs := make([]string, 0, len(sampleCategories))
	for _, sc := range sampleCategories {
		c := &domain.Category{Name: sc.name, Description: sc.description, CreatedAt: now, UpdatedAt: now}
		if err := s.categoryRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("create category %q: %w", sc.name, err)
		}
		categoryIDs = append(categoryIDs, c.ID)
	}
	for _, se := range sampleEvents {
		date := now.AddDate(0, 0, se.dayOffset).Format(domain.DateLayout)
		e := domain.NewEvent(se.name, se.description, date, se.time, se.location, categoryIDs[se.category], now)
		if err := s.eventRepo.Create(ctx, e); err != nil {
			return fmt.Errorf("create event %q: %w", se.name, err)
		}
	}
	s.logger.Info("sample data seeded", "categories", len(categoryIDs), "events", len(sampleEvents))
	return nil
}
