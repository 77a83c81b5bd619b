package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

type userService struct {
	userRepo  domain.UserRepository
	groupRepo domain.GroupRepository
	now       func() time.Time
}

// NewUserService creates a UserService with the given repositories.
func NewUserService(userRepo domain.UserRepository, groupRepo domain.GroupRepository) domain.UserService {
	return &userService{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		now:       time.Now,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Roles, err = s.groupRepo.ListByUserID(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, upd *domain.UserProfileUpdate) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd == nil {
		return user, nil
	}
	if upd.FirstName != nil {
		user.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		user.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if !emailRegexp.MatchString(email) {
			return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
		}
		user.Email = email
	}
	if upd.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*upd.PhoneNumber)
	}
	if upd.Bio != nil {
		user.Bio = strings.TrimSpace(*upd.Bio)
	}
	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// SetRoles replaces the user's group memberships with the named groups.
func (s *userService) SetRoles(ctx context.Context, userID string, roles []domain.Role) (*domain.User, error) {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(roles))
	seen := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		if seen[r] {
			continue
		}
		seen[r] = true
		g, err := s.groupRepo.GetByName(ctx, r)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown group %q", domain.ErrInvalidInput, r)
			}
			return nil, fmt.Errorf("failed to get group: %w", err)
		}
		ids = append(ids, g.ID)
	}
	if err := s.groupRepo.ReplaceMembership(ctx, userID, ids); err != nil {
		return nil, fmt.Errorf("failed to replace groups: %w", err)
	}
	return s.GetByID(ctx, userID)
}

func (s *userService) SetActive(ctx context.Context, userID string, active bool) (*domain.User, error) {
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to set active: %w", err)
	}
	return s.GetByID(ctx, userID)
}
