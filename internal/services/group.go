package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

type groupService struct {
	groupRepo domain.GroupRepository
	now       func() time.Time
}

func NewGroupService(groupRepo domain.GroupRepository) domain.GroupService {
	return &groupService{groupRepo: groupRepo, now: time.Now}
}

func (s *groupService) List(ctx context.Context) ([]*domain.Group, error) {
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Create adds a custom group. Custom groups grant no capability level.
func (s *groupService) Create(ctx context.Context, name string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 150 {
		return nil, fmt.Errorf("%w: name must be 1-150 characters", domain.ErrInvalidInput)
	}
	g := &domain.Group{Name: domain.Role(name), CreatedAt: s.now()}
	if err := s.groupRepo.Create(ctx, g); err != nil {
		if errors.Is(err, domain.ErrDuplicateGroup) {
			return nil, err
		}
		return nil, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

func (s *groupService) Delete(ctx context.Context, id string) error {
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProtectedGroup) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}
