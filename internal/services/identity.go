package services

import (
	"context"
	"errors"
	"fmt"

	"eventmanager/internal/domain"
)

type identityProvider struct {
	userRepo  domain.UserRepository
	groupRepo domain.GroupRepository
}

// NewIdentityProvider resolves callers from the stored user and its current
// group memberships, so role changes apply on the next request.
func NewIdentityProvider(userRepo domain.UserRepository, groupRepo domain.GroupRepository) domain.IdentityProvider {
	return &identityProvider{userRepo: userRepo, groupRepo: groupRepo}
}

func (p *identityProvider) Resolve(ctx context.Context, userID string) (*domain.Caller, error) {
	user, err := p.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Anonymous(), nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return domain.Anonymous(), nil
	}
	roles, err := p.groupRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return &domain.Caller{
		UserID:        user.ID,
		Email:         user.Email,
		Authenticated: true,
		Superuser:     user.IsSuperuser,
		Roles:         domain.NewRoleSet(roles...),
	}, nil
}
