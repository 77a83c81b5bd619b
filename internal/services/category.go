package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

type categoryService struct {
	categoryRepo domain.CategoryRepository
	now          func() time.Time
}

func NewCategoryService(categoryRepo domain.CategoryRepository) domain.CategoryService {
	return &categoryService{categoryRepo: categoryRepo, now: time.Now}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *categoryService) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	now := s.now()
	c := &domain.Category{Name: name, Description: strings.TrimSpace(description), CreatedAt: now, UpdatedAt: now}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *categoryService) Update(ctx context.Context, id string, name, description *string) (*domain.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		c.Name = n
	}
	if description != nil {
		c.Description = strings.TrimSpace(*description)
	}
	c.UpdatedAt = s.now()
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes the category and, with it, its events and their RSVPs.
func (s *categoryService) Delete(ctx context.Context, id string) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
