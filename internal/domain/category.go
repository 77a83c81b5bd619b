package domain

import (
	"context"
	"time"
)

// Category groups events. Deleting a category deletes its events.
// swagger:model Category
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRepository defines the interface for category storage.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	Update(ctx context.Context, c *Category) error
	// Delete removes the category together with its events and their participant edges.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Category, error)
	Count(ctx context.Context) (int, error)
}

// CategoryService defines category management operations.
type CategoryService interface {
	List(ctx context.Context) ([]*Category, error)
	Get(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, name, description string) (*Category, error)
	Update(ctx context.Context, id string, name, description *string) (*Category, error)
	Delete(ctx context.Context, id string) error
}
