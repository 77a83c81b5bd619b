package postgres

import (
	"context"
	"database/sql"

	"eventmanager/internal/domain"
)

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{DB: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, c.Name, c.Description, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM categories WHERE id = $1`
	c := &domain.Category{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *categoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $1, description = $2, updated_at = $3 WHERE id = $4`
	result, err := r.DB.ExecContext(ctx, query, c.Name, c.Description, c.UpdatedAt, c.ID)
	if err != nil {
		if isMissing(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return requireAffected(result, domain.ErrNotFound)
}

// Delete removes the category's events and then the category in one
// transaction. Participant rows go with their events through the foreign key.
func (r *categoryRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM events WHERE category_id = $1`, id); err != nil {
		if isMissing(err) {
			err = domain.ErrNotFound
		}
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err = requireAffected(result, domain.ErrNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}
