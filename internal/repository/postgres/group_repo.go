package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"eventmanager/internal/domain"
)

type groupRepository struct {
	DB *sql.DB
}

func NewGroupRepository(db *sql.DB) domain.GroupRepository {
	return &groupRepository{DB: db}
}

func (r *groupRepository) List(ctx context.Context) ([]*domain.Group, error) {
	query := `SELECT id, name, protected, created_at FROM groups ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*domain.Group, 0)
	for rows.Next() {
		g := &domain.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Protected, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupRepository) GetByName(ctx context.Context, name domain.Role) (*domain.Group, error) {
	query := `SELECT id, name, protected, created_at FROM groups WHERE name = $1`
	g := &domain.Group{}
	err := r.DB.QueryRowContext(ctx, query, name).Scan(&g.ID, &g.Name, &g.Protected, &g.CreatedAt)
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *groupRepository) Create(ctx context.Context, g *domain.Group) error {
	query := `
		INSERT INTO groups (name, protected, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, g.Name, g.Protected, g.CreatedAt).Scan(&g.ID)
	if pqCode(err) == codeUniqueViolation {
		return domain.ErrDuplicateGroup
	}
	return err
}

// Delete refuses protected groups in the statement itself, then tells a
// protected group apart from an unknown id.
func (r *groupRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM groups WHERE id = $1 AND NOT protected`, id)
	if err != nil {
		if isMissing(err) {
			return domain.ErrNotFound
		}
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrProtectedGroup
	}
	return domain.ErrNotFound
}

func (r *groupRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Role, error) {
	query := `
		SELECT g.name
		FROM groups g
		INNER JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = $1
		ORDER BY g.name
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		if isMissing(err) {
			return []domain.Role{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var name domain.Role
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

func (r *groupRepository) AddMember(ctx context.Context, userID, groupID string) error {
	query := `INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.DB.ExecContext(ctx, query, userID, groupID)
	if pqCode(err) == codeForeignKeyViolation {
		return domain.ErrNotFound
	}
	return err
}

func (r *groupRepository) ReplaceMembership(ctx context.Context, userID string, groupIDs []string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM user_groups WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if len(groupIDs) > 0 {
		query := `
			INSERT INTO user_groups (user_id, group_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`
		if _, err = tx.ExecContext(ctx, query, userID, pq.Array(groupIDs)); err != nil {
			if pqCode(err) == codeForeignKeyViolation {
				err = domain.ErrNotFound
			}
			return err
		}
	}
	return tx.Commit()
}
