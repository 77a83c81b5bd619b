package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"eventmanager/internal/domain"
)

const userColumns = `u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
		u.is_active, u.is_superuser, u.phone_number, u.bio, u.last_login, u.created_at, u.updated_at`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, extra ...any) (*domain.User, error) {
	u := &domain.User{}
	var lastLogin sql.NullTime
	dest := []any{
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsActive, &u.IsSuperuser, &u.PhoneNumber, &u.Bio, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_active, is_superuser, phone_number, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsActive, u.IsSuperuser,
		u.PhoneNumber, u.Bio, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		return mapUserConflict(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.username = $1 OR lower(u.email) = lower($1) LIMIT 1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, strings.TrimSpace(login)))
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, phone_number = $4, bio = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.DB.ExecContext(ctx, query, u.FirstName, u.LastName, u.Email, u.PhoneNumber, u.Bio, u.UpdatedAt, u.ID)
	if err != nil {
		return mapUserConflict(err)
	}
	return requireAffected(result, domain.ErrUserNotFound)
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, active, id)
	if err != nil {
		if isMissing(err) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return requireAffected(result, domain.ErrUserNotFound)
}

func (r *userRepository) SetPassword(ctx context.Context, id, hash string, at time.Time) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
	result, err := r.DB.ExecContext(ctx, query, hash, at, id)
	if err != nil {
		if isMissing(err) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return requireAffected(result, domain.ErrUserNotFound)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	return requireAffected(result, domain.ErrUserNotFound)
}

// List returns one page of users with their group names, plus the total count.
func (r *userRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	query := `
		SELECT ` + userColumns + `,
			COALESCE(array_agg(g.name ORDER BY g.name) FILTER (WHERE g.name IS NOT NULL), '{}') AS groups,
			COUNT(*) OVER () AS total
		FROM users u
		LEFT JOIN user_groups ug ON ug.user_id = u.id
		LEFT JOIN groups g ON g.id = ug.group_id
		GROUP BY u.id
		ORDER BY u.username
		LIMIT $1 OFFSET $2
	`
	limit := sql.NullInt64{Int64: int64(params.PageSize), Valid: params.PageSize > 0}
	rows, err := r.DB.QueryContext(ctx, query, limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	total := 0
	for rows.Next() {
		var groups []string
		u, err := scanUser(rows, pq.Array(&groups), &total)
		if err != nil {
			return nil, 0, err
		}
		u.Roles = make([]domain.Role, len(groups))
		for i, g := range groups {
			u.Roles[i] = domain.Role(g)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(users) == 0 && params.Offset() > 0 {
		if total, err = r.Count(ctx); err != nil {
			return nil, 0, err
		}
	}
	return users, total, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func mapUserConflict(err error) error {
	if pqCode(err) != codeUniqueViolation {
		return err
	}
	if strings.Contains(pqConstraint(err), "username") {
		return domain.ErrDuplicateUsername
	}
	return domain.ErrDuplicateEmail
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
