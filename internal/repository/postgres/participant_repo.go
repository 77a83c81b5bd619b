package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"eventmanager/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

// Add inserts the pair unless it exists. The primary key makes the check and
// the insert a single atomic step.
func (r *participantRepository) Add(ctx context.Context, eventID, userID string) (bool, error) {
	query := `INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation || isMissing(err) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *participantRepository) Remove(ctx context.Context, eventID, userID string) (bool, error) {
	query := `DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *participantRepository) IsParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2)`
	var ok bool
	if err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&ok); err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func (r *participantRepository) ListEventsByUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := eventSelect + `
		INNER JOIN event_participants ep ON ep.event_id = e.id
		WHERE ep.user_id = $1
		ORDER BY e.event_date, e.event_time
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *participantRepository) ListUsersByEvent(ctx context.Context, eventID string) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		INNER JOIN event_participants ep ON ep.user_id = u.id
		WHERE ep.event_id = $1
		ORDER BY ep.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *participantRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_participants`).Scan(&n)
	return n, err
}
