package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"eventmanager/internal/domain"
)

const eventSelect = `
	SELECT e.id, e.name, e.description,
		to_char(e.event_date, 'YYYY-MM-DD'), to_char(e.event_time, 'HH24:MI'),
		e.location, e.category_id, c.name,
		(SELECT COUNT(*) FROM event_participants p WHERE p.event_id = e.id),
		e.created_at, e.updated_at
	FROM events e
	INNER JOIN categories c ON c.id = e.category_id
`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.Time,
		&e.Location, &e.CategoryID, &e.CategoryName, &e.ParticipantCount,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, event_date, event_time, location, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.Date, e.Time, e.Location, e.CategoryID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return mapEventWriteError(err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, eventSelect+`WHERE e.id = $1`, id))
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, event_date = $3, event_time = $4, location = $5, category_id = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Name, e.Description, e.Date, e.Time, e.Location, e.CategoryID, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return mapEventWriteError(err)
	}
	return requireAffected(result, domain.ErrNotFound)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if isMissing(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return requireAffected(result, domain.ErrNotFound)
}

// List applies the filter and returns one page plus the total number of matches.
func (r *eventRepository) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, int, error) {
	var where []string
	var args []any
	n := 1
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, fmt.Sprintf("(e.name ILIKE $%d OR e.location ILIKE $%d)", n, n))
		args = append(args, "%"+escapeLike(s)+"%")
		n++
	}
	if f.HasDateRange() {
		where = append(where, fmt.Sprintf("e.event_date BETWEEN $%d AND $%d", n, n+1))
		args = append(args, f.Start, f.End)
		n += 2
	}
	if f.CategoryID != "" {
		where = append(where, fmt.Sprintf("e.category_id = $%d", n))
		args = append(args, f.CategoryID)
		n++
	}
	cond := ""
	if len(where) > 0 {
		cond = "WHERE " + strings.Join(where, " AND ") + "\n"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM events e ` + cond
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		if isMissing(err) {
			return []*domain.Event{}, 0, nil
		}
		return nil, 0, err
	}

	query := eventSelect + cond + "ORDER BY e.event_date, e.event_time, e.name\n"
	if f.Pagination.PageSize > 0 {
		query += fmt.Sprintf("LIMIT $%d OFFSET $%d", n, n+1)
		args = append(args, f.Pagination.PageSize, f.Pagination.Offset())
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListByDay lists events relative to today. Unknown scopes behave like "today".
func (r *eventRepository) ListByDay(ctx context.Context, scope, today string) ([]*domain.Event, error) {
	var query string
	args := []any{today}
	switch scope {
	case domain.ScopeUpcoming:
		query = eventSelect + `WHERE e.event_date > $1 ORDER BY e.event_date, e.event_time`
	case domain.ScopePast:
		query = eventSelect + `WHERE e.event_date < $1 ORDER BY e.event_date DESC, e.event_time DESC`
	case domain.ScopeAll:
		query = eventSelect + `ORDER BY e.event_date, e.event_time`
		args = nil
	default:
		query = eventSelect + `WHERE e.event_date = $1 ORDER BY e.event_time`
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) Stats(ctx context.Context, today string) (*domain.EventStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM events WHERE event_date > $1),
			(SELECT COUNT(*) FROM events WHERE event_date < $1),
			(SELECT COUNT(*) FROM event_participants)
	`
	s := &domain.EventStats{}
	err := r.DB.QueryRowContext(ctx, query, today).Scan(&s.TotalEvents, &s.UpcomingEvents, &s.PastEvents, &s.TotalParticipants)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func mapEventWriteError(err error) error {
	switch pqCode(err) {
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: category does not exist", domain.ErrInvalidInput)
	case codeInvalidText:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
