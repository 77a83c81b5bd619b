package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventmanager/internal/domain"
)

var userCols = []string{
	"id", "username", "email", "first_name", "last_name", "password_hash",
	"is_active", "is_superuser", "phone_number", "bio", "last_login", "created_at", "updated_at",
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mock   func(mock sqlmock.Sqlmock)
		wantID string
		errIs  error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "alice@example.com", "Alice", "Smith", "hash", false, false, "", "", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-1"))
			},
			wantID: "user-1",
		},
		{
			name: "duplicate username",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: codeUniqueViolation, Constraint: "users_username_key"})
			},
			errIs: domain.ErrDuplicateUsername,
		},
		{
			name: "duplicate email",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: codeUniqueViolation, Constraint: "users_email_key"})
			},
			errIs: domain.ErrDuplicateEmail,
		},
		{
			name: "db error passes through",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).WillReturnError(sql.ErrConnDone)
			},
			errIs: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			u := domain.NewUser("alice", "alice@example.com", "Alice", "Smith", now)
			u.PasswordHash = "hash"
			err = NewUserRepository(db).Create(ctx, u)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, u.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByLogin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("found with last login", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users u WHERE u.username = \$1 OR lower\(u.email\) = lower\(\$1\)`).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("user-1", "alice", "alice@example.com", "Alice", "Smith", "hash", true, false, "", "", now, now, now))

		u, err := NewUserRepository(db).GetByLogin(ctx, "  alice@example.com ")
		require.NoError(t, err)
		require.Equal(t, "user-1", u.ID)
		require.True(t, u.IsActive)
		require.NotNil(t, u.LastLogin)
		require.True(t, now.Equal(*u.LastLogin))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users u`).WillReturnError(sql.ErrNoRows)

		_, err = NewUserRepository(db).GetByLogin(ctx, "nobody")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_GetByID_MalformedID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM users u WHERE u.id = \$1`).
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: codeInvalidText})

	_, err = NewUserRepository(db).GetByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WithArgs("Alice", "Smith", "alice@example.com", "555", "hi", updated, "user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "zero rows affected",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			errIs: domain.ErrUserNotFound,
		},
		{
			name: "email taken",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WillReturnError(&pq.Error{Code: codeUniqueViolation, Constraint: "users_email_key"})
			},
			errIs: domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			u := &domain.User{
				ID: "user-1", FirstName: "Alice", LastName: "Smith", Email: "alice@example.com",
				PhoneNumber: "555", Bio: "hi", UpdatedAt: updated,
			}
			err = NewUserRepository(db).Update(ctx, u)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_SetActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET is_active = \$1`).
		WithArgs(true, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET is_active = \$1`).
		WithArgs(false, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepository(db)
	require.NoError(t, repo.SetActive(context.Background(), "user-1", true))
	require.ErrorIs(t, repo.SetActive(context.Background(), "ghost", false), domain.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE users SET password_hash = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("new-hash", at, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs("new-hash", at, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepository(db)
	require.NoError(t, repo.SetPassword(context.Background(), "user-1", "new-hash", at))
	require.ErrorIs(t, repo.SetPassword(context.Background(), "ghost", "new-hash", at), domain.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cols := append(append([]string{}, userCols...), "groups", "total")
	mock.ExpectQuery(`array_agg\(g.name`).
		WithArgs(int64(2), int64(2)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("user-3", "carol", "c@example.com", "", "", "h", true, false, "", "", nil, now, now, "{Organizer,Participant}", 5).
			AddRow("user-4", "dave", "d@example.com", "", "", "h", false, false, "", "", nil, now, now, "{}", 5))

	users, total, err := NewUserRepository(db).List(context.Background(), domain.PaginationParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, users, 2)
	require.Equal(t, []domain.Role{domain.RoleOrganizer, domain.RoleParticipant}, users[0].Roles)
	require.Empty(t, users[1].Roles)
	require.Nil(t, users[1].LastLogin)
	require.NoError(t, mock.ExpectationsWereMet())
}
