package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventmanager/internal/domain"
	"eventmanager/internal/repository/memory"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEmailService records every send and can be told to fail or block.
type fakeEmailService struct {
	mu            sync.Mutex
	activations   []*domain.ActivationEmailData
	resets        []*domain.PasswordResetEmailData
	confirmations []*domain.RSVPEmailData
	cancellations []*domain.RSVPEmailData
	err           error
	block         bool
}

func (f *fakeEmailService) SendActivation(ctx context.Context, data *domain.ActivationEmailData) error {
	f.mu.Lock()
	f.activations = append(f.activations, data)
	f.mu.Unlock()
	return f.err
}

func (f *fakeEmailService) SendPasswordReset(ctx context.Context, data *domain.PasswordResetEmailData) error {
	f.mu.Lock()
	f.resets = append(f.resets, data)
	f.mu.Unlock()
	return f.err
}

func (f *fakeEmailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPEmailData) error {
	f.mu.Lock()
	f.confirmations = append(f.confirmations, data)
	f.mu.Unlock()
	return f.result(ctx)
}

func (f *fakeEmailService) SendRSVPCancellation(ctx context.Context, data *domain.RSVPEmailData) error {
	f.mu.Lock()
	f.cancellations = append(f.cancellations, data)
	f.mu.Unlock()
	return f.result(ctx)
}

func (f *fakeEmailService) result(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeEmailService) sent() (confirmations, cancellations int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.confirmations), len(f.cancellations)
}

// failingParticipantRepo wraps a repository and fails Add/Remove.
type failingParticipantRepo struct {
	domain.ParticipantRepository
	err error
}

func (f *failingParticipantRepo) Add(ctx context.Context, eventID, userID string) (bool, error) {
	return false, f.err
}

func (f *failingParticipantRepo) Remove(ctx context.Context, eventID, userID string) (bool, error) {
	return false, f.err
}

var errBoom = errors.New("boom")

// fixture is a memory-backed world with one category, one event and three
// active users holding the built-in roles.
type fixture struct {
	store       *memory.Store
	category    *domain.Category
	event       *domain.Event
	participant *domain.User
	organizer   *domain.User
	admin       *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: memory.NewStore()}

	f.category = &domain.Category{Name: "Tech", CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, f.store.Categories().Create(ctx, f.category))
	f.event = domain.NewEvent("Go Meetup", "talks", "2025-06-10", "18:30", "Berlin", f.category.ID, testNow)
	require.NoError(t, f.store.Events().Create(ctx, f.event))

	f.participant = f.addUser(t, "pat", domain.RoleParticipant)
	f.organizer = f.addUser(t, "olga", domain.RoleOrganizer)
	f.admin = f.addUser(t, "ada", domain.RoleAdmin)
	return f
}

func (f *fixture) addUser(t *testing.T, username string, roles ...domain.Role) *domain.User {
	t.Helper()
	ctx := context.Background()
	u := domain.NewUser(username, username+"@example.com", username, "Tester", testNow)
	u.IsActive = true
	require.NoError(t, f.store.Users().Create(ctx, u))
	for _, r := range roles {
		g, err := f.store.Groups().GetByName(ctx, r)
		require.NoError(t, err)
		require.NoError(t, f.store.Groups().AddMember(ctx, u.ID, g.ID))
	}
	u.Roles = roles
	return u
}

func (f *fixture) caller(t *testing.T, u *domain.User) *domain.Caller {
	t.Helper()
	c, err := NewIdentityProvider(f.store.Users(), f.store.Groups()).Resolve(context.Background(), u.ID)
	require.NoError(t, err)
	return c
}
