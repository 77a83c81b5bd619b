package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmanager/internal/domain"
)

func newTestTokens(now time.Time) *stateTokens {
	a := NewActivationTokens("activation-secret", 72*time.Hour).(*stateTokens)
	a.now = func() time.Time { return now }
	return a
}

func inactiveUser() *domain.User {
	return &domain.User{ID: "0b7c5d0e-1111-4222-8333-444455556666", PasswordHash: "$2a$10$hash", IsActive: false}
}

func TestActivationTokens_roundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := newTestTokens(now)
	u := inactiveUser()

	token, err := a.Make(u)
	require.NoError(t, err)
	assert.Contains(t, token, "-")
	assert.True(t, a.Check(u, token))
}

func TestActivationTokens_invalidatedByActivation(t *testing.T) {
	a := newTestTokens(time.Now())
	u := inactiveUser()
	token, err := a.Make(u)
	require.NoError(t, err)

	u.IsActive = true
	assert.False(t, a.Check(u, token), "token must not survive activation")
}

func TestActivationTokens_invalidatedByLogin(t *testing.T) {
	a := newTestTokens(time.Now())
	u := inactiveUser()
	token, err := a.Make(u)
	require.NoError(t, err)

	at := time.Now()
	u.LastLogin = &at
	assert.False(t, a.Check(u, token))
}

func TestActivationTokens_invalidatedByAccountUpdate(t *testing.T) {
	a := newTestTokens(time.Now())
	u := inactiveUser()
	u.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := a.Make(u)
	require.NoError(t, err)

	// Activate then deactivate: the active flag is back where it started,
	// only updated_at tells the two states apart.
	u.UpdatedAt = u.UpdatedAt.Add(time.Microsecond)
	assert.False(t, a.Check(u, token), "token must not survive a write to the account")
}

func TestPasswordResetTokens_notInterchangeableWithActivation(t *testing.T) {
	now := time.Now()
	activation := newTestTokens(now)
	reset := NewPasswordResetTokens("activation-secret", 72*time.Hour).(*stateTokens)
	reset.now = func() time.Time { return now }
	u := inactiveUser()

	activationToken, err := activation.Make(u)
	require.NoError(t, err)
	resetToken, err := reset.Make(u)
	require.NoError(t, err)

	assert.True(t, reset.Check(u, resetToken))
	assert.False(t, reset.Check(u, activationToken))
	assert.False(t, activation.Check(u, resetToken))
}

func TestPasswordResetTokens_invalidatedByPasswordChange(t *testing.T) {
	reset := NewPasswordResetTokens("reset-secret", 24*time.Hour)
	u := inactiveUser()
	u.IsActive = true
	token, err := reset.Make(u)
	require.NoError(t, err)

	u.PasswordHash = "$2a$10$other"
	assert.False(t, reset.Check(u, token))
}

func TestActivationTokens_expiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := inactiveUser()
	token, err := newTestTokens(issued).Make(u)
	require.NoError(t, err)

	assert.True(t, newTestTokens(issued.Add(72*time.Hour)).Check(u, token))
	assert.False(t, newTestTokens(issued.Add(72*time.Hour+time.Second)).Check(u, token))
	assert.False(t, newTestTokens(issued.Add(-time.Hour)).Check(u, token), "token from the future")
}

func TestActivationTokens_rejects(t *testing.T) {
	a := newTestTokens(time.Now())
	u := inactiveUser()
	token, err := a.Make(u)
	require.NoError(t, err)

	other := inactiveUser()
	other.ID = "ffffffff-1111-4222-8333-444455556666"

	ts, mac, _ := strings.Cut(token, "-")
	flipped := []byte(mac)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}

	tests := []struct {
		name  string
		user  *domain.User
		token string
	}{
		{"empty", u, ""},
		{"no separator", u, "abcdef"},
		{"bad timestamp", u, "!!-" + mac},
		{"short mac", u, ts + "-" + mac[:10]},
		{"tampered mac", u, ts + "-" + string(flipped)},
		{"other user", other, token},
		{"nil user", nil, token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, a.Check(tt.user, tt.token))
		})
	}

	forged := NewActivationTokens("other-secret", 72*time.Hour)
	forgedToken, err := forged.Make(u)
	require.NoError(t, err)
	assert.False(t, a.Check(u, forgedToken))
}
