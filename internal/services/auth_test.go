package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eventmanager/internal/adapters/auth"
	"eventmanager/internal/domain"
)

type authHarness struct {
	f      *fixture
	email  *fakeEmailService
	tokens *auth.JWTAuthority
	svc    domain.AuthService
}

func newAuthHarness(t *testing.T) *authHarness {
	t.Helper()
	f := newFixture(t)
	h := &authHarness{
		f:      f,
		email:  &fakeEmailService{},
		tokens: auth.NewJWTAuthority("test-secret", time.Hour),
	}
	h.svc = NewAuthService(
		f.store.Users(),
		f.store.Groups(),
		auth.NewBcryptHasher(bcrypt.MinCost),
		h.tokens,
		auth.NewActivationTokens("activation-secret", 72*time.Hour),
		auth.NewPasswordResetTokens("activation-secret", 24*time.Hour),
		h.email,
		"https://events.example.com/",
		discardLogger(),
	)
	return h
}

func (h *authHarness) signUp(t *testing.T) *domain.User {
	t.Helper()
	u, err := h.svc.SignUp(context.Background(), &domain.SignUpInput{
		Username:  "newbie",
		Email:     "Newbie@Example.com",
		FirstName: "New",
		LastName:  "Bie",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)
	return u
}

// activationParts extracts the user id and token from the mailed link.
func (h *authHarness) activationParts(t *testing.T) (userID, token string) {
	t.Helper()
	require.NotEmpty(t, h.email.activations)
	link := h.email.activations[len(h.email.activations)-1].ActivationLink
	rest, ok := strings.CutPrefix(link, "https://events.example.com/auth/activate/")
	require.True(t, ok, link)
	parts := strings.Split(rest, "/")
	require.Len(t, parts, 2)
	return parts[0], parts[1]
}

func TestAuthService_SignUp(t *testing.T) {
	h := newAuthHarness(t)
	u := h.signUp(t)

	assert.False(t, u.IsActive)
	assert.Equal(t, "newbie@example.com", u.Email)
	assert.Equal(t, []domain.Role{domain.RoleParticipant}, u.Roles)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	roles, err := h.f.store.Groups().ListByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleParticipant}, roles)

	require.Len(t, h.email.activations, 1)
	assert.Equal(t, "New Bie", h.email.activations[0].Name)
	id, _ := h.activationParts(t)
	assert.Equal(t, u.ID, id)
}

func TestAuthService_SignUpValidation(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    *domain.SignUpInput
		errIs error
	}{
		{name: "nil", in: nil, errIs: domain.ErrInvalidInput},
		{name: "bad email", in: &domain.SignUpInput{Username: "x", Email: "nope", Password: "longenough"}, errIs: domain.ErrInvalidInput},
		{name: "bad username", in: &domain.SignUpInput{Username: "has space", Email: "a@b.io", Password: "longenough"}, errIs: domain.ErrInvalidInput},
		{name: "short password", in: &domain.SignUpInput{Username: "x", Email: "a@b.io", Password: "short"}, errIs: domain.ErrInvalidInput},
		{name: "taken username", in: &domain.SignUpInput{Username: "pat", Email: "other@b.io", Password: "longenough"}, errIs: domain.ErrDuplicateUsername},
		{name: "taken email", in: &domain.SignUpInput{Username: "other", Email: "PAT@example.com", Password: "longenough"}, errIs: domain.ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.SignUp(ctx, tt.in)
			require.ErrorIs(t, err, tt.errIs)
		})
	}
	assert.Empty(t, h.email.activations)
}

func TestAuthService_SignUpEmailFailureIsNotFatal(t *testing.T) {
	h := newAuthHarness(t)
	h.email.err = errBoom

	u := h.signUp(t)
	assert.NotEmpty(t, u.ID)
}

func TestAuthService_ActivateIsSingleUse(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	h.signUp(t)
	id, token := h.activationParts(t)

	u, err := h.svc.Activate(ctx, id, token)
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.Equal(t, []domain.Role{domain.RoleParticipant}, u.Roles)

	_, err = h.svc.Activate(ctx, id, token)
	require.ErrorIs(t, err, domain.ErrInvalidActivationToken)
}

func TestAuthService_ActivateRejectsUniformly(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	h.signUp(t)
	id, token := h.activationParts(t)

	tests := []struct {
		name, id, token string
	}{
		{name: "malformed id", id: "not-a-uuid", token: token},
		{name: "unknown user", id: "6f1c2a4e-8a55-4c55-9d3b-2a9e1f0c7b11", token: token},
		{name: "tampered token", id: id, token: tamper(token)},
		{name: "garbage token", id: id, token: "zzz"},
		{name: "empty token", id: id, token: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Activate(ctx, tt.id, tt.token)
			require.ErrorIs(t, err, domain.ErrInvalidActivationToken)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	h.signUp(t)

	_, _, err := h.svc.Login(ctx, "newbie", "s3cret-pass")
	require.ErrorIs(t, err, domain.ErrInactiveAccount)

	_, _, err = h.svc.Login(ctx, "newbie", "wrong-pass")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = h.svc.Login(ctx, "ghost", "s3cret-pass")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	id, token := h.activationParts(t)
	_, err = h.svc.Activate(ctx, id, token)
	require.NoError(t, err)

	for _, login := range []string{"newbie", "newbie@example.com"} {
		jwtToken, u, err := h.svc.Login(ctx, login, "s3cret-pass")
		require.NoError(t, err)
		require.NotNil(t, u.LastLogin)
		subject, err := h.tokens.Verify(jwtToken)
		require.NoError(t, err)
		assert.Equal(t, id, subject)
	}

	stored, err := h.f.store.Users().GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func tamper(token string) string {
	last := token[len(token)-1]
	if last == '0' {
		return token[:len(token)-1] + "1"
	}
	return token[:len(token)-1] + "0"
}

func TestAuthService_ActivationLinkDeadAfterDeactivation(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	h.signUp(t)
	id, token := h.activationParts(t)

	_, err := h.svc.Activate(ctx, id, token)
	require.NoError(t, err)

	users := NewUserService(h.f.store.Users(), h.f.store.Groups())
	deactivated, err := users.SetActive(ctx, id, false)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	_, err = h.svc.Activate(ctx, id, token)
	require.ErrorIs(t, err, domain.ErrInvalidActivationToken)

	stored, err := h.f.store.Users().GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.IsActive, "old link must not undo a deactivation")
}

// activeNewbie signs up and activates "newbie" and returns its id.
func (h *authHarness) activeNewbie(t *testing.T) string {
	t.Helper()
	h.signUp(t)
	id, token := h.activationParts(t)
	_, err := h.svc.Activate(context.Background(), id, token)
	require.NoError(t, err)
	return id
}

// resetParts extracts the user id and token from the last mailed reset link.
func (h *authHarness) resetParts(t *testing.T) (userID, token string) {
	t.Helper()
	require.NotEmpty(t, h.email.resets)
	link := h.email.resets[len(h.email.resets)-1].ResetLink
	rest, ok := strings.CutPrefix(link, "https://events.example.com/auth/password-reset/")
	require.True(t, ok, link)
	parts := strings.Split(rest, "/")
	require.Len(t, parts, 2)
	return parts[0], parts[1]
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	id := h.activeNewbie(t)

	require.NoError(t, h.svc.RequestPasswordReset(ctx, " NEWBIE@example.com "))
	require.Len(t, h.email.resets, 1)
	assert.Equal(t, "newbie@example.com", h.email.resets[0].Email)
	resetID, token := h.resetParts(t)
	assert.Equal(t, id, resetID)

	require.NoError(t, h.svc.ResetPassword(ctx, resetID, token, "brand-new-pass"))

	_, _, err := h.svc.Login(ctx, "newbie", "s3cret-pass")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = h.svc.Login(ctx, "newbie", "brand-new-pass")
	require.NoError(t, err)

	err = h.svc.ResetPassword(ctx, resetID, token, "another-new-pass")
	require.ErrorIs(t, err, domain.ErrInvalidResetToken, "a reset link works once")
}

func TestAuthService_RequestPasswordResetIsSilent(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	h.signUp(t)

	require.NoError(t, h.svc.RequestPasswordReset(ctx, "ghost@example.com"))
	require.NoError(t, h.svc.RequestPasswordReset(ctx, "newbie@example.com"), "inactive account")
	assert.Empty(t, h.email.resets)

	require.ErrorIs(t, h.svc.RequestPasswordReset(ctx, "not-an-email"), domain.ErrInvalidInput)

	h.email.err = errBoom
	id, token := h.activationParts(t)
	_, err := h.svc.Activate(ctx, id, token)
	require.NoError(t, err)
	require.NoError(t, h.svc.RequestPasswordReset(ctx, "newbie@example.com"), "mail failure is logged only")
	assert.Len(t, h.email.resets, 1)
}

func TestAuthService_ResetPasswordRejectsUniformly(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	id := h.activeNewbie(t)
	require.NoError(t, h.svc.RequestPasswordReset(ctx, "newbie@example.com"))
	_, token := h.resetParts(t)
	_, activationToken := h.activationParts(t)

	tests := []struct {
		name, id, token string
	}{
		{name: "malformed id", id: "not-a-uuid", token: token},
		{name: "unknown user", id: "6f1c2a4e-8a55-4c55-9d3b-2a9e1f0c7b11", token: token},
		{name: "tampered token", id: id, token: tamper(token)},
		{name: "activation token", id: id, token: activationToken},
		{name: "empty token", id: id, token: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.svc.ResetPassword(ctx, tt.id, tt.token, "brand-new-pass")
			require.ErrorIs(t, err, domain.ErrInvalidResetToken)
		})
	}

	require.ErrorIs(t, h.svc.ResetPassword(ctx, id, token, "short"), domain.ErrInvalidInput)

	_, err := NewUserService(h.f.store.Users(), h.f.store.Groups()).SetActive(ctx, id, false)
	require.NoError(t, err)
	require.ErrorIs(t, h.svc.ResetPassword(ctx, id, token, "brand-new-pass"), domain.ErrInvalidResetToken)
}

func TestAuthService_ChangePassword(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	id := h.activeNewbie(t)

	tests := []struct {
		name, old, new string
	}{
		{name: "wrong current password", old: "wrong-pass", new: "brand-new-pass"},
		{name: "short new password", old: "s3cret-pass", new: "short"},
		{name: "unchanged password", old: "s3cret-pass", new: "s3cret-pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.svc.ChangePassword(ctx, id, tt.old, tt.new), domain.ErrInvalidInput)
		})
	}

	require.NoError(t, h.svc.RequestPasswordReset(ctx, "newbie@example.com"))
	_, resetToken := h.resetParts(t)

	require.NoError(t, h.svc.ChangePassword(ctx, id, "s3cret-pass", "brand-new-pass"))
	_, _, err := h.svc.Login(ctx, "newbie", "brand-new-pass")
	require.NoError(t, err)
	require.ErrorIs(t, h.svc.ResetPassword(ctx, id, resetToken, "another-new-pass"), domain.ErrInvalidResetToken,
		"changing the password spends outstanding reset links")

	require.ErrorIs(t, h.svc.ChangePassword(ctx, "6f1c2a4e-8a55-4c55-9d3b-2a9e1f0c7b11", "x", "brand-new-pass"), domain.ErrUserNotFound)
}
