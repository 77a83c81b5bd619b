package domain

import (
	"context"
	"strings"
	"time"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsSuperuser  bool       `json:"is_superuser"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	Roles        []Role     `json:"roles"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewUser returns a new inactive User. ID is typically set by the repository on create.
func NewUser(username, email, firstName, lastName string, createdAt time.Time) *User {
	return &User{
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  false,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// DisplayName returns the full name, falling back to the username.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}

// UserProfileUpdate carries the optional fields of a profile edit. Nil means unchanged.
type UserProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Bio         *string
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []Role) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// ActivationTokens mints and checks single-use account activation tokens.
// A token's validity depends on the user's mutable state, so activating the
// account invalidates every outstanding token.
type ActivationTokens interface {
	Make(user *User) (string, error)
	Check(user *User, token string) bool
}

// PasswordResetTokens mints and checks password reset tokens. Like activation
// tokens they are bound to the user's state, so setting a new password spends
// them.
type PasswordResetTokens interface {
	Make(user *User) (string, error)
	Check(user *User, token string) bool
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// Create returns ErrDuplicateUsername or ErrDuplicateEmail on unique violations.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByLogin looks a user up by username or email.
	GetByLogin(ctx context.Context, login string) (*User, error)
	Update(ctx context.Context, user *User) error
	SetActive(ctx context.Context, id string, active bool) error
	SetPassword(ctx context.Context, id, hash string, at time.Time) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	Count(ctx context.Context) (int, error)
}

// AuthService covers signup, activation, login and password management.
type AuthService interface {
	SignUp(ctx context.Context, req *SignUpInput) (*User, error)
	Activate(ctx context.Context, userID, token string) (*User, error)
	Login(ctx context.Context, login, password string) (token string, user *User, err error)
	// RequestPasswordReset mails a reset link to an active account. It returns
	// nil for unknown and inactive addresses alike.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, userID, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// SignUpInput is the data accepted at signup.
type SignUpInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Password    string
	PhoneNumber string
}

// UserService defines profile and user administration operations.
type UserService interface {
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, upd *UserProfileUpdate) (*User, error)
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	SetRoles(ctx context.Context, userID string, roles []Role) (*User, error)
	SetActive(ctx context.Context, userID string, active bool) (*User, error)
}
