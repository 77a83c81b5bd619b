package domain

import "errors"

// Sentinel errors shared by repositories, services and controllers.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated means no identity is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means an identity is present but its role level is too low.
	ErrForbidden = errors.New("forbidden")

	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateUsername  = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("this account is inactive, please check your email for the activation link")

	// ErrInvalidActivationToken is returned for every activation failure so that
	// callers cannot tell a wrong token from a reused one.
	ErrInvalidActivationToken = errors.New("activation link is invalid or has expired")
	// ErrInvalidResetToken plays the same role for password reset links.
	ErrInvalidResetToken = errors.New("password reset link is invalid or has expired")

	ErrDuplicateGroup = errors.New("group already exists")
	ErrProtectedGroup = errors.New("built-in groups cannot be deleted")
)
