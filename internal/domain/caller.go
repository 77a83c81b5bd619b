package domain

import "context"

// Caller is the identity attached to an inbound request.
type Caller struct {
	UserID        string
	Email         string
	Authenticated bool
	Superuser     bool
	Roles         RoleSet
}

// Anonymous returns an unauthenticated caller.
func Anonymous() *Caller {
	return &Caller{}
}

// IdentityProvider resolves the caller for an authenticated user id.
// Unknown or inactive users resolve to an anonymous caller.
type IdentityProvider interface {
	Resolve(ctx context.Context, userID string) (*Caller, error)
}
