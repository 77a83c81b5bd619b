package domain

import (
	"context"
	"sort"
	"time"
)

// Role is a group name. The three built-in roles are fixed; admins may create
// further custom groups, which carry no capability of their own.
type Role string

// Built-in roles.
const (
	RoleAdmin       Role = "Admin"
	RoleOrganizer   Role = "Organizer"
	RoleParticipant Role = "Participant"
)

// BuiltinRoles lists the built-in roles from highest to lowest capability.
var BuiltinRoles = []Role{RoleAdmin, RoleOrganizer, RoleParticipant}

// IsBuiltin reports whether r is one of the protected built-in roles.
func (r Role) IsBuiltin() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleParticipant:
		return true
	}
	return false
}

// RoleSet is a set of role names. The zero value is an empty set.
type RoleSet map[Role]struct{}

// NewRoleSet returns a set holding the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Has reports whether r is in the set. Safe on a nil set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Slice returns the roles sorted by name.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Group is a stored role group. Built-in groups are protected from deletion.
// swagger:model Group
type Group struct {
	ID        string    `json:"id"`
	Name      Role      `json:"name"`
	Protected bool      `json:"protected"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupRepository defines storage for role groups and memberships.
type GroupRepository interface {
	List(ctx context.Context) ([]*Group, error)
	GetByName(ctx context.Context, name Role) (*Group, error)
	// Create returns ErrDuplicateGroup when the name is taken.
	Create(ctx context.Context, g *Group) error
	// Delete returns ErrProtectedGroup for built-in groups and ErrNotFound for unknown ids.
	Delete(ctx context.Context, id string) error
	ListByUserID(ctx context.Context, userID string) ([]Role, error)
	AddMember(ctx context.Context, userID, groupID string) error
	// ReplaceMembership atomically sets the user's groups to exactly groupIDs.
	ReplaceMembership(ctx context.Context, userID string, groupIDs []string) error
}

// GroupService defines admin operations on role groups.
type GroupService interface {
	List(ctx context.Context) ([]*Group, error)
	Create(ctx context.Context, name string) (*Group, error)
	Delete(ctx context.Context, id string) error
}
