// Package access decides whether a caller may perform an operation.
//
// Capability levels form a total order: Admin > Organizer > Participant >
// Authenticated > Public. A caller qualifies for a level when the highest
// level its identity grants is at least that level. Evaluation is a pure
// function of the caller; nothing is read from ambient request state.
package access

import "eventmanager/internal/domain"

// Level is a capability level.
type Level int

const (
	LevelPublic Level = iota
	LevelAuthenticated
	LevelParticipant
	LevelOrganizer
	LevelAdmin
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelPublic:
		return "public"
	case LevelAuthenticated:
		return "authenticated"
	case LevelParticipant:
		return "participant"
	case LevelOrganizer:
		return "organizer"
	case LevelAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Decision is the outcome of an access check.
type Decision int

const (
	// Deny means the operation is not permitted.
	Deny Decision = iota

	// Allow means the operation is permitted.
	Allow
)

// String returns "allow" or "deny".
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Reason explains a denial.
type Reason int

const (
	// ReasonNone accompanies Allow.
	ReasonNone Reason = iota

	// ReasonUnauthenticated means the caller has no identity. The HTTP layer
	// answers with an authentication challenge.
	ReasonUnauthenticated

	// ReasonInsufficientRole means the caller is known but its roles do not
	// reach the required level.
	ReasonInsufficientRole
)

// String returns a human-readable reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUnauthenticated:
		return "authentication required"
	case ReasonInsufficientRole:
		return "insufficient role"
	default:
		return "unknown"
	}
}

// Result is a decision together with the reason for a denial.
type Result struct {
	Decision Decision
	Reason   Reason
}

// Allowed reports whether the decision is Allow.
func (r Result) Allowed() bool { return r.Decision == Allow }

// Granted returns the highest level the caller qualifies for. Precedence:
// superuser flag, then Admin, Organizer and Participant roles. An
// authenticated caller without any built-in role only reaches
// LevelAuthenticated; a nil or anonymous caller only LevelPublic.
func Granted(caller *domain.Caller) Level {
	switch {
	case caller == nil || !caller.Authenticated:
		return LevelPublic
	case caller.Superuser:
		return LevelAdmin
	case caller.Roles.Has(domain.RoleAdmin):
		return LevelAdmin
	case caller.Roles.Has(domain.RoleOrganizer):
		return LevelOrganizer
	case caller.Roles.Has(domain.RoleParticipant):
		return LevelParticipant
	default:
		return LevelAuthenticated
	}
}

// Evaluate decides whether caller qualifies for the required level.
func Evaluate(caller *domain.Caller, required Level) Result {
	if required <= LevelPublic {
		return Result{Decision: Allow}
	}
	if caller == nil || !caller.Authenticated {
		return Result{Decision: Deny, Reason: ReasonUnauthenticated}
	}
	if required > LevelAdmin || Granted(caller) < required {
		return Result{Decision: Deny, Reason: ReasonInsufficientRole}
	}
	return Result{Decision: Allow}
}

// Err converts a result to the matching domain sentinel, or nil when allowed.
func (r Result) Err() error {
	switch {
	case r.Allowed():
		return nil
	case r.Reason == ReasonUnauthenticated:
		return domain.ErrUnauthenticated
	default:
		return domain.ErrForbidden
	}
}
