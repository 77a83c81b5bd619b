package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventmanager/internal/domain"
)

func authed(superuser bool, roles ...domain.Role) *domain.Caller {
	return &domain.Caller{UserID: "u1", Authenticated: true, Superuser: superuser, Roles: domain.NewRoleSet(roles...)}
}

var allLevels = []Level{LevelPublic, LevelAuthenticated, LevelParticipant, LevelOrganizer, LevelAdmin}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		caller  *domain.Caller
		allowed map[Level]bool
	}{
		{
			name:    "nil caller",
			caller:  nil,
			allowed: map[Level]bool{LevelPublic: true},
		},
		{
			name:    "anonymous",
			caller:  domain.Anonymous(),
			allowed: map[Level]bool{LevelPublic: true},
		},
		{
			name:    "no roles",
			caller:  authed(false),
			allowed: map[Level]bool{LevelPublic: true, LevelAuthenticated: true},
		},
		{
			name:    "custom group only",
			caller:  authed(false, "Volunteers"),
			allowed: map[Level]bool{LevelPublic: true, LevelAuthenticated: true},
		},
		{
			name:    "lowercase names are not built-in roles",
			caller:  authed(false, "admin", "organizer"),
			allowed: map[Level]bool{LevelPublic: true, LevelAuthenticated: true},
		},
		{
			name:    "participant",
			caller:  authed(false, domain.RoleParticipant),
			allowed: map[Level]bool{LevelPublic: true, LevelAuthenticated: true, LevelParticipant: true},
		},
		{
			name:    "organizer",
			caller:  authed(false, domain.RoleOrganizer),
			allowed: map[Level]bool{LevelPublic: true, LevelAuthenticated: true, LevelParticipant: true, LevelOrganizer: true},
		},
		{
			name:    "organizer and participant",
			caller:  authed(false, domain.RoleOrganizer, domain.RoleParticipant),
			allowed: map[Level]bool{LevelPublic: true, LevelAuthenticated: true, LevelParticipant: true, LevelOrganizer: true},
		},
		{
			name:    "admin",
			caller:  authed(false, domain.RoleAdmin),
			allowed: map[Level]bool{LevelPublic: true, LevelAuthenticated: true, LevelParticipant: true, LevelOrganizer: true, LevelAdmin: true},
		},
		{
			name:    "superuser without roles",
			caller:  authed(true),
			allowed: map[Level]bool{LevelPublic: true, LevelAuthenticated: true, LevelParticipant: true, LevelOrganizer: true, LevelAdmin: true},
		},
		{
			name:    "superuser flag on unauthenticated caller grants nothing",
			caller:  &domain.Caller{Superuser: true, Roles: domain.NewRoleSet(domain.RoleAdmin)},
			allowed: map[Level]bool{LevelPublic: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, l := range allLevels {
				res := Evaluate(tt.caller, l)
				assert.Equal(t, tt.allowed[l], res.Allowed(), "level %s", l)
				if res.Allowed() {
					assert.Equal(t, ReasonNone, res.Reason)
				}
			}
		})
	}
}

func TestEvaluate_denialReasons(t *testing.T) {
	res := Evaluate(domain.Anonymous(), LevelParticipant)
	assert.Equal(t, Deny, res.Decision)
	assert.Equal(t, ReasonUnauthenticated, res.Reason)
	assert.ErrorIs(t, res.Err(), domain.ErrUnauthenticated)

	res = Evaluate(authed(false, domain.RoleOrganizer), LevelAdmin)
	assert.Equal(t, Deny, res.Decision)
	assert.Equal(t, ReasonInsufficientRole, res.Reason)
	assert.ErrorIs(t, res.Err(), domain.ErrForbidden)

	assert.NoError(t, Evaluate(authed(false, domain.RoleAdmin), LevelAdmin).Err())
}

func TestEvaluate_unknownLevelDenied(t *testing.T) {
	res := Evaluate(authed(true), Level(99))
	assert.False(t, res.Allowed())
	assert.Equal(t, ReasonInsufficientRole, res.Reason)
}

// Qualifying for a level implies qualifying for every lower level.
func TestEvaluate_monotonic(t *testing.T) {
	roleSets := [][]domain.Role{
		nil,
		{domain.RoleParticipant},
		{domain.RoleOrganizer},
		{domain.RoleAdmin},
		{domain.RoleOrganizer, domain.RoleParticipant},
		{domain.RoleAdmin, "Volunteers"},
		{"Volunteers"},
	}
	for _, roles := range roleSets {
		for _, su := range []bool{false, true} {
			c := authed(su, roles...)
			for i, hi := range allLevels {
				if !Evaluate(c, hi).Allowed() {
					continue
				}
				for _, lo := range allLevels[:i] {
					assert.True(t, Evaluate(c, lo).Allowed(), "roles=%v su=%v: %s allowed but %s denied", roles, su, hi, lo)
				}
			}
			if su {
				for _, l := range allLevels {
					assert.True(t, Evaluate(c, l).Allowed())
				}
			}
		}
	}
}

func TestGranted(t *testing.T) {
	assert.Equal(t, LevelPublic, Granted(nil))
	assert.Equal(t, LevelAuthenticated, Granted(authed(false)))
	assert.Equal(t, LevelParticipant, Granted(authed(false, domain.RoleParticipant)))
	assert.Equal(t, LevelOrganizer, Granted(authed(false, domain.RoleParticipant, domain.RoleOrganizer)))
	assert.Equal(t, LevelAdmin, Granted(authed(false, domain.RoleAdmin, domain.RoleParticipant)))
	assert.Equal(t, LevelAdmin, Granted(authed(true)))
}

func TestRequiredLevel(t *testing.T) {
	tests := []struct {
		op   Operation
		want Level
	}{
		{OpListEvents, LevelPublic},
		{OpViewEvent, LevelPublic},
		{OpChangePassword, LevelAuthenticated},
		{OpViewDashboard, LevelParticipant},
		{OpRSVP, LevelParticipant},
		{OpManageEvents, LevelOrganizer},
		{OpManageCategories, LevelOrganizer},
		{OpOrganizerDashboard, LevelOrganizer},
		{OpManageUsers, LevelAdmin},
		{OpManageGroups, LevelAdmin},
		{OpAdminDashboard, LevelAdmin},
		{Operation("something.new"), LevelAdmin},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RequiredLevel(tt.op), string(tt.op))
	}
}

func TestEvaluateOperation_scenarios(t *testing.T) {
	// Organizer asking to delete a role group.
	assert.Equal(t, ReasonInsufficientRole, EvaluateOperation(authed(false, domain.RoleOrganizer), OpManageGroups).Reason)
	// Anonymous browsing events, then trying to RSVP.
	assert.True(t, EvaluateOperation(domain.Anonymous(), OpListEvents).Allowed())
	assert.Equal(t, ReasonUnauthenticated, EvaluateOperation(domain.Anonymous(), OpRSVP).Reason)
}
