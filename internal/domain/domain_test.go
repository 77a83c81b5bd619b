package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleSet(t *testing.T) {
	var nilSet RoleSet
	assert.False(t, nilSet.Has(RoleAdmin))

	s := NewRoleSet(RoleParticipant, RoleOrganizer, "Volunteers")
	assert.True(t, s.Has(RoleOrganizer))
	assert.False(t, s.Has(RoleAdmin))
	assert.Equal(t, []Role{RoleOrganizer, RoleParticipant, "Volunteers"}, s.Slice())
}

func TestRole_IsBuiltin(t *testing.T) {
	for _, r := range BuiltinRoles {
		assert.True(t, r.IsBuiltin(), r)
	}
	assert.False(t, Role("admin").IsBuiltin())
	assert.False(t, Role("Volunteers").IsBuiltin())
}

func TestRSVPOutcome(t *testing.T) {
	tests := []struct {
		outcome RSVPOutcome
		changed bool
		joined  bool
		name    string
	}{
		{RSVPJoined, true, true, "joined"},
		{RSVPAlreadyJoined, false, true, "already_joined"},
		{RSVPCancelled, true, false, "cancelled"},
		{RSVPNotJoined, false, false, "not_joined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.changed, tt.outcome.Changed())
			assert.Equal(t, tt.joined, tt.outcome.Joined())
			assert.Equal(t, tt.name, tt.outcome.String())
			assert.NotEmpty(t, tt.outcome.Message())
		})
	}
	assert.Equal(t, "unknown", RSVPOutcome(0).String())
}

func TestPaginationParams(t *testing.T) {
	p := PaginationParams{Page: 3, PageSize: 10}
	assert.Equal(t, 20, p.Offset())
	lo, hi := p.Window(25)
	assert.Equal(t, 20, lo)
	assert.Equal(t, 25, hi)

	lo, hi = p.Window(5)
	assert.Equal(t, 5, lo)
	assert.Equal(t, 5, hi)

	lo, hi = PaginationParams{}.Window(7)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 7, hi)
}

func TestUser_DisplayName(t *testing.T) {
	u := &User{Username: "jdoe"}
	assert.Equal(t, "jdoe", u.DisplayName())
	u.FirstName = "Jane"
	u.LastName = "Doe"
	assert.Equal(t, "Jane Doe", u.DisplayName())
}
