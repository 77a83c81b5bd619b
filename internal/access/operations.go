package access

import "eventmanager/internal/domain"

// Operation names a gated action of the API.
type Operation string

const (
	OpListEvents         Operation = "events.list"
	OpViewEvent          Operation = "events.view"
	OpListCategories     Operation = "categories.list"
	OpViewProfile        Operation = "profile.view"
	OpEditProfile        Operation = "profile.edit"
	OpChangePassword     Operation = "profile.password"
	OpViewDashboard      Operation = "dashboard.view"
	OpRSVP               Operation = "events.rsvp"
	OpManageEvents       Operation = "events.manage"
	OpViewParticipants   Operation = "events.participants"
	OpManageCategories   Operation = "categories.manage"
	OpOrganizerDashboard Operation = "dashboard.organizer"
	OpManageUsers        Operation = "users.manage"
	OpManageGroups       Operation = "groups.manage"
	OpAdminDashboard     Operation = "dashboard.admin"
)

var requiredLevels = map[Operation]Level{
	OpListEvents:         LevelPublic,
	OpViewEvent:          LevelPublic,
	OpListCategories:     LevelPublic,
	OpViewProfile:        LevelAuthenticated,
	OpEditProfile:        LevelAuthenticated,
	OpChangePassword:     LevelAuthenticated,
	OpViewDashboard:      LevelParticipant,
	OpRSVP:               LevelParticipant,
	OpManageEvents:       LevelOrganizer,
	OpViewParticipants:   LevelOrganizer,
	OpManageCategories:   LevelOrganizer,
	OpOrganizerDashboard: LevelOrganizer,
	OpManageUsers:        LevelAdmin,
	OpManageGroups:       LevelAdmin,
	OpAdminDashboard:     LevelAdmin,
}

// RequiredLevel returns the minimum level for op. Unknown operations require
// LevelAdmin.
func RequiredLevel(op Operation) Level {
	if l, ok := requiredLevels[op]; ok {
		return l
	}
	return LevelAdmin
}

// EvaluateOperation is Evaluate at the level op requires.
func EvaluateOperation(caller *domain.Caller, op Operation) Result {
	return Evaluate(caller, RequiredLevel(op))
}
