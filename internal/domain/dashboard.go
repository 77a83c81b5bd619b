package domain

import "context"

// EventStats are the headline counters shown on dashboards.
type EventStats struct {
	TotalEvents       int `json:"total_events"`
	UpcomingEvents    int `json:"upcoming_events"`
	PastEvents        int `json:"past_events"`
	TotalParticipants int `json:"total_participants"`
}

// Dashboard event scopes.
const (
	ScopeToday    = "today"
	ScopeUpcoming = "upcoming"
	ScopePast     = "past"
	ScopeAll      = "all"
)

// OrganizerDashboard is the organizer overview.
// swagger:model OrganizerDashboard
type OrganizerDashboard struct {
	EventStats
	Scope  string   `json:"scope"`
	Today  string   `json:"today"`
	Events []*Event `json:"events"`
}

// AdminDashboard is the administrator overview.
// swagger:model AdminDashboard
type AdminDashboard struct {
	EventStats
	TotalUsers      int      `json:"total_users"`
	TotalCategories int      `json:"total_categories"`
	Groups          []*Group `json:"groups"`
}

// DashboardService builds the organizer and admin overviews.
type DashboardService interface {
	Organizer(ctx context.Context, scope string) (*OrganizerDashboard, error)
	Admin(ctx context.Context) (*AdminDashboard, error)
}
