package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmanager/internal/domain"
)

func TestDashboardService_Organizer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, e := range []*domain.Event{
		domain.NewEvent("Past", "", "2025-05-01", "10:00", "A", f.category.ID, testNow),
		domain.NewEvent("Today late", "", "2025-06-01", "20:00", "A", f.category.ID, testNow),
		domain.NewEvent("Today early", "", "2025-06-01", "08:00", "A", f.category.ID, testNow),
	} {
		require.NoError(t, f.store.Events().Create(ctx, e))
	}
	_, err := f.store.Participants().Add(ctx, f.event.ID, f.participant.ID)
	require.NoError(t, err)

	svc := NewDashboardService(f.store.Events(), f.store.Users(), f.store.Categories(), f.store.Groups()).(*dashboardService)
	svc.now = func() time.Time { return testNow }

	tests := []struct {
		scope     string
		wantScope string
		want      []string
	}{
		{scope: "", wantScope: domain.ScopeToday, want: []string{"Today early", "Today late"}},
		{scope: "weird", wantScope: domain.ScopeToday, want: []string{"Today early", "Today late"}},
		{scope: domain.ScopeUpcoming, wantScope: domain.ScopeUpcoming, want: []string{"Go Meetup"}},
		{scope: domain.ScopePast, wantScope: domain.ScopePast, want: []string{"Past"}},
		{scope: domain.ScopeAll, wantScope: domain.ScopeAll, want: []string{"Past", "Today early", "Today late", "Go Meetup"}},
	}
	for _, tt := range tests {
		t.Run(tt.wantScope+"/"+tt.scope, func(t *testing.T) {
			d, err := svc.Organizer(ctx, tt.scope)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScope, d.Scope)
			assert.Equal(t, "2025-06-01", d.Today)
			assert.Equal(t, domain.EventStats{TotalEvents: 4, UpcomingEvents: 1, PastEvents: 1, TotalParticipants: 1}, d.EventStats)
			names := make([]string, len(d.Events))
			for i, e := range d.Events {
				names[i] = e.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestDashboardService_Admin(t *testing.T) {
	f := newFixture(t)
	svc := NewDashboardService(f.store.Events(), f.store.Users(), f.store.Categories(), f.store.Groups())

	d, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalUsers)
	assert.Equal(t, 1, d.TotalCategories)
	assert.Equal(t, 1, d.TotalEvents)
	assert.Len(t, d.Groups, 3)
}
