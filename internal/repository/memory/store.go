// Package memory holds process-local implementations of the repository
// interfaces. All repositories returned by one Store share a single lock, so
// cross-table operations such as the category cascade are atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventmanager/internal/domain"
)

type participation struct {
	seq int
}

type pairKey struct {
	eventID string
	userID  string
}

// Store is the shared state behind the memory repositories.
type Store struct {
	mu sync.RWMutex

	users        map[string]*domain.User
	groups       map[string]*domain.Group
	memberships  map[string]map[string]struct{} // user id -> group ids
	categories   map[string]*domain.Category
	events       map[string]*domain.Event
	participants map[pairKey]participation
	seq          int

	now func() time.Time
}

// NewStore returns an empty store seeded with the protected built-in groups.
func NewStore() *Store {
	s := &Store{
		users:        make(map[string]*domain.User),
		groups:       make(map[string]*domain.Group),
		memberships:  make(map[string]map[string]struct{}),
		categories:   make(map[string]*domain.Category),
		events:       make(map[string]*domain.Event),
		participants: make(map[pairKey]participation),
		now:          time.Now,
	}
	for _, r := range domain.BuiltinRoles {
		id := uuid.NewString()
		s.groups[id] = &domain.Group{ID: id, Name: r, Protected: true, CreatedAt: s.now()}
	}
	return s
}

func (s *Store) Users() domain.UserRepository { return &userRepo{s} }
func (s *Store) Groups() domain.GroupRepository { return &groupRepo{s} }
func (s *Store) Categories() domain.CategoryRepository { return &categoryRepo{s} }
func (s *Store) Events() domain.EventRepository { return &eventRepo{s} }
func (s *Store) Participants() domain.ParticipantRepository { return &participantRepo{s} }

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	c.Roles = append([]domain.Role(nil), u.Roles...)
	return &c
}

// eventView copies e and fills the joined columns. Caller holds the lock.
func (s *Store) eventView(e *domain.Event) *domain.Event {
	c := *e
	if cat, ok := s.categories[e.CategoryID]; ok {
		c.CategoryName = cat.Name
	}
	c.ParticipantCount = 0
	for k := range s.participants {
		if k.eventID == e.ID {
			c.ParticipantCount++
		}
	}
	return &c
}

func (s *Store) rolesOf(userID string) []domain.Role {
	roles := make([]domain.Role, 0, len(s.memberships[userID]))
	for gid := range s.memberships[userID] {
		if g, ok := s.groups[gid]; ok {
			roles = append(roles, g.Name)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// touch moves u.UpdatedAt forward by at least a microsecond, the resolution
// Postgres keeps. Caller holds the lock.
func (s *Store) touch(u *domain.User, at time.Time) {
	at = at.Truncate(time.Microsecond)
	if !at.After(u.UpdatedAt) {
		at = u.UpdatedAt.Add(time.Microsecond)
	}
	u.UpdatedAt = at
}

func sortEvents(events []*domain.Event, desc bool) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return (a.Date < b.Date) != desc
		}
		if a.Time != b.Time {
			return (a.Time < b.Time) != desc
		}
		return a.Name < b.Name
	})
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for id, other := range r.s.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.Email = u.Email
	cur.PhoneNumber = u.PhoneNumber
	cur.Bio = u.Bio
	cur.UpdatedAt = u.UpdatedAt
	return nil
}

func (r *userRepo) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = active
	r.s.touch(u, r.s.now())
	return nil
}

func (r *userRepo) SetPassword(_ context.Context, id, hash string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	r.s.touch(u, at)
	return nil
}

func (r *userRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *userRepo) List(_ context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := cloneUser(u)
		c.Roles = r.s.rolesOf(u.ID)
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	lo, hi := params.Window(len(all))
	return all[lo:hi], len(all), nil
}

func (r *userRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

type groupRepo struct{ s *Store }

func (r *groupRepo) List(_ context.Context) ([]*domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Group, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		c := *g
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *groupRepo) GetByName(_ context.Context, name domain.Role) (*domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, g := range r.s.groups {
		if g.Name == name {
			c := *g
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *groupRepo) Create(_ context.Context, g *domain.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.groups {
		if existing.Name == g.Name {
			return domain.ErrDuplicateGroup
		}
	}
	g.ID = uuid.NewString()
	c := *g
	r.s.groups[g.ID] = &c
	return nil
}

func (r *groupRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.groups[id]
	if !ok {
		return domain.ErrNotFound
	}
	if g.Protected {
		return domain.ErrProtectedGroup
	}
	delete(r.s.groups, id)
	for _, m := range r.s.memberships {
		delete(m, id)
	}
	return nil
}

func (r *groupRepo) ListByUserID(_ context.Context, userID string) ([]domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.rolesOf(userID), nil
}

func (r *groupRepo) AddMember(_ context.Context, userID, groupID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.groups[groupID]; !ok {
		return domain.ErrNotFound
	}
	if r.s.memberships[userID] == nil {
		r.s.memberships[userID] = make(map[string]struct{})
	}
	r.s.memberships[userID][groupID] = struct{}{}
	return nil
}

func (r *groupRepo) ReplaceMembership(_ context.Context, userID string, groupIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	next := make(map[string]struct{}, len(groupIDs))
	for _, gid := range groupIDs {
		if _, ok := r.s.groups[gid]; !ok {
			return domain.ErrNotFound
		}
		next[gid] = struct{}{}
	}
	r.s.memberships[userID] = next
	return nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = uuid.NewString()
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *categoryRepo) Update(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = c.Name
	cur.Description = c.Description
	cur.UpdatedAt = c.UpdatedAt
	return nil
}

func (r *categoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	for eid, e := range r.s.events {
		if e.CategoryID == id {
			r.s.deleteEvent(eid)
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *categoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.categories), nil
}

// deleteEvent removes the event and its participant pairs. Caller holds the lock.
func (s *Store) deleteEvent(id string) {
	delete(s.events, id)
	for k := range s.participants {
		if k.eventID == id {
			delete(s.participants, k)
		}
	}
}

type eventRepo struct{ s *Store }

func (r *eventRepo) Create(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[e.CategoryID]; !ok {
		return domain.ErrInvalidInput
	}
	e.ID = uuid.NewString()
	cp := *e
	r.s.events[e.ID] = &cp
	return nil
}

func (r *eventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.s.eventView(e), nil
}

func (r *eventRepo) Update(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.categories[e.CategoryID]; !ok {
		return domain.ErrInvalidInput
	}
	cp := *e
	cp.CategoryName, cp.ParticipantCount = "", 0
	r.s.events[e.ID] = &cp
	return nil
}

func (r *eventRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return domain.ErrNotFound
	}
	r.s.deleteEvent(id)
	return nil
}

func (r *eventRepo) List(_ context.Context, f domain.EventFilter) ([]*domain.Event, int, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Event, 0)
	for _, e := range r.s.events {
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Name), search) &&
			!strings.Contains(strings.ToLower(e.Location), search) {
			continue
		}
		if f.HasDateRange() && (e.Date < f.Start || e.Date > f.End) {
			continue
		}
		if f.CategoryID != "" && e.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, r.s.eventView(e))
	}
	sortEvents(out, false)
	lo, hi := f.Pagination.Window(len(out))
	return out[lo:hi], len(out), nil
}

func (r *eventRepo) ListByDay(_ context.Context, scope, today string) ([]*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Event, 0)
	for _, e := range r.s.events {
		var keep bool
		switch scope {
		case domain.ScopeUpcoming:
			keep = e.Date > today
		case domain.ScopePast:
			keep = e.Date < today
		case domain.ScopeAll:
			keep = true
		default:
			keep = e.Date == today
		}
		if keep {
			out = append(out, r.s.eventView(e))
		}
	}
	sortEvents(out, scope == domain.ScopePast)
	return out, nil
}

func (r *eventRepo) Stats(_ context.Context, today string) (*domain.EventStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st := &domain.EventStats{TotalEvents: len(r.s.events), TotalParticipants: len(r.s.participants)}
	for _, e := range r.s.events {
		switch {
		case e.Date > today:
			st.UpcomingEvents++
		case e.Date < today:
			st.PastEvents++
		}
	}
	return st, nil
}

type participantRepo struct{ s *Store }

func (r *participantRepo) Add(_ context.Context, eventID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[eventID]; !ok {
		return false, domain.ErrNotFound
	}
	if _, ok := r.s.users[userID]; !ok {
		return false, domain.ErrNotFound
	}
	k := pairKey{eventID, userID}
	if _, ok := r.s.participants[k]; ok {
		return false, nil
	}
	r.s.seq++
	r.s.participants[k] = participation{seq: r.s.seq}
	return true, nil
}

func (r *participantRepo) Remove(_ context.Context, eventID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := pairKey{eventID, userID}
	if _, ok := r.s.participants[k]; !ok {
		return false, nil
	}
	delete(r.s.participants, k)
	return true, nil
}

func (r *participantRepo) IsParticipant(_ context.Context, eventID, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.participants[pairKey{eventID, userID}]
	return ok, nil
}

func (r *participantRepo) ListEventsByUser(_ context.Context, userID string) ([]*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Event, 0)
	for k := range r.s.participants {
		if k.userID != userID {
			continue
		}
		if e, ok := r.s.events[k.eventID]; ok {
			out = append(out, r.s.eventView(e))
		}
	}
	sortEvents(out, false)
	return out, nil
}

func (r *participantRepo) ListUsersByEvent(_ context.Context, eventID string) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type joined struct {
		u   *domain.User
		seq int
	}
	var rows []joined
	for k, p := range r.s.participants {
		if k.eventID != eventID {
			continue
		}
		if u, ok := r.s.users[k.userID]; ok {
			rows = append(rows, joined{cloneUser(u), p.seq})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*domain.User, len(rows))
	for i, j := range rows {
		out[i] = j.u
	}
	return out, nil
}

func (r *participantRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.participants), nil
}
