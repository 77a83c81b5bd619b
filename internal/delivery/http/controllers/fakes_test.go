package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	h "eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var errBoom = errors.New("boom")

const (
	testEventID = "7f9c1c52-6b59-4c37-9a0e-5d1f8a6b2c01"
	testUserID  = "3d2b8a40-1c6e-4f7a-8b5d-9e0f1a2b3c4d"
)

// envelope decodes an APIResponse with a typed data payload.
type envelope[T any] struct {
	Data  T           `json:"data"`
	Error *h.APIError `json:"error"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

// serve routes a single request through a mux so path values are populated.
func serve(pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withCaller(req *http.Request, c *domain.Caller) *http.Request {
	return req.WithContext(middleware.SetCaller(req.Context(), c))
}

func participantCaller() *domain.Caller {
	return &domain.Caller{UserID: testUserID, Authenticated: true, Roles: domain.NewRoleSet(domain.RoleParticipant)}
}

type fakeAuthService struct {
	signUpErr   error
	activateErr error
	loginErr    error
	resetErr    error
	changeErr   error
	lastSignUp  *domain.SignUpInput
	lastLogin   string
	lastToken   string
	lastEmail   string
	lastUserID  string
	lastNewPass string
}

func (f *fakeAuthService) SignUp(_ context.Context, in *domain.SignUpInput) (*domain.User, error) {
	f.lastSignUp = in
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &domain.User{ID: testUserID, Username: in.Username, Email: in.Email}, nil
}

func (f *fakeAuthService) Activate(_ context.Context, userID, token string) (*domain.User, error) {
	f.lastToken = token
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	return &domain.User{ID: userID, IsActive: true}, nil
}

func (f *fakeAuthService) Login(_ context.Context, login, _ string) (string, *domain.User, error) {
	f.lastLogin = login
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "signed.jwt.token", &domain.User{ID: testUserID, Username: login, IsActive: true}, nil
}

func (f *fakeAuthService) RequestPasswordReset(_ context.Context, email string) error {
	f.lastEmail = email
	return f.resetErr
}

func (f *fakeAuthService) ResetPassword(_ context.Context, userID, token, newPassword string) error {
	f.lastUserID, f.lastToken, f.lastNewPass = userID, token, newPassword
	return f.resetErr
}

func (f *fakeAuthService) ChangePassword(_ context.Context, userID, _, newPassword string) error {
	f.lastUserID, f.lastNewPass = userID, newPassword
	return f.changeErr
}

type fakeEventService struct {
	events     []*domain.Event
	total      int
	err        error
	lastFilter domain.EventFilter
	lastCreate *domain.Event
	lastUpdate *domain.EventUpdate
	lastID     string
}

func (f *fakeEventService) List(_ context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	f.lastFilter = filter
	return f.events, f.total, f.err
}

func (f *fakeEventService) Get(_ context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: id, Name: "Go Meetup"}, nil
}

func (f *fakeEventService) Create(_ context.Context, e *domain.Event) error {
	f.lastCreate = e
	if f.err != nil {
		return f.err
	}
	e.ID = testEventID
	return nil
}

func (f *fakeEventService) Update(_ context.Context, id string, upd *domain.EventUpdate) (*domain.Event, error) {
	f.lastID, f.lastUpdate = id, upd
	if f.err != nil {
		return nil, f.err
	}
	e := &domain.Event{ID: id, Name: "Go Meetup"}
	if upd.Name != nil {
		e.Name = *upd.Name
	}
	return e, nil
}

func (f *fakeEventService) Delete(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeEventService) Participants(_ context.Context, id string) ([]*domain.User, error) {
	f.lastID = id
	return nil, f.err
}

type fakeRSVPService struct {
	outcome    domain.RSVPOutcome
	joined     bool
	events     []*domain.Event
	err        error
	lastCaller *domain.Caller
	lastEvent  string
}

func (f *fakeRSVPService) Join(_ context.Context, c *domain.Caller, eventID string) (domain.RSVPOutcome, error) {
	f.lastCaller, f.lastEvent = c, eventID
	return f.outcome, f.err
}

func (f *fakeRSVPService) Cancel(_ context.Context, c *domain.Caller, eventID string) (domain.RSVPOutcome, error) {
	f.lastCaller, f.lastEvent = c, eventID
	return f.outcome, f.err
}

func (f *fakeRSVPService) Status(_ context.Context, c *domain.Caller, eventID string) (bool, error) {
	f.lastCaller, f.lastEvent = c, eventID
	return f.joined, f.err
}

func (f *fakeRSVPService) ListMyEvents(_ context.Context, c *domain.Caller) ([]*domain.Event, error) {
	f.lastCaller = c
	return f.events, f.err
}

type fakeCategoryService struct {
	err        error
	lastName   string
	lastID     string
	lastUpdate [2]*string
}

func (f *fakeCategoryService) List(context.Context) ([]*domain.Category, error) {
	return nil, f.err
}

func (f *fakeCategoryService) Get(_ context.Context, id string) (*domain.Category, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Category{ID: id, Name: "Tech"}, nil
}

func (f *fakeCategoryService) Create(_ context.Context, name, description string) (*domain.Category, error) {
	f.lastName = name
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Category{ID: testEventID, Name: name, Description: description}, nil
}

func (f *fakeCategoryService) Update(_ context.Context, id string, name, description *string) (*domain.Category, error) {
	f.lastID, f.lastUpdate = id, [2]*string{name, description}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Category{ID: id}, nil
}

func (f *fakeCategoryService) Delete(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

type fakeUserService struct {
	err        error
	users      []*domain.User
	total      int
	lastID     string
	lastParams domain.PaginationParams
	lastUpdate *domain.UserProfileUpdate
	lastRoles  []domain.Role
	lastActive *bool
}

func (f *fakeUserService) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: id, Username: "pat"}, nil
}

func (f *fakeUserService) UpdateProfile(_ context.Context, id string, upd *domain.UserProfileUpdate) (*domain.User, error) {
	f.lastID, f.lastUpdate = id, upd
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: id}, nil
}

func (f *fakeUserService) List(_ context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	f.lastParams = params
	return f.users, f.total, f.err
}

func (f *fakeUserService) SetRoles(_ context.Context, id string, roles []domain.Role) (*domain.User, error) {
	f.lastID, f.lastRoles = id, roles
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: id, Roles: roles}, nil
}

func (f *fakeUserService) SetActive(_ context.Context, id string, active bool) (*domain.User, error) {
	f.lastID, f.lastActive = id, &active
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: id, IsActive: active}, nil
}

type fakeGroupService struct {
	err      error
	lastName string
	lastID   string
}

func (f *fakeGroupService) List(context.Context) ([]*domain.Group, error) {
	return []*domain.Group{{Name: domain.RoleAdmin, Protected: true}}, f.err
}

func (f *fakeGroupService) Create(_ context.Context, name string) (*domain.Group, error) {
	f.lastName = name
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Group{ID: testEventID, Name: domain.Role(name)}, nil
}

func (f *fakeGroupService) Delete(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

type fakeDashboardService struct {
	err       error
	lastScope string
}

func (f *fakeDashboardService) Organizer(_ context.Context, scope string) (*domain.OrganizerDashboard, error) {
	f.lastScope = scope
	if f.err != nil {
		return nil, f.err
	}
	return &domain.OrganizerDashboard{Scope: scope, EventStats: domain.EventStats{TotalEvents: 3}}, nil
}

func (f *fakeDashboardService) Admin(context.Context) (*domain.AdminDashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AdminDashboard{TotalUsers: 5}, nil
}
