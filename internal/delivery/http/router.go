package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventmanager/internal/access"
	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"
)

// Controllers bundles the handlers the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Event    *controllers.EventController
	Category *controllers.CategoryController
	RSVP     *controllers.RSVPController
	User     *controllers.UserController
	Admin    *controllers.AdminController
}

// NewRouter initializes the HTTP router with all application routes. Every
// route is gated by the operation it performs.
func NewRouter(c Controllers) *http.ServeMux {
	mux := http.NewServeMux()
	gate := func(pattern string, op access.Operation, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.Require(op, handler))
	}

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/activate/{userID}/{token}", c.Auth.Activate)
	mux.HandleFunc("POST /auth/password-reset", c.Auth.RequestPasswordReset)
	mux.HandleFunc("POST /auth/password-reset/{userID}/{token}", c.Auth.ResetPassword)

	// Events
	gate("GET /events", access.OpListEvents, c.Event.ListEvents)
	gate("GET /events/{eventID}", access.OpViewEvent, c.Event.GetEvent)
	gate("POST /events", access.OpManageEvents, c.Event.CreateEvent)
	gate("PATCH /events/{eventID}", access.OpManageEvents, c.Event.UpdateEvent)
	gate("DELETE /events/{eventID}", access.OpManageEvents, c.Event.DeleteEvent)
	gate("GET /events/{eventID}/participants", access.OpViewParticipants, c.Event.ListParticipants)

	// RSVP
	gate("GET /events/{eventID}/rsvp", access.OpRSVP, c.RSVP.Status)
	gate("POST /events/{eventID}/rsvp", access.OpRSVP, c.RSVP.Join)
	gate("DELETE /events/{eventID}/rsvp", access.OpRSVP, c.RSVP.Cancel)
	gate("GET /dashboard", access.OpViewDashboard, c.RSVP.Dashboard)

	// Categories
	gate("GET /categories", access.OpListCategories, c.Category.ListCategories)
	gate("GET /categories/{categoryID}", access.OpListCategories, c.Category.GetCategory)
	gate("POST /categories", access.OpManageCategories, c.Category.CreateCategory)
	gate("PATCH /categories/{categoryID}", access.OpManageCategories, c.Category.UpdateCategory)
	gate("DELETE /categories/{categoryID}", access.OpManageCategories, c.Category.DeleteCategory)

	// Users
	gate("GET /users/me", access.OpViewProfile, c.User.GetMe)
	gate("PATCH /users/me", access.OpEditProfile, c.User.UpdateMe)
	gate("POST /users/me/password", access.OpChangePassword, c.Auth.ChangePassword)
	gate("GET /users", access.OpManageUsers, c.User.ListUsers)
	gate("PUT /users/{userID}/roles", access.OpManageUsers, c.User.SetRoles)
	gate("PATCH /users/{userID}/active", access.OpManageUsers, c.User.SetActive)

	// Administration
	gate("GET /groups", access.OpManageGroups, c.Admin.ListGroups)
	gate("POST /groups", access.OpManageGroups, c.Admin.CreateGroup)
	gate("DELETE /groups/{groupID}", access.OpManageGroups, c.Admin.DeleteGroup)
	gate("GET /organizer/dashboard", access.OpOrganizerDashboard, c.Admin.OrganizerDashboard)
	gate("GET /admin/dashboard", access.OpAdminDashboard, c.Admin.AdminDashboard)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// HandlerConfig holds the collaborators of the middleware chain.
type HandlerConfig struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	Identity       domain.IdentityProvider
	AllowedOrigins []string
}

// NewHandler wraps the router with request logging, CORS and caller resolution,
// outermost first.
func NewHandler(cfg HandlerConfig, c Controllers) http.Handler {
	var h http.Handler = NewRouter(c)
	h = middleware.Authenticate(cfg.Verifier, cfg.Identity, cfg.Logger, h)
	h = middleware.CORS(cfg.AllowedOrigins, h)
	return middleware.LoggingMiddleware(cfg.Logger, h)
}
