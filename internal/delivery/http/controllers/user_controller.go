package controllers

import (
	"log/slog"
	"net/http"

	h "eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"
)

// UpdateProfileRequest is the request body for PATCH /users/me. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Bio         *string `json:"bio"`
}

// SetRolesRequest is the request body for PUT /users/{userID}/roles. The list replaces the user's groups.
type SetRolesRequest struct {
	Roles []domain.Role `json:"roles"`
}

// Validate implements Validator.
func (s SetRolesRequest) Validate() []string {
	if s.Roles == nil {
		return []string{"roles is required"}
	}
	return nil
}

// SetActiveRequest is the request body for PATCH /users/{userID}/active.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// Validate implements Validator.
func (s SetActiveRequest) Validate() []string {
	if s.Active == nil {
		return []string{"active is required"}
	}
	return nil
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMe godoc
// @Summary Get current user
// @Description Returns the authenticated user's profile with roles.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	user, err := c.Service.GetByID(r.Context(), caller.UserID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update current user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/me [patch]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	user, err := c.Service.UpdateProfile(r.Context(), caller.UserID, &domain.UserProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users
// @Description Admin only. Paginated, with each user's groups.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /users [get]
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	users, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.NewPage(users, params, total))
}

// SetRoles godoc
// @Summary Replace a user's groups
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Param body body SetRolesRequest true "Group names"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/roles [put]
func (c *UserController) SetRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "userID")
	if !ok {
		return
	}
	var req SetRolesRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.SetRoles(r.Context(), id, req.Roles)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// SetActive godoc
// @Summary Activate or deactivate a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Param body body SetActiveRequest true "Active flag"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/active [patch]
func (c *UserController) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "userID")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}
