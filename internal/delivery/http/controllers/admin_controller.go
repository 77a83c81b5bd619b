package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

// CreateGroupRequest is the request body for POST /groups.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c CreateGroupRequest) Validate() []string {
	if strings.TrimSpace(c.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// AdminController serves role groups and the organizer and admin dashboards.
type AdminController struct {
	Logger     *slog.Logger
	Groups     domain.GroupService
	Dashboards domain.DashboardService
}

func NewAdminController(logger *slog.Logger, groups domain.GroupService, dashboards domain.DashboardService) *AdminController {
	return &AdminController{Logger: logger, Groups: groups, Dashboards: dashboards}
}

// ListGroups godoc
// @Summary List role groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the groups"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /groups [get]
func (c *AdminController) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := c.Groups.List(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, groups)
}

// CreateGroup godoc
// @Summary Create a role group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateGroupRequest true "Group name"
// @Success 201 {object} helpers.APIResponse "data contains the group"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /groups [post]
func (c *AdminController) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	g, err := c.Groups.Create(r.Context(), req.Name)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, g)
}

// DeleteGroup godoc
// @Summary Delete a role group
// @Description Built-in groups cannot be deleted.
// @Tags groups
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /groups/{groupID} [delete]
func (c *AdminController) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "groupID")
	if !ok {
		return
	}
	if err := c.Groups.Delete(r.Context(), id); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OrganizerDashboard godoc
// @Summary Organizer dashboard
// @Description Event counters plus the events in scope. Unknown scopes fall back to today.
// @Tags dashboards
// @Produce json
// @Security BearerAuth
// @Param scope query string false "today, upcoming, past or all"
// @Success 200 {object} helpers.APIResponse "data contains the dashboard"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /organizer/dashboard [get]
func (c *AdminController) OrganizerDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := c.Dashboards.Organizer(r.Context(), strings.ToLower(r.URL.Query().Get("scope")))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if d.Events == nil {
		d.Events = []*domain.Event{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, d)
}

// AdminDashboard godoc
// @Summary Admin dashboard
// @Tags dashboards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the dashboard"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/dashboard [get]
func (c *AdminController) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := c.Dashboards.Admin(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, d)
}
