package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

// CategoryRequest is the request body for POST /categories.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (c CategoryRequest) Validate() []string {
	if strings.TrimSpace(c.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// UpdateCategoryRequest is the request body for PATCH /categories/{categoryID}.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Validate implements Validator.
func (c UpdateCategoryRequest) Validate() []string {
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		return []string{"name must not be empty"}
	}
	return nil
}

type CategoryController struct {
	Logger  *slog.Logger
	Service domain.CategoryService
}

func NewCategoryController(logger *slog.Logger, svc domain.CategoryService) *CategoryController {
	return &CategoryController{Logger: logger, Service: svc}
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the categories"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [get]
func (c *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := c.Service.List(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if cats == nil {
		cats = []*domain.Category{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, cats)
}

// GetCategory godoc
// @Summary Get a category by ID
// @Tags categories
// @Produce json
// @Param categoryID path string true "Category ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the category"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{categoryID} [get]
func (c *CategoryController) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "categoryID")
	if !ok {
		return
	}
	cat, err := c.Service.Get(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, cat)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CategoryRequest true "Category data"
// @Success 201 {object} helpers.APIResponse "data contains the created category"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /categories [post]
func (c *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	cat, err := c.Service.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, cat)
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param categoryID path string true "Category ID (UUID)"
// @Param body body UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated category"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{categoryID} [patch]
func (c *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "categoryID")
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	cat, err := c.Service.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, cat)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Deletes the category together with all of its events.
// @Tags categories
// @Security BearerAuth
// @Param categoryID path string true "Category ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{categoryID} [delete]
func (c *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "categoryID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
