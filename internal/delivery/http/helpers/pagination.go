package helpers

import (
	"net/http"
	"strconv"

	"eventmanager/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the query string. Missing,
// malformed or non-positive values fall back to the defaults; page_size is
// capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.PaginationParams{
		Page:     positiveInt(q.Get("page"), DefaultPage),
		PageSize: min(positiveInt(q.Get("page_size"), DefaultPageSize), MaxPageSize),
	}
}

func positiveInt(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v >= 1 {
		return v
	}
	return def
}

// PaginationMeta describes where a page sits in the full result.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is the payload of a paginated list response.
type Page[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewPage wraps one page of items with its metadata. A nil slice is encoded
// as an empty array.
func NewPage[T any](items []T, params domain.PaginationParams, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	meta := PaginationMeta{Page: params.Page, PageSize: params.PageSize, Total: total}
	if params.PageSize > 0 {
		meta.TotalPages = (total + params.PageSize - 1) / params.PageSize
	}
	return Page[T]{Items: items, Pagination: meta}
}
