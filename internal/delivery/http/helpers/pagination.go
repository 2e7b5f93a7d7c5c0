package helpers

import (
	"net/http"
	"strconv"

	"moviemate/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the request query string.
// skip and limit are accepted as an offset-style alternative when page is absent.
// Invalid or missing values fall back to defaults; page_size is clamped to MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	pageSize := DefaultPageSize
	for _, key := range []string{"page_size", "limit"} {
		if v, err := strconv.Atoi(q.Get(key)); err == nil && v >= 1 {
			pageSize = min(v, MaxPageSize)
			break
		}
	}
	page := DefaultPage
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		page = v
	} else if skip, err := strconv.Atoi(q.Get("skip")); err == nil && skip > 0 {
		page = skip/pageSize + 1
	}
	return domain.PaginationParams{Page: page, PageSize: pageSize}
}

// PaginationMeta describes the page a list response covers.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page size, and total count.
// TotalPages is computed as ceiling(total / pageSize); if pageSize is 0, TotalPages is 0.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// SetPaginationHeaders exposes PaginationMeta as response headers so list bodies stay plain arrays.
func SetPaginationHeaders(w http.ResponseWriter, meta PaginationMeta) {
	h := w.Header()
	h.Set("X-Total-Count", strconv.Itoa(meta.Total))
	h.Set("X-Page", strconv.Itoa(meta.Page))
	h.Set("X-Page-Size", strconv.Itoa(meta.PageSize))
	h.Set("X-Total-Pages", strconv.Itoa(meta.TotalPages))
}
