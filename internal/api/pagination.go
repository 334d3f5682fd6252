package api

import (
	"fmt"
	"net/http"
	"strconv"

	"holder-flow/internal/analytics"
)

// Page describes one page of a paginated list.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Paginate returns the items of the 1-based page. A page past the end is empty, never nil.
func Paginate[T any](items []T, page, limit int) ([]T, Page) {
	p := Page{Page: page, Limit: limit, Total: len(items)}
	if limit > 0 {
		p.Pages = (len(items) + limit - 1) / limit
	}

	from := (page - 1) * limit
	if page < 1 || limit < 1 || from >= len(items) {
		return []T{}, p
	}
	to := min(from+limit, len(items))
	return items[from:to], p
}

// parsePage reads page and limit query parameters. limit defaults to def and may not exceed maxLimit.
func parsePage(r *http.Request, def, maxLimit int) (page, limit int, err error) {
	page, limit = 1, def
	q := r.URL.Query()
	if s := q.Get("page"); s != "" {
		page, err = strconv.Atoi(s)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("%w: page must be a positive integer, got %q", analytics.ErrInvalidRequest, s)
		}
	}
	if s := q.Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d, got %q", analytics.ErrInvalidRequest, maxLimit, s)
		}
	}
	return page, limit, nil
}
