package models

import "math"

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Page        int64 `json:"page"`
	Limit       int64 `json:"limit"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
}

// NewPage assembles page metadata. TotalPages is never below 1, so the first
// page of an empty listing is in range.
func NewPage[T any](items []T, page, limit, total int64) Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return Page[T]{
		Items:       items,
		Page:        page,
		Limit:       limit,
		TotalItems:  total,
		TotalPages:  TotalPages(total, limit),
		HasPrevPage: page > 1,
		HasNextPage: page < TotalPages(total, limit),
	}
}

func TotalPages(total, limit int64) int64 {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// Skip is the number of rows before the given 1-based page. It saturates at
// math.MaxInt64, so a page far past the end selects nothing.
func Skip(page, limit int64) int64 {
	if page < 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return (page - 1) * limit
}
