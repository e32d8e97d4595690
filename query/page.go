package query

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 6
	MaxLimit     = 100
)

// PageRequest is a sanitized page window. Page is always >= 1 and Limit is
// always within [1, MaxLimit].
type PageRequest struct {
	Page   int
	Limit  int
	Offset int
}

// Pagination is the metadata returned next to a page of posts. NextPage and
// PreviousPage are nil when there is no such page.
type Pagination struct {
	TotalItems   int64 `json:"totalPosts"`
	TotalPages   int64 `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
	Limit        int   `json:"limit"`
	NextPage     *int  `json:"nextPage,omitempty"`
	PreviousPage *int  `json:"previousPage,omitempty"`
}

// NewPageRequest parses raw query values. Missing or non-numeric input falls
// back to the defaults; numeric input is clamped.
func NewPageRequest(rawPage, rawLimit string) PageRequest {
	page := parseInt(rawPage, DefaultPage)
	if page < 1 {
		page = 1
	}

	limit := parseInt(rawLimit, DefaultLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PageRequest{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Result derives the pagination metadata once the total row count is known.
func (r PageRequest) Result(totalItems int64) Pagination {
	if totalItems < 0 {
		totalItems = 0
	}
	limit := int64(r.Limit)
	offset := int64(r.Offset)

	p := Pagination{
		TotalItems:  totalItems,
		TotalPages:  (totalItems + limit - 1) / limit,
		CurrentPage: r.Page,
		Limit:       r.Limit,
	}
	if offset+limit < totalItems {
		next := r.Page + 1
		p.NextPage = &next
	}
	if offset > 0 {
		prev := r.Page - 1
		p.PreviousPage = &prev
	}
	return p
}

// ComputePage is NewPageRequest followed by Result.
func ComputePage(rawPage, rawLimit string, totalItems int64) (Pagination, int) {
	req := NewPageRequest(rawPage, rawLimit)
	return req.Result(totalItems), req.Offset
}

// parseInt saturates out-of-range numbers instead of rejecting them, and
// caps them well below the point where (page-1)*limit could overflow.
func parseInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fallback
	}
	const bound = math.MaxInt32
	if n > bound {
		return bound
	}
	if n < -bound {
		return -bound
	}
	return int(n)
}
