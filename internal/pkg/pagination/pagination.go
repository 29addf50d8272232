package pagination

import (
	"math"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination represents pagination metadata
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Normalize clamps page to >= 1 and limit to [1, MaxLimit], substituting
// DefaultLimit for a missing limit.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// FromQuery parses page and limit query strings, ignoring garbage.
func FromQuery(pageStr, limitStr string) (int, int) {
	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)
	return Normalize(page, limit)
}

// Skip is the number of documents before the page.
func Skip(page, limit int) int64 {
	page, limit = Normalize(page, limit)
	return int64((page - 1) * limit)
}

// New creates a new pagination instance
func New(page, limit int, total int64) *Pagination {
	page, limit = Normalize(page, limit)

	pages := int(math.Ceil(float64(total) / float64(limit)))

	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
	}
}
