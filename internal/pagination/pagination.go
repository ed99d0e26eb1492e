package pagination

import (
	"math"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (MaxPage-1)*MaxLimit inside an int32 OFFSET.
	MaxPage = math.MaxInt32 / MaxLimit
)

// PageRequest holds pagination parameters parsed from query strings.
// Out-of-range values are clamped by Normalize rather than rejected.
type PageRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize clamps page to [1, MaxPage] and limit to [1, MaxLimit], using
// DefaultLimit when no limit was supplied.
func (p *PageRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// PageResponse wraps a page of items with its metadata.
type PageResponse[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// NewPageResponse creates a PageResponse from the given items and total count.
func NewPageResponse[T any](items []T, page, limit int, total int64) PageResponse[T] {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{
		Items: items,
		Pagination: Meta{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.Limit)
	}
}
