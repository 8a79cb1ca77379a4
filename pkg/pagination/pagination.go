package pagination

import (
	"math"
	"net/http"
	"strconv"
)

// Bounds describes the default and the inclusive range of an integer query
// parameter. Out-of-range values are clamped, never rejected.
type Bounds struct {
	Default int
	Min     int
	Max     int
}

// Clamp limits v to [b.Min, b.Max].
func (b Bounds) Clamp(v int) int {
	return Clamp(v, b.Min, b.Max)
}

var (
	// PageBounds applies to the 1-based page number.
	PageBounds = Bounds{Default: 1, Min: 1, Max: 999999}
	// PageSizeBounds applies to history page sizes.
	PageSizeBounds = Bounds{Default: 10, Min: 5, Max: 50}
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IntParam reads an integer query parameter. A missing or unparsable value
// yields b.Default; fractions are truncated toward zero and the result is
// clamped into range.
func IntParam(r *http.Request, key string, b Bounds) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return b.Default
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return b.Default
	}
	f = math.Trunc(f)
	if f < float64(b.Min) {
		return b.Min
	}
	if f > float64(b.Max) {
		return b.Max
	}
	return int(f)
}

// Params holds the requested page before the total is known.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// DefaultParams returns the first page at the default size.
func DefaultParams() Params {
	return Params{Page: PageBounds.Default, PageSize: PageSizeBounds.Default}
}

// FromRequest extracts page and pageSize from the query string.
func FromRequest(r *http.Request) Params {
	return Params{
		Page:     IntParam(r, "page", PageBounds),
		PageSize: IntParam(r, "pageSize", PageSizeBounds),
	}
}

// Window is a page resolved against a known total.
type Window struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Offset     int `json:"-"`
}

// TotalPages returns ceil(total/pageSize), never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	if pages < 1 {
		return 1
	}
	return pages
}

// Resolve clamps the requested page into [1, totalPages] for the given total
// and computes the row offset.
func (p Params) Resolve(total int) Window {
	size := p.PageSize
	if size <= 0 {
		size = PageSizeBounds.Default
	}
	pages := TotalPages(total, size)
	page := Clamp(p.Page, 1, pages)
	return Window{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
		Offset:     (page - 1) * size,
	}
}

// Result wraps a resolved page of items.
type Result[T any] struct {
	Items      []T    `json:"items"`
	Pagination Window `json:"pagination"`
}

// NewResult creates a paginated result. A nil slice is encoded as [].
func NewResult[T any](items []T, w Window) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Pagination: w}
}
