// Package paging implements page arithmetic for offset-paginated listings.
package paging

import "math"

// DefaultPage is used when the caller does not ask for a page.
const DefaultPage = 1

// Page describes where a page sits inside an ordered result set.
type Page struct {
	Number     int   `json:"pageNumber"`
	Size       int   `json:"pageSize"`
	Count      int   `json:"pageCount"`
	TotalItems int64 `json:"totalItemCount"`
}

// New computes page metadata for total items split into pages of size.
// Page numbers beyond the last page are kept as-is; the listing for such a
// page is simply empty. Numbers so large that the offset would overflow
// are capped. Callers must reject number < 1 and size < 1.
func New(total int64, number, size int) Page {
	if size < 1 {
		size = 1
	}
	if number < 1 {
		number = DefaultPage
	}
	if maxNumber := math.MaxInt / size; number > maxNumber {
		number = maxNumber
	}
	count := int((total + int64(size) - 1) / int64(size))
	return Page{
		Number:     number,
		Size:       size,
		Count:      count,
		TotalItems: total,
	}
}

// Offset is the number of rows to skip to reach this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// IsFirstPage reports whether there is no previous page.
func (p Page) IsFirstPage() bool {
	return p.Number <= 1
}

// IsPastEnd reports whether the page lies beyond the last page and so
// holds no items.
func (p Page) IsPastEnd() bool {
	return p.Number > p.LastPage()
}

// IsLastPage reports whether there is no next page. An empty result set has
// zero pages, so its only page is both first and last.
func (p Page) IsLastPage() bool {
	return p.Number >= p.Count
}

// LastPage is the number of the final page, never below 1.
func (p Page) LastPage() int {
	if p.Count < 1 {
		return 1
	}
	return p.Count
}

// List is a page of items plus the page it came from.
type List[T any] struct {
	Items []T
	Page  Page
}
