package models

// FeedPageSize is the fixed page size for every post listing.
const FeedPageSize = 10

// Page is a server-side pagination window over a listing. Out-of-range page
// numbers are clamped by ClampPage before a Page is built, so a Page always
// describes a valid window.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	Number      int   `json:"page"`
	Size        int   `json:"page_size"`
	NumPages    int   `json:"num_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NumPages returns the number of pages needed for total items at the given
// size. An empty listing still has one (empty) page.
func NumPages(total int64, size int) int {
	if size <= 0 {
		return 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage snaps a requested 1-based page number into the valid range for
// the listing. Requests beyond the last page return the last page, requests
// below the first return the first; a page number never produces an error.
func ClampPage(number int, total int64, size int) int {
	last := NumPages(total, size)
	if number < 1 {
		return 1
	}
	if number > last {
		return last
	}
	return number
}

// NewPage assembles a Page for an already-clamped page number.
func NewPage[T any](items []T, total int64, number, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := NumPages(total, size)
	return Page[T]{
		Items:       items,
		Total:       total,
		Number:      number,
		Size:        size,
		NumPages:    pages,
		HasNext:     number < pages,
		HasPrevious: number > 1,
	}
}

// Offset returns the query offset for an already-clamped page number.
func Offset(number, size int) int {
	if number < 1 {
		number = 1
	}
	return (number - 1) * size
}
