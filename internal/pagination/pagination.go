// Package pagination slices ordered result sets into fixed-size pages.
package pagination

import "strconv"

// PageSize is the number of items shown per listing page.
const PageSize = 10

// Page is one window over an ordered slice plus the metadata a listing
// template needs to render page controls.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Number     int  `json:"number"`
	TotalPages int  `json:"total_pages"`
	Count      int  `json:"count"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Paginate returns the requested 1-based page of items. Page numbers below 1
// clamp to the first page and numbers past the end clamp to the last page, so
// a stale link never errors. An empty input yields a single empty page.
func Paginate[T any](items []T, number int) Page[T] {
	count := len(items)
	totalPages := (count + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * PageSize
	end := start + PageSize
	if end > count {
		end = count
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		TotalPages: totalPages,
		Count:      count,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
}

// ParsePageParam turns a raw ?page= value into a page number. Anything that
// is not a positive integer falls back to page 1.
func ParsePageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
