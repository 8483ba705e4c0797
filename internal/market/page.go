package market

import (
	"strings"

	"crypto_adda/internal/domain"
)

const (
	CoinsPageSize     = 10
	WatchlistPageSize = 7
)

// SearchByName keeps the coins whose name contains query, ignoring case.
// An empty query returns coins unchanged.
func SearchByName(coins []domain.Coin, query string) []domain.Coin {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return coins
	}

	out := make([]domain.Coin, 0, len(coins))
	for _, c := range coins {
		if strings.Contains(strings.ToLower(c.Name), query) {
			out = append(out, c)
		}
	}
	return out
}

// Page is one slice of a paginated list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// Paginate returns the 1-based page of items. Out-of-range pages are
// clamped to the first or last page.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = CoinsPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size

	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		TotalItems: total,
	}
}

// ShowPagination reports whether pagination controls make sense.
func (p Page[T]) ShowPagination(loading bool) bool {
	return !loading && p.TotalPages > 1
}
