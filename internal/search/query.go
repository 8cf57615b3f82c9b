// Package search implements the product query pipeline: category filter,
// name search, sorting, and pagination over a snapshot of the catalogue.
//
// Every function here is pure. Run copies its input before filtering, so the
// caller's slice (and the store behind it) is never reordered or mutated.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/tbourn/go-products-api/internal/domain"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// Query holds the list parameters accepted by GET /products. Zero values
// mean "not supplied".
type Query struct {
	Category string // case-insensitive exact match
	Search   string // case-insensitive substring of name
	Sort     string // field key, "-" prefix for descending
	Page     int    // 1-based; values < 1 become 1
	Limit    int    // page size; values < 1 become DefaultLimit
}

// Page is one slice of the filtered and sorted catalogue plus metadata.
type Page struct {
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
	Data       []domain.Product `json:"data"`
}

// Run applies filter, search, sort, and pagination in that order.
// An invalid sort key yields an *apperr.Error with status 400.
func Run(items []domain.Product, q Query) (Page, error) {
	out := make([]domain.Product, len(items))
	copy(out, items)

	out = Filter(out, q.Category, q.Search)

	by, err := ParseSort(q.Sort)
	if err != nil {
		return Page{}, err
	}
	by.Apply(out)

	return Paginate(out, q.Page, q.Limit), nil
}

// Filter keeps products whose category equals category and whose name
// contains search, both compared under Unicode case folding. Empty
// arguments disable the corresponding check. The input slice is filtered in
// place.
func Filter(items []domain.Product, category, search string) []domain.Product {
	if category == "" && search == "" {
		return items
	}
	fold := cases.Fold()
	category = fold.String(category)
	search = fold.String(search)

	kept := items[:0]
	for _, p := range items {
		if category != "" && fold.String(p.Category) != category {
			continue
		}
		if search != "" && !strings.Contains(fold.String(p.Name), search) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// Paginate slices items into the requested page. Out-of-range pages return
// an empty, non-nil Data slice.
func Paginate(items []domain.Product, page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	total := len(items)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	data := []domain.Product{}
	if page-1 < totalPages {
		offset := (page - 1) * limit
		end := total
		if limit < total-offset {
			end = offset + limit
		}
		if offset < end {
			data = append(data, items[offset:end]...)
		}
	}

	return Page{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Data:       data,
	}
}
