package search

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tbourn/go-products-api/internal/apperr"
	"github.com/tbourn/go-products-api/internal/domain"
)

type compareFunc func(a, b *domain.Product) int

// sortKeys is the allow-list of sortable fields, in the order they are
// listed in error messages.
var sortKeys = []struct {
	key string
	cmp compareFunc
}{
	{"id", func(a, b *domain.Product) int { return strings.Compare(a.ID, b.ID) }},
	{"name", func(a, b *domain.Product) int { return strings.Compare(a.Name, b.Name) }},
	{"description", func(a, b *domain.Product) int { return strings.Compare(a.Description, b.Description) }},
	{"price", func(a, b *domain.Product) int { return cmp.Compare(a.Price, b.Price) }},
	{"category", func(a, b *domain.Product) int { return strings.Compare(a.Category, b.Category) }},
	{"inStock", func(a, b *domain.Product) int { return compareBool(a.InStock, b.InStock) }},
}

// SortKeys returns the accepted sort field names.
func SortKeys() []string {
	out := make([]string, len(sortKeys))
	for i, k := range sortKeys {
		out[i] = k.key
	}
	return out
}

// Order is a parsed sort parameter.
type Order struct {
	Key  string // empty means the default collated name order
	Desc bool

	cmp compareFunc
}

// ParseSort turns a sort parameter such as "price" or "-name" into an Order.
// The empty string selects ascending, locale-aware ordering by name.
func ParseSort(s string) (Order, error) {
	if s == "" {
		return Order{}, nil
	}
	key, desc := strings.CutPrefix(s, "-")
	for _, k := range sortKeys {
		if k.key == key {
			return Order{Key: key, Desc: desc, cmp: k.cmp}, nil
		}
	}
	return Order{}, apperr.BadRequest("sort must be one of: " + strings.Join(SortKeys(), ", ") + " (prefix with - for descending)")
}

// Apply sorts items in place. The sort is stable: products with equal keys
// keep their relative order, in both directions.
func (o Order) Apply(items []domain.Product) {
	if o.cmp == nil {
		col := collate.New(language.English)
		slices.SortStableFunc(items, func(a, b domain.Product) int {
			return col.CompareString(a.Name, b.Name)
		})
		return
	}
	slices.SortStableFunc(items, func(a, b domain.Product) int {
		c := o.cmp(&a, &b)
		if o.Desc {
			return -c
		}
		return c
	})
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
