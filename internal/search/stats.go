package search

import (
	"strings"

	"github.com/tbourn/go-products-api/internal/domain"
)

// CategoryCounts tallies products per category. Blank categories are counted
// under domain.UncategorizedLabel. Category names are kept as stored.
func CategoryCounts(items []domain.Product) map[string]int {
	counts := make(map[string]int)
	for _, p := range items {
		cat := p.Category
		if strings.TrimSpace(cat) == "" {
			cat = domain.UncategorizedLabel
		}
		counts[cat]++
	}
	return counts
}
