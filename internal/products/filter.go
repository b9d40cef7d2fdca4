package products

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eps-tools/storefront-backend/internal/repo"
	"github.com/eps-tools/storefront-backend/pkg/enums"
)

// Filter narrows the product set. Every field is optional; the zero value
// matches all active products in featured order.
type Filter struct {
	Query           string
	CategoryID      *int64
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Sort            enums.ProductSort
	IncludeInactive bool
}

// Every ordering ends on id so equal keys keep a fixed relative order
// across calls.
var sortClauses = map[enums.ProductSort][]string{
	enums.ProductSortFeatured:  {"is_featured DESC", "id ASC"},
	enums.ProductSortPriceLow:  {"price ASC", "id ASC"},
	enums.ProductSortPriceHigh: {"price DESC", "id ASC"},
	enums.ProductSortNewest:    {"created_at DESC", "id DESC"},
	enums.ProductSortPopular:   {"rating DESC", "review_count DESC", "id ASC"},
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		pattern := repo.ContainsPattern(term)
		q = q.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	return q
}

func (f Filter) order(q *gorm.DB) *gorm.DB {
	clauses, ok := sortClauses[f.Sort]
	if !ok {
		clauses = sortClauses[enums.ProductSortFeatured]
	}
	for _, c := range clauses {
		q = q.Order(c)
	}
	return q
}
