package products

import (
	"time"

	"github.com/eps-tools/storefront-backend/pkg/db/models"
)

// ProductDTO is the product payload returned to clients. Money is rendered
// as fixed two-place decimal strings.
type ProductDTO struct {
	ID               int64     `json:"id"`
	SKU              string    `json:"sku"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Description      *string   `json:"description,omitempty"`
	ShortDescription *string   `json:"short_description,omitempty"`
	Price            string    `json:"price"`
	OriginalPrice    *string   `json:"original_price,omitempty"`
	ImageURL         *string   `json:"image_url,omitempty"`
	Stock            *int      `json:"stock"`
	CategoryID       int64     `json:"category_id"`
	IsActive         bool      `json:"is_active"`
	IsFeatured       bool      `json:"is_featured"`
	Tag              *string   `json:"tag,omitempty"`
	Rating           string    `json:"rating"`
	ReviewCount      int       `json:"review_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SearchResult is one page of a product search. Total counts the whole
// filtered set.
type SearchResult struct {
	Products   []ProductDTO `json:"products"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int64        `json:"total_pages"`
}

// ImportRowError describes one rejected bulk import row.
type ImportRowError struct {
	Index   int    `json:"index"`
	SKU     string `json:"sku"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

func NewProductDTO(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price.StringFixed(2),
		ImageURL:         p.ImageURL,
		Stock:            p.Stock,
		CategoryID:       p.CategoryID,
		IsActive:         p.IsActive,
		IsFeatured:       p.IsFeatured,
		Tag:              p.Tag,
		Rating:           p.Rating.StringFixed(1),
		ReviewCount:      p.ReviewCount,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.OriginalPrice.Valid {
		v := p.OriginalPrice.Decimal.StringFixed(2)
		dto.OriginalPrice = &v
	}
	return dto
}

func toDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out
}
