package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Stock nil means the stock is not tracked.
type Product struct {
	ID               int64               `gorm:"column:id;primaryKey;autoIncrement"`
	SKU              string              `gorm:"column:sku;not null;uniqueIndex"`
	Name             string              `gorm:"column:name;not null"`
	Slug             string              `gorm:"column:slug;not null;uniqueIndex"`
	Description      *string             `gorm:"column:description"`
	ShortDescription *string             `gorm:"column:short_description"`
	Price            decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice    decimal.NullDecimal `gorm:"column:original_price;type:numeric(12,2)"`
	ImageURL         *string             `gorm:"column:image_url"`
	Stock            *int                `gorm:"column:stock"`
	CategoryID       int64               `gorm:"column:category_id;not null;index"`
	IsActive         bool                `gorm:"column:is_active;not null"`
	IsFeatured       bool                `gorm:"column:is_featured;not null"`
	Tag              *string             `gorm:"column:tag"`
	Rating           decimal.Decimal     `gorm:"column:rating;type:numeric(3,1);not null"`
	ReviewCount      int                 `gorm:"column:review_count;not null"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
