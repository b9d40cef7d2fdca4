package models

import "time"

// DefaultCategoryIcon is assigned when a category is created without one.
const DefaultCategoryIcon = "tool"

// Category groups products. ProductCount is maintained by product writes
// and is never set directly.
type Category struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;not null"`
	Slug         string    `gorm:"column:slug;not null;uniqueIndex"`
	Description  *string   `gorm:"column:description"`
	Icon         string    `gorm:"column:icon;not null"`
	ImageURL     *string   `gorm:"column:image_url"`
	ProductCount int64     `gorm:"column:product_count;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
