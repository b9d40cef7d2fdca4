package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eps-tools/storefront-backend/pkg/enums"
)

// Order is an immutable snapshot of a checked-out cart. Only Status and
// PaymentStatus change after creation.
type Order struct {
	ID            int64               `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        *int64              `gorm:"column:user_id"`
	CartID        *string             `gorm:"column:cart_id"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	CustomerEmail string              `gorm:"column:customer_email;not null"`
	CustomerPhone string              `gorm:"column:customer_phone;not null"`
	Address       string              `gorm:"column:address;not null"`
	City          string              `gorm:"column:city;not null"`
	PostalCode    *string             `gorm:"column:postal_code"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;index"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaymentMethod string              `gorm:"column:payment_method;not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	Notes         *string             `gorm:"column:notes"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem freezes a product's name and unit price at checkout time.
// ProductID is informational and is cleared if the product is removed.
type OrderItem struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID      int64           `gorm:"column:order_id;not null;index"`
	ProductID    *int64          `gorm:"column:product_id"`
	ProductName  string          `gorm:"column:product_name;not null"`
	ProductSKU   string          `gorm:"column:product_sku;not null"`
	ProductPrice decimal.Decimal `gorm:"column:product_price;type:numeric(12,2);not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	TotalPrice   decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
