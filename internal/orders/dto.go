package orders

import (
	"time"

	"github.com/eps-tools/storefront-backend/internal/products"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
)

// OrderItemDTO renders a frozen order line. Product carries the live product
// when it still exists.
type OrderItemDTO struct {
	ID           int64                `json:"id"`
	ProductID    *int64               `json:"product_id"`
	ProductName  string               `json:"product_name"`
	ProductSKU   string               `json:"product_sku"`
	ProductPrice string               `json:"product_price"`
	Quantity     int                  `json:"quantity"`
	TotalPrice   string               `json:"total_price"`
	Product      *products.ProductDTO `json:"product,omitempty"`
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID            int64          `json:"id"`
	UserID        *int64         `json:"user_id,omitempty"`
	CartID        *string        `json:"cart_id,omitempty"`
	CustomerName  string         `json:"customer_name"`
	CustomerEmail string         `json:"customer_email"`
	CustomerPhone string         `json:"customer_phone"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	PostalCode    *string        `json:"postal_code,omitempty"`
	Status        string         `json:"status"`
	TotalAmount   string         `json:"total_amount"`
	PaymentMethod string         `json:"payment_method"`
	PaymentStatus string         `json:"payment_status"`
	Notes         *string        `json:"notes,omitempty"`
	Items         []OrderItemDTO `json:"items"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// OrderList is one page of orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int64      `json:"total_pages"`
}

func NewOrderDTO(order *models.Order, live map[int64]models.Product) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:            order.ID,
		UserID:        order.UserID,
		CartID:        order.CartID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Address:       order.Address,
		City:          order.City,
		PostalCode:    order.PostalCode,
		Status:        order.Status.String(),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus.String(),
		Notes:         order.Notes,
		Items:         make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductSKU:   item.ProductSKU,
			ProductPrice: item.ProductPrice.StringFixed(2),
			Quantity:     item.Quantity,
			TotalPrice:   item.TotalPrice.StringFixed(2),
		}
		if item.ProductID != nil {
			if p, ok := live[*item.ProductID]; ok {
				line.Product = products.NewProductDTO(&p)
			}
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
