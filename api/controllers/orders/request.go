package orders

import (
	"strings"

	internalorders "github.com/eps-tools/storefront-backend/internal/orders"
)

// Required customer fields are checked by the service so the error lists
// every missing field at once.
type checkoutRequest struct {
	CartID        string  `json:"cart_id" validate:"required,max=64"`
	CustomerName  string  `json:"customer_name" validate:"max=255"`
	CustomerEmail string  `json:"customer_email" validate:"omitempty,email,max=255"`
	CustomerPhone string  `json:"customer_phone" validate:"max=32"`
	Address       string  `json:"address" validate:"max=500"`
	City          string  `json:"city" validate:"max=120"`
	PostalCode    *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	PaymentMethod string  `json:"payment_method" validate:"max=64"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func (r checkoutRequest) toInput() internalorders.CreateOrderInput {
	return internalorders.CreateOrderInput{
		CartID:        strings.TrimSpace(r.CartID),
		CustomerName:  strings.TrimSpace(r.CustomerName),
		CustomerEmail: strings.TrimSpace(r.CustomerEmail),
		CustomerPhone: strings.TrimSpace(r.CustomerPhone),
		Address:       strings.TrimSpace(r.Address),
		City:          strings.TrimSpace(r.City),
		PostalCode:    r.PostalCode,
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
		Notes:         r.Notes,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}
