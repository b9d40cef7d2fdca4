package cart

type newCartIDResponse struct {
	CartID string `json:"cart_id"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity,omitempty" validate:"omitempty,gte=1,lte=9999"`
}

// quantity defaults to a single unit when omitted.
func (r addItemRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// Values below one are clamped to one by the service.
type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=9999"`
}
