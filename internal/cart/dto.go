package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eps-tools/storefront-backend/internal/products"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
)

// Line joins a cart item to the live product it references.
type Line struct {
	Item    models.CartItem
	Product models.Product
}

// Total is the live price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Item.Quantity)))
}

// CartItemDTO is a bare cart line.
type CartItemDTO struct {
	ID        int64     `json:"id"`
	CartID    string    `json:"cart_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// CartLineDTO is a cart line with its product. Unavailable lines reference
// a deactivated product and are excluded from the subtotal.
type CartLineDTO struct {
	CartItemDTO
	Product   products.ProductDTO `json:"product"`
	Available bool                `json:"available"`
	LineTotal string              `json:"line_total"`
}

// CartDTO is the full cart view.
type CartDTO struct {
	CartID    string        `json:"cart_id"`
	Items     []CartLineDTO `json:"items"`
	ItemCount int           `json:"item_count"`
	Subtotal  string        `json:"subtotal"`
}

func NewCartItemDTO(item *models.CartItem) *CartItemDTO {
	if item == nil {
		return nil
	}
	return &CartItemDTO{
		ID:        item.ID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
	}
}

func newCartDTO(cartID string, lines []Line) *CartDTO {
	out := &CartDTO{CartID: cartID, Items: make([]CartLineDTO, 0, len(lines))}
	subtotal := decimal.Zero
	for i := range lines {
		line := lines[i]
		available := line.Product.IsActive
		if available {
			subtotal = subtotal.Add(line.Total())
			out.ItemCount += line.Item.Quantity
		}
		out.Items = append(out.Items, CartLineDTO{
			CartItemDTO: *NewCartItemDTO(&line.Item),
			Product:     *products.NewProductDTO(&line.Product),
			Available:   available,
			LineTotal:   line.Total().StringFixed(2),
		})
	}
	out.Subtotal = subtotal.StringFixed(2)
	return out
}
