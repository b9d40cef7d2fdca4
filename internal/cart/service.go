package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/eps-tools/storefront-backend/pkg/db"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
	"github.com/eps-tools/storefront-backend/pkg/metrics"
)

const maxCartIDLength = 64

type productLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error)
}

// Service exposes guest cart operations. Carts are identified only by an
// opaque client-held id.
type Service interface {
	NewCartID() string
	AddToCart(ctx context.Context, cartID string, productID int64, quantity int) (*CartItemDTO, error)
	UpdateQuantity(ctx context.Context, cartID string, itemID int64, quantity int) (*CartItemDTO, error)
	RemoveItem(ctx context.Context, cartID string, itemID int64) error
	ClearCart(ctx context.Context, cartID string) error
	GetCartItems(ctx context.Context, cartID string) ([]CartItemDTO, error)
	GetCartItemWithProduct(ctx context.Context, cartID string) ([]Line, error)
	GetCart(ctx context.Context, cartID string) (*CartDTO, error)
}

type service struct {
	repo     *Repository
	products productLoader
	metrics  *metrics.Storefront
}

// NewService builds a cart service. m may be nil.
func NewService(repo *Repository, products productLoader, m *metrics.Storefront) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products, metrics: m}, nil
}

func (s *service) NewCartID() string {
	return uuid.NewString()
}

// AddToCart merges into an existing line for the same product instead of
// adding a second one.
func (s *service) AddToCart(ctx context.Context, cartID string, productID int64, quantity int) (*CartItemDTO, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, unavailable(productID, err)
		}
		return nil, db.MapError(err, "product")
	}
	if !product.IsActive {
		return nil, unavailable(productID, nil)
	}

	item, err := s.repo.Upsert(ctx, cartID, productID, quantity)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, unavailable(productID, err)
		}
		return nil, db.MapError(err, "cart item")
	}
	s.metrics.CartItemsAdded(quantity)
	return NewCartItemDTO(item), nil
}

// UpdateQuantity sets the line quantity, raising anything below 1 to 1.
func (s *service) UpdateQuantity(ctx context.Context, cartID string, itemID int64, quantity int) (*CartItemDTO, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}
	ok, err := s.repo.UpdateQuantity(ctx, cartID, itemID, quantity)
	if err != nil {
		return nil, db.MapError(err, "cart item")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	item, err := s.repo.FindByID(ctx, cartID, itemID)
	if err != nil {
		return nil, db.MapError(err, "cart item")
	}
	return NewCartItemDTO(item), nil
}

func (s *service) RemoveItem(ctx context.Context, cartID string, itemID int64) error {
	if err := validateCartID(cartID); err != nil {
		return err
	}
	return db.MapError(s.repo.Delete(ctx, cartID, itemID), "cart item")
}

func (s *service) ClearCart(ctx context.Context, cartID string) error {
	if err := validateCartID(cartID); err != nil {
		return err
	}
	return db.MapError(s.repo.DeleteByCart(ctx, cartID), "cart")
}

func (s *service) GetCartItems(ctx context.Context, cartID string) ([]CartItemDTO, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByCart(ctx, cartID)
	if err != nil {
		return nil, db.MapError(err, "cart")
	}
	out := make([]CartItemDTO, 0, len(items))
	for i := range items {
		out = append(out, *NewCartItemDTO(&items[i]))
	}
	return out, nil
}

// GetCartItemWithProduct joins each line to its product. Lines whose
// product no longer exists are dropped.
func (s *service) GetCartItemWithProduct(ctx context.Context, cartID string) ([]Line, error) {
	if err := validateCartID(cartID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByCart(ctx, cartID)
	if err != nil {
		return nil, db.MapError(err, "cart")
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	byID, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, db.MapError(err, "product")
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, Line{Item: item, Product: product})
	}
	return lines, nil
}

func (s *service) GetCart(ctx context.Context, cartID string) (*CartDTO, error) {
	lines, err := s.GetCartItemWithProduct(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return newCartDTO(cartID, lines), nil
}

func validateCartID(cartID string) error {
	if strings.TrimSpace(cartID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if len(cartID) > maxCartIDLength || strings.ContainsAny(cartID, " \t\r\n/") {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart id is malformed")
	}
	return nil
}

func unavailable(productID int64, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeProductUnavailable, cause, "product is not available").
		WithDetails(map[string]any{"product_id": productID})
}
