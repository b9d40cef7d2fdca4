package cart

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eps-tools/storefront-backend/internal/repo"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
)

// Repository manages persistent cart items.
type Repository struct {
	repo.Base
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// Upsert adds quantity to the (cart, product) line, creating it when absent.
// The unique (cart_id, product_id) index makes concurrent adds merge into a
// single row.
func (r *Repository) Upsert(ctx context.Context, cartID string, productID int64, quantity int) (*models.CartItem, error) {
	item := &models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err := r.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("cart_items.quantity + excluded.quantity")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
		},
	}).Create(item).Error
	if err != nil {
		return nil, err
	}
	return r.FindByCartAndProduct(ctx, cartID, productID)
}

func (r *Repository) FindByID(ctx context.Context, cartID string, id int64) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB(ctx).First(&item, "id = ? AND cart_id = ?", id, cartID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) FindByCartAndProduct(ctx context.Context, cartID string, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB(ctx).First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByCart returns the cart's lines in the order they were added.
func (r *Repository) ListByCart(ctx context.Context, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB(ctx).Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateQuantity sets the line quantity and reports whether the line exists
// in the cart.
func (r *Repository) UpdateQuantity(ctx context.Context, cartID string, id int64, quantity int) (bool, error) {
	res := r.DB(ctx).Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", id, cartID).
		Update("quantity", quantity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes one line of the cart. Missing lines are not an error.
func (r *Repository) Delete(ctx context.Context, cartID string, id int64) error {
	return r.DB(ctx).Delete(&models.CartItem{}, "id = ? AND cart_id = ?", id, cartID).Error
}

// DeleteByCart removes every line of the cart. An empty cart is not an error.
func (r *Repository) DeleteByCart(ctx context.Context, cartID string) error {
	return r.DB(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
