package categories

import (
	"context"

	"github.com/eps-tools/storefront-backend/internal/repo"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository persists categories and owns the product_count column.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Create(category).Error
}

// Save writes every column except product_count.
func (r *Repository) Save(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Omit("product_count", "created_at").Save(category).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns every category ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := r.DB(ctx).Order("name ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the category row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.DB(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountProducts counts every product row referencing the category.
func (r *Repository) CountProducts(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error
	return n, err
}

// AdjustProductCount applies delta to product_count as a single atomic
// UPDATE so concurrent writers never lose increments.
func (r *Repository) AdjustProductCount(ctx context.Context, id int64, delta int64) error {
	if delta == 0 {
		return nil
	}
	res := r.DB(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		UpdateColumn("product_count", gorm.Expr("product_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeInvalidReference, "category %d does not exist", id)
	}
	return nil
}

// RecountProducts rewrites every product_count from the products table and
// returns how many categories changed.
func (r *Repository) RecountProducts(ctx context.Context) (int64, error) {
	res := r.DB(ctx).Exec(`
UPDATE categories
SET product_count = (SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id)
WHERE product_count <> (SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id)`)
	return res.RowsAffected, res.Error
}
