package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eps-tools/storefront-backend/internal/categories"
	"github.com/eps-tools/storefront-backend/pkg/db"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
	"github.com/eps-tools/storefront-backend/pkg/logger"
	"github.com/eps-tools/storefront-backend/pkg/metrics"
	"github.com/eps-tools/storefront-backend/pkg/pagination"
	"github.com/eps-tools/storefront-backend/pkg/slug"
)

const defaultFeaturedLimit = 8

var maxRating = decimal.NewFromInt(5)

// Service exposes catalog product operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
	GetProduct(ctx context.Context, id int64, includeInactive bool) (*ProductDTO, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	ListProducts(ctx context.Context, includeInactive bool, page pagination.Params) (*SearchResult, error)
	ListByCategory(ctx context.Context, categoryID int64, page pagination.Params) (*SearchResult, error)
	ListFeatured(ctx context.Context, limit int) ([]ProductDTO, error)
	SearchProducts(ctx context.Context, filter Filter, page pagination.Params) (*SearchResult, error)
	BulkImport(ctx context.Context, rows []CreateProductInput) (*ImportResult, error)
}

// CreateProductInput holds the validated payload to create a product. An
// empty Slug is derived from Name; a nil IsActive means active.
type CreateProductInput struct {
	SKU              string
	Name             string
	Slug             string
	Description      *string
	ShortDescription *string
	Price            decimal.Decimal
	OriginalPrice    *decimal.Decimal
	ImageURL         *string
	Stock            *int
	CategoryID       int64
	IsActive         *bool
	IsFeatured       bool
	Tag              *string
	Rating           *decimal.Decimal
	ReviewCount      int
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	SKU                *string
	Name               *string
	Slug               *string
	Description        *string
	ShortDescription   *string
	Price              *decimal.Decimal
	OriginalPrice      *decimal.Decimal
	ClearOriginalPrice bool
	ImageURL           *string
	Stock              *int
	ClearStock         bool
	CategoryID         *int64
	IsActive           *bool
	IsFeatured         *bool
	Tag                *string
	Rating             *decimal.Decimal
	ReviewCount        *int
}

type service struct {
	repo         *Repository
	categoryRepo *categories.Repository
	dbClient     db.TxRunner
	metrics      *metrics.Storefront
	logg         *logger.Logger
	defaultLimit int
}

// ServiceParams groups NewService dependencies. Metrics is optional.
type ServiceParams struct {
	Repo         *Repository
	CategoryRepo *categories.Repository
	DB           db.TxRunner
	Metrics      *metrics.Storefront
	Logger       *logger.Logger
	DefaultLimit int
}

// NewService constructs a product service instance.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if p.CategoryRepo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if p.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:         p.Repo,
		categoryRepo: p.CategoryRepo,
		dbClient:     p.DB,
		metrics:      p.Metrics,
		logg:         p.Logger,
		defaultLimit: p.DefaultLimit,
	}, nil
}

// CreateProduct inserts the product and bumps its category counter in the
// same transaction.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	product, err := buildProduct(input)
	if err != nil {
		return nil, err
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := ensureCategory(ctx, s.categoryRepo.WithTx(tx), product.CategoryID); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return mapWriteError(err, product)
		}
		return s.categoryRepo.WithTx(tx).AdjustProductCount(ctx, product.CategoryID, 1)
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

// UpdateProduct applies the partial update. A category move decrements the
// old counter and increments the new one inside the same transaction as the
// row write.
func (s *service) UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error) {
	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		categoryRepo := s.categoryRepo.WithTx(tx)

		product, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return db.MapError(err, "product")
		}
		previousCategory := product.CategoryID

		if err := applyUpdate(product, input); err != nil {
			return err
		}

		if product.CategoryID != previousCategory {
			if err := ensureCategory(ctx, categoryRepo, product.CategoryID); err != nil {
				return err
			}
		}
		if err := repo.Save(ctx, product); err != nil {
			return mapWriteError(err, product)
		}
		if product.CategoryID != previousCategory {
			if err := categoryRepo.AdjustProductCount(ctx, previousCategory, -1); err != nil {
				return err
			}
			if err := categoryRepo.AdjustProductCount(ctx, product.CategoryID, 1); err != nil {
				return err
			}
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct hard deletes the product. A missing id reports false
// without an error.
func (s *service) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return nil
			}
			return db.MapError(err, "product")
		}
		ok, err := repo.Delete(ctx, id)
		if err != nil {
			return db.MapError(err, "product")
		}
		if !ok {
			return nil
		}
		if err := s.categoryRepo.WithTx(tx).AdjustProductCount(ctx, product.CategoryID, -1); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *service) GetProduct(ctx context.Context, id int64, includeInactive bool) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "product")
	}
	if !product.IsActive && !includeInactive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) GetProductBySlug(ctx context.Context, productSlug string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, strings.TrimSpace(productSlug))
	if err != nil {
		return nil, db.MapError(err, "product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, includeInactive bool, page pagination.Params) (*SearchResult, error) {
	return s.SearchProducts(ctx, Filter{IncludeInactive: includeInactive}, page)
}

func (s *service) ListByCategory(ctx context.Context, categoryID int64, page pagination.Params) (*SearchResult, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, db.MapError(err, "category")
	}
	return s.SearchProducts(ctx, Filter{CategoryID: &categoryID}, page)
}

func (s *service) ListFeatured(ctx context.Context, limit int) ([]ProductDTO, error) {
	rows, err := s.repo.ListFeatured(ctx, pagination.NormalizeLimit(limit, defaultFeaturedLimit))
	if err != nil {
		return nil, db.MapError(err, "product")
	}
	return toDTOs(rows), nil
}

// SearchProducts runs the catalog filter. A page past the end yields no
// products and the full total.
func (s *service) SearchProducts(ctx context.Context, filter Filter, page pagination.Params) (*SearchResult, error) {
	if filter.Sort != "" && !filter.Sort.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown sort %q", filter.Sort)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price cannot exceed max_price")
	}

	if err := page.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	page = page.Normalize(s.defaultLimit)
	rows, total, err := s.repo.Search(ctx, filter, page)
	if err != nil {
		return nil, db.MapError(err, "product")
	}
	return &SearchResult{
		Products:   toDTOs(rows),
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}, nil
}

func buildProduct(input CreateProductInput) (*models.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.CategoryID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	productSlug, err := resolveSlug(input.Slug, name)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:              sku,
		Name:             name,
		Slug:             productSlug,
		Description:      trimOptional(input.Description),
		ShortDescription: trimOptional(input.ShortDescription),
		Price:            input.Price,
		ImageURL:         trimOptional(input.ImageURL),
		Stock:            input.Stock,
		CategoryID:       input.CategoryID,
		IsActive:         true,
		IsFeatured:       input.IsFeatured,
		Tag:              trimOptional(input.Tag),
		ReviewCount:      input.ReviewCount,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = decimal.NewNullDecimal(*input.OriginalPrice)
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) error {
	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
		if product.SKU == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be empty")
		}
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
		if product.Name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
	}
	if input.Slug != nil {
		productSlug, err := resolveSlug(*input.Slug, product.Name)
		if err != nil {
			return err
		}
		product.Slug = productSlug
	}
	if input.Description != nil {
		product.Description = trimOptional(input.Description)
	}
	if input.ShortDescription != nil {
		product.ShortDescription = trimOptional(input.ShortDescription)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	switch {
	case input.ClearOriginalPrice:
		product.OriginalPrice = decimal.NullDecimal{}
	case input.OriginalPrice != nil:
		product.OriginalPrice = decimal.NewNullDecimal(*input.OriginalPrice)
	}
	if input.ImageURL != nil {
		product.ImageURL = trimOptional(input.ImageURL)
	}
	switch {
	case input.ClearStock:
		product.Stock = nil
	case input.Stock != nil:
		stock := *input.Stock
		product.Stock = &stock
	}
	if input.CategoryID != nil {
		if *input.CategoryID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "category_id must be positive")
		}
		product.CategoryID = *input.CategoryID
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.Tag != nil {
		product.Tag = trimOptional(input.Tag)
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.ReviewCount != nil {
		product.ReviewCount = *input.ReviewCount
	}
	return validateProduct(product)
}

func validateProduct(p *models.Product) error {
	if p.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be >= 0")
	}
	if p.OriginalPrice.Valid && p.OriginalPrice.Decimal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "original_price must be >= 0")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must be >= 0")
	}
	if p.Rating.IsNegative() || p.Rating.GreaterThan(maxRating) {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	if p.ReviewCount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "review_count must be >= 0")
	}
	p.Price = p.Price.Round(2)
	if p.OriginalPrice.Valid {
		p.OriginalPrice.Decimal = p.OriginalPrice.Decimal.Round(2)
	}
	p.Rating = p.Rating.Round(1)
	return nil
}

func ensureCategory(ctx context.Context, repo *categories.Repository, id int64) error {
	if _, err := repo.FindByID(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInvalidReference, err, "category does not exist").
				WithDetails(map[string]any{"category_id": id})
		}
		return db.MapError(err, "category")
	}
	return nil
}

func resolveSlug(raw, name string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = slug.Make(name)
	}
	if !slug.Valid(value) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens").
			WithDetails(map[string]any{"slug": value})
	}
	return value, nil
}

func mapWriteError(err error, p *models.Product) error {
	switch {
	case db.IsUniqueViolation(err, "sku"):
		return pkgerrors.Wrap(pkgerrors.CodeDuplicateKey, err, "product sku already exists").
			WithDetails(map[string]any{"field": "sku", "value": p.SKU})
	case db.IsUniqueViolation(err, "slug"):
		return pkgerrors.Wrap(pkgerrors.CodeDuplicateKey, err, "product slug already exists").
			WithDetails(map[string]any{"field": "slug", "value": p.Slug})
	}
	return db.MapError(err, "product")
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
