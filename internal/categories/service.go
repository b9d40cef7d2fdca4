package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/eps-tools/storefront-backend/pkg/db"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
	"github.com/eps-tools/storefront-backend/pkg/slug"
	"gorm.io/gorm"
)

// Service exposes category catalog operations.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id int64, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (*CategoryDTO, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*CategoryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	RecountProducts(ctx context.Context) (int64, error)
}

// CreateCategoryInput holds the validated payload to create a category.
// An empty Slug is derived from Name.
type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description *string
	Icon        string
	ImageURL    *string
}

// UpdateCategoryInput holds optional mutation values for a category.
type UpdateCategoryInput struct {
	Name        *string
	Slug        *string
	Description *string
	Icon        *string
	ImageURL    *string
}

type service struct {
	repo     *Repository
	dbClient db.TxRunner
}

// NewService constructs a category service instance.
func NewService(repo *Repository, dbClient db.TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	categorySlug, err := resolveSlug(input.Slug, name)
	if err != nil {
		return nil, err
	}
	icon := strings.TrimSpace(input.Icon)
	if icon == "" {
		icon = models.DefaultCategoryIcon
	}

	category := &models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: trimOptional(input.Description),
		Icon:        icon,
		ImageURL:    trimOptional(input.ImageURL),
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, mapWriteError(err, categorySlug)
	}
	return NewCategoryDTO(category), nil
}

func (s *service) UpdateCategory(ctx context.Context, id int64, input UpdateCategoryInput) (*CategoryDTO, error) {
	var updated *models.Category
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		category, err := repo.FindByID(ctx, id)
		if err != nil {
			return db.MapError(err, "category")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			category.Name = name
		}
		if input.Slug != nil {
			categorySlug, err := resolveSlug(*input.Slug, category.Name)
			if err != nil {
				return err
			}
			category.Slug = categorySlug
		}
		if input.Description != nil {
			category.Description = trimOptional(input.Description)
		}
		if input.Icon != nil {
			category.Icon = strings.TrimSpace(*input.Icon)
			if category.Icon == "" {
				category.Icon = models.DefaultCategoryIcon
			}
		}
		if input.ImageURL != nil {
			category.ImageURL = trimOptional(input.ImageURL)
		}

		if err := repo.Save(ctx, category); err != nil {
			return mapWriteError(err, category.Slug)
		}
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewCategoryDTO(updated), nil
}

// DeleteCategory refuses to remove a category that products still reference.
func (s *service) DeleteCategory(ctx context.Context, id int64) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			return db.MapError(err, "category")
		}

		count, err := repo.CountProducts(ctx, id)
		if err != nil {
			return db.MapError(err, "category")
		}
		if count > 0 {
			return notEmpty(id, count, nil)
		}

		if _, err := repo.Delete(ctx, id); err != nil {
			// a product inserted after the count trips the foreign key
			if db.IsForeignKeyViolation(err) {
				return notEmpty(id, 1, err)
			}
			return db.MapError(err, "category")
		}
		return nil
	})
}

func (s *service) GetCategory(ctx context.Context, id int64) (*CategoryDTO, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "category")
	}
	return NewCategoryDTO(category), nil
}

func (s *service) GetCategoryBySlug(ctx context.Context, categorySlug string) (*CategoryDTO, error) {
	category, err := s.repo.FindBySlug(ctx, strings.TrimSpace(categorySlug))
	if err != nil {
		return nil, db.MapError(err, "category")
	}
	return NewCategoryDTO(category), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.MapError(err, "category")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewCategoryDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) RecountProducts(ctx context.Context) (int64, error) {
	changed, err := s.repo.RecountProducts(ctx)
	if err != nil {
		return 0, db.MapError(err, "category")
	}
	return changed, nil
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

func mapWriteError(err error, categorySlug string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeDuplicateKey, err, "category slug already exists").
			WithDetails(map[string]any{"field": "slug", "value": categorySlug})
	}
	return db.MapError(err, "category")
}

func notEmpty(id, count int64, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeCategoryNotEmpty, cause, "category still has products").
		WithDetails(map[string]any{"category_id": id, "product_count": count})
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
