package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/eps-tools/storefront-backend/api/responses"
	"github.com/eps-tools/storefront-backend/api/validators"
	productsvc "github.com/eps-tools/storefront-backend/internal/products"
	"github.com/eps-tools/storefront-backend/pkg/enums"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
	"github.com/eps-tools/storefront-backend/pkg/logger"
	"github.com/eps-tools/storefront-backend/pkg/pagination"
)

// ProductSearch serves the public catalog: text query, category, price
// range, sort and page all come from the query string.
func ProductSearch(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filter, err := parseProductFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := parsePage(r, 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SearchProducts(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductFeatured(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListFeatured(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductGet returns an active product; AdminProductGet also sees inactive ones.
func ProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productGet(svc, logg, false)
}

func AdminProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productGet(svc, logg, true)
}

func productGet(svc productsvc.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductGetBySlug(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		product, err := svc.GetProductBySlug(r.Context(), strings.TrimSpace(chi.URLParam(r, "slug")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminProductList pages through the whole catalog, inactive products included.
func AdminProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		page, err := parsePage(r, 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), true, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminCreateProduct handles product creation.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toCreateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial update. Moving a product between
// categories adjusts both counters.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, payload.toUpdateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct is idempotent: deleting a missing product still answers 200
// with deleted=false.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deleted, err := svc.DeleteProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": deleted})
	}
}

func AdminBulkImportProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload bulkImportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]productsvc.CreateProductInput, 0, len(payload.Products))
		for _, p := range payload.Products {
			rows = append(rows, p.toCreateInput())
		}

		result, err := svc.BulkImport(r.Context(), rows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type createProductRequest struct {
	SKU              string           `json:"sku" validate:"required,max=64"`
	Name             string           `json:"name" validate:"required,max=255"`
	Slug             string           `json:"slug,omitempty" validate:"omitempty,max=280,slug"`
	Description      *string          `json:"description,omitempty"`
	ShortDescription *string          `json:"short_description,omitempty" validate:"omitempty,max=500"`
	Price            *decimal.Decimal `json:"price" validate:"required,gte=0"`
	OriginalPrice    *decimal.Decimal `json:"original_price,omitempty" validate:"omitempty,gte=0"`
	ImageURL         *string          `json:"image_url,omitempty" validate:"omitempty,max=1000"`
	Stock            *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	CategoryID       int64            `json:"category_id" validate:"required,gt=0"`
	IsActive         *bool            `json:"is_active,omitempty"`
	IsFeatured       bool             `json:"is_featured,omitempty"`
	Tag              *string          `json:"tag,omitempty" validate:"omitempty,max=64"`
	Rating           *decimal.Decimal `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount      int              `json:"review_count,omitempty" validate:"gte=0"`
}

func (r createProductRequest) toCreateInput() productsvc.CreateProductInput {
	input := productsvc.CreateProductInput{
		SKU:              strings.TrimSpace(r.SKU),
		Name:             strings.TrimSpace(r.Name),
		Slug:             strings.TrimSpace(r.Slug),
		Description:      r.Description,
		ShortDescription: trimmedPtr(r.ShortDescription),
		OriginalPrice:    r.OriginalPrice,
		ImageURL:         trimmedPtr(r.ImageURL),
		Stock:            r.Stock,
		CategoryID:       r.CategoryID,
		IsActive:         r.IsActive,
		IsFeatured:       r.IsFeatured,
		Tag:              trimmedPtr(r.Tag),
		Rating:           r.Rating,
		ReviewCount:      r.ReviewCount,
	}
	if r.Price != nil {
		input.Price = *r.Price
	}
	return input
}

type updateProductRequest struct {
	SKU                *string          `json:"sku,omitempty" validate:"omitempty,min=1,max=64"`
	Name               *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Slug               *string          `json:"slug,omitempty" validate:"omitempty,max=280,slug"`
	Description        *string          `json:"description,omitempty"`
	ShortDescription   *string          `json:"short_description,omitempty" validate:"omitempty,max=500"`
	Price              *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
	OriginalPrice      *decimal.Decimal `json:"original_price,omitempty" validate:"omitempty,gte=0"`
	ClearOriginalPrice bool             `json:"clear_original_price,omitempty"`
	ImageURL           *string          `json:"image_url,omitempty" validate:"omitempty,max=1000"`
	Stock              *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	ClearStock         bool             `json:"clear_stock,omitempty"`
	CategoryID         *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	IsActive           *bool            `json:"is_active,omitempty"`
	IsFeatured         *bool            `json:"is_featured,omitempty"`
	Tag                *string          `json:"tag,omitempty" validate:"omitempty,max=64"`
	Rating             *decimal.Decimal `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount        *int             `json:"review_count,omitempty" validate:"omitempty,gte=0"`
}

func (r updateProductRequest) toUpdateInput() productsvc.UpdateProductInput {
	return productsvc.UpdateProductInput{
		SKU:                trimmedPtr(r.SKU),
		Name:               trimmedPtr(r.Name),
		Slug:               trimmedPtr(r.Slug),
		Description:        r.Description,
		ShortDescription:   trimmedPtr(r.ShortDescription),
		Price:              r.Price,
		OriginalPrice:      r.OriginalPrice,
		ClearOriginalPrice: r.ClearOriginalPrice,
		ImageURL:           trimmedPtr(r.ImageURL),
		Stock:              r.Stock,
		ClearStock:         r.ClearStock,
		CategoryID:         r.CategoryID,
		IsActive:           r.IsActive,
		IsFeatured:         r.IsFeatured,
		Tag:                trimmedPtr(r.Tag),
		Rating:             r.Rating,
		ReviewCount:        r.ReviewCount,
	}
}

// Rows that fail schema validation reject the whole batch; rows that fail on
// data (duplicate sku, unknown category) are reported per row.
type bulkImportRequest struct {
	Products []createProductRequest `json:"products" validate:"required,min=1,max=1000,dive"`
}

func parseProductFilter(r *http.Request) (productsvc.Filter, error) {
	q := r.URL.Query()

	sort, err := enums.ParseProductSort(strings.TrimSpace(q.Get("sort")))
	if err != nil {
		return productsvc.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").WithDetails(map[string]any{"field": "sort"})
	}
	categoryID, err := validators.ParseQueryID(r, "categoryId")
	if err != nil {
		return productsvc.Filter{}, err
	}
	minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
	if err != nil {
		return productsvc.Filter{}, err
	}
	maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
	if err != nil {
		return productsvc.Filter{}, err
	}

	return productsvc.Filter{
		Query:      validators.SanitizeString(q.Get("query"), 200),
		CategoryID: categoryID,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       sort,
	}, nil
}

// parsePage reads page and limit. A zero limit lets the service apply its default.
func parsePage(r *http.Request, defaultLimit int) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", defaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}
