package products

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eps-tools/storefront-backend/internal/categories"
	"github.com/eps-tools/storefront-backend/pkg/db"
	"github.com/eps-tools/storefront-backend/pkg/db/dbtest"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
	"github.com/eps-tools/storefront-backend/pkg/logger"
	"github.com/eps-tools/storefront-backend/pkg/metrics"
)

type fixture struct {
	svc      Service
	client   *db.Client
	registry *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Client(t)
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Repo:         NewRepository(client.DB()),
		CategoryRepo: categories.NewRepository(client.DB()),
		DB:           client,
		Metrics:      metrics.NewStorefront(reg),
		Logger:       logger.Nop(),
	})
	require.NoError(t, err)
	return &fixture{svc: svc, client: client, registry: reg}
}

func (f *fixture) category(t *testing.T, name string) int64 {
	t.Helper()
	cat := &models.Category{Name: name, Slug: name, Icon: models.DefaultCategoryIcon}
	require.NoError(t, f.client.DB().Create(cat).Error)
	return cat.ID
}

func (f *fixture) productCount(t *testing.T, categoryID int64) int64 {
	t.Helper()
	var cat models.Category
	require.NoError(t, f.client.DB().First(&cat, "id = ?", categoryID).Error)
	return cat.ProductCount
}

func (f *fixture) create(t *testing.T, input CreateProductInput) *ProductDTO {
	t.Helper()
	dto, err := f.svc.CreateProduct(context.Background(), input)
	require.NoError(t, err)
	return dto
}

func input(sku, name string, price string, categoryID int64) CreateProductInput {
	return CreateProductInput{
		SKU:        sku,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: categoryID,
	}
}

func boolPtr(v bool) *bool { return &v }

func int64Ptr(v int64) *int64 { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
