package categories

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eps-tools/storefront-backend/pkg/db"
	"github.com/eps-tools/storefront-backend/pkg/db/dbtest"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Client(t)
	svc, err := NewService(NewRepository(client.DB()), client)
	require.NoError(t, err)
	return svc, client
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, nil)
	require.Error(t, err)
}

func TestCreateCategoryDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "  Электроинструмент "})
	require.NoError(t, err)
	require.Equal(t, "Электроинструмент", cat.Name)
	require.Equal(t, "elektroinstrument", cat.Slug)
	require.Equal(t, models.DefaultCategoryIcon, cat.Icon)
	require.Zero(t, cat.ProductCount)
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Drills", Slug: "drills"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CreateCategoryInput{Name: "Other drills", Slug: "drills"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateKey), "got %v", err)
}

func TestCreateCategoryRejectsBadSlug(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Saws", Slug: "Saws & Blades"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestUpdateCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Drills"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CreateCategoryInput{Name: "Saws"})
	require.NoError(t, err)

	name := "Cordless drills"
	icon := ""
	updated, err := svc.UpdateCategory(ctx, first.ID, UpdateCategoryInput{Name: &name, Icon: &icon})
	require.NoError(t, err)
	require.Equal(t, "Cordless drills", updated.Name)
	require.Equal(t, "drills", updated.Slug)
	require.Equal(t, models.DefaultCategoryIcon, updated.Icon)

	taken := "saws"
	_, err = svc.UpdateCategory(ctx, first.ID, UpdateCategoryInput{Slug: &taken})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateKey), "got %v", err)

	_, err = svc.UpdateCategory(ctx, 999, UpdateCategoryInput{Name: &name})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestUpdateCategoryKeepsProductCount(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Drills"})
	require.NoError(t, err)
	require.NoError(t, NewRepository(client.DB()).AdjustProductCount(ctx, cat.ID, 3))

	name := "Drills and drivers"
	updated, err := svc.UpdateCategory(ctx, cat.ID, UpdateCategoryInput{Name: &name})
	require.NoError(t, err)

	stored, err := svc.GetCategory(ctx, updated.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, stored.ProductCount)
}

func TestDeleteCategoryGuard(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Grinders"})
	require.NoError(t, err)
	require.NoError(t, client.DB().Create(&models.Product{
		SKU:        "GR-1",
		Name:       "Angle grinder",
		Slug:       "angle-grinder",
		Price:      decimal.RequireFromString("4990.00"),
		CategoryID: cat.ID,
		IsActive:   true,
	}).Error)

	err = svc.DeleteCategory(ctx, cat.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeCategoryNotEmpty), "got %v", err)

	stillThere, err := svc.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Equal(t, cat.Slug, stillThere.Slug)
}

func TestDeleteCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Empty"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))

	_, err = svc.GetCategory(ctx, cat.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	err = svc.DeleteCategory(ctx, cat.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestListCategoriesOrderedByName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Saws", "Anchors", "Drills"} {
		_, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: name})
		require.NoError(t, err)
	}

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []string{"Anchors", "Drills", "Saws"}, []string{list[0].Name, list[1].Name, list[2].Name})

	bySlug, err := svc.GetCategoryBySlug(ctx, "drills")
	require.NoError(t, err)
	require.Equal(t, "Drills", bySlug.Name)
}

func TestAdjustProductCountMissingCategory(t *testing.T) {
	client := dbtest.Client(t)
	repo := NewRepository(client.DB())

	err := repo.AdjustProductCount(context.Background(), 42, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidReference), "got %v", err)
	require.NoError(t, repo.AdjustProductCount(context.Background(), 42, 0))
}

func TestRecountProducts(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Drills"})
	require.NoError(t, err)
	require.NoError(t, client.DB().Create(&models.Product{
		SKU: "DR-1", Name: "Drill", Slug: "drill",
		Price: decimal.NewFromInt(100), CategoryID: cat.ID,
	}).Error)
	require.NoError(t, NewRepository(client.DB()).AdjustProductCount(ctx, cat.ID, 5))

	changed, err := svc.RecountProducts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, changed)

	fresh, err := svc.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, fresh.ProductCount)
}
