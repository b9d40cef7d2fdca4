package orders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/eps-tools/storefront-backend/pkg/db/models"
	"github.com/eps-tools/storefront-backend/pkg/enums"
	"github.com/eps-tools/storefront-backend/pkg/pagination"
)

// Repository defines the persistence surface required by the order service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	Search(ctx context.Context, filter SearchFilter, page pagination.Params) ([]models.Order, int64, error)
	CompareAndSetStatus(ctx context.Context, id int64, from, to enums.OrderStatus) (bool, error)
	CompareAndSetPaymentStatus(ctx context.Context, id int64, from, to enums.PaymentStatus) (bool, error)
}

// SearchFilter narrows the admin order listing. Zero fields match all.
type SearchFilter struct {
	Query     string
	Status    *enums.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
}
