package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eps-tools/storefront-backend/internal/cart"
	"github.com/eps-tools/storefront-backend/internal/products"
	"github.com/eps-tools/storefront-backend/pkg/db"
	"github.com/eps-tools/storefront-backend/pkg/db/models"
	"github.com/eps-tools/storefront-backend/pkg/enums"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
	"github.com/eps-tools/storefront-backend/pkg/logger"
	"github.com/eps-tools/storefront-backend/pkg/metrics"
	"github.com/eps-tools/storefront-backend/pkg/pagination"
)

// DefaultPageSize is the admin order listing page size.
const DefaultPageSize = 10

type cartReader interface {
	GetCartItemWithProduct(ctx context.Context, cartID string) ([]cart.Line, error)
	ClearCart(ctx context.Context, cartID string) error
}

// Service defines order creation and admin lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput, lines []cart.Line) (*OrderDTO, error)
	Checkout(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, id int64) (*OrderDTO, error)
	GetOrderForCart(ctx context.Context, id int64, cartID string) (*OrderDTO, error)
	SearchOrders(ctx context.Context, filter SearchFilter, page pagination.Params) (*OrderList, error)
	UpdateOrderStatus(ctx context.Context, id int64, status enums.OrderStatus) (*OrderDTO, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status enums.PaymentStatus) (*OrderDTO, error)
}

// CreateOrderInput carries the customer details of a checkout. CartID names
// the cart that is cleared once the order commits.
type CreateOrderInput struct {
	UserID        *int64
	CartID        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	City          string
	PostalCode    *string
	PaymentMethod string
	Notes         *string
}

type service struct {
	repo        Repository
	productRepo *products.Repository
	carts       cartReader
	tx          db.TxRunner
	metrics     *metrics.Storefront
	logg        *logger.Logger
}

// ServiceParams groups NewService dependencies. Metrics is optional.
type ServiceParams struct {
	Repo        Repository
	ProductRepo *products.Repository
	Carts       cartReader
	DB          db.TxRunner
	Metrics     *metrics.Storefront
	Logger      *logger.Logger
}

// NewService wires the order service.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if p.ProductRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if p.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if p.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		carts:       p.Carts,
		tx:          p.DB,
		metrics:     p.Metrics,
		logg:        p.Logger,
	}, nil
}

// Checkout turns the cart named by input.CartID into an order.
func (s *service) Checkout(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if strings.TrimSpace(input.CartID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart_id is required")
	}
	lines, err := s.carts.GetCartItemWithProduct(ctx, input.CartID)
	if err != nil {
		return nil, err
	}
	return s.CreateOrder(ctx, input, lines)
}

// CreateOrder snapshots the live price of every line into a pending order.
// The order row and its items commit together; clearing the source cart
// afterwards is best effort.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput, lines []cart.Line) (*OrderDTO, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}
	order, err := newOrder(input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ids := make([]int64, 0, len(lines))
		for _, line := range lines {
			if line.Item.Quantity < 1 {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
					WithDetails(map[string]any{"product_id": line.Item.ProductID})
			}
			ids = append(ids, line.Item.ProductID)
		}
		live, err := s.productRepo.WithTx(tx).FindByIDs(ctx, ids)
		if err != nil {
			return db.MapError(err, "product")
		}

		items := make([]models.OrderItem, 0, len(lines))
		total := decimal.Zero
		for _, line := range lines {
			product, ok := live[line.Item.ProductID]
			if !ok || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeProductUnavailable, "product is not available").
					WithDetails(map[string]any{"product_id": line.Item.ProductID})
			}
			productID := product.ID
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Item.Quantity)))
			total = total.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:    &productID,
				ProductName:  product.Name,
				ProductSKU:   product.SKU,
				ProductPrice: product.Price,
				Quantity:     line.Item.Quantity,
				TotalPrice:   lineTotal,
			})
		}
		order.TotalAmount = total

		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return db.MapError(err, "order")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return db.MapError(err, "order item")
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID)
	if input.CartID != "" {
		if err := s.carts.ClearCart(ctx, input.CartID); err != nil {
			logCtx = s.logg.WithFields(s.logg.WithCartID(logCtx, input.CartID), map[string]any{"error": err.Error()})
			s.logg.Warn(logCtx, "orders.cart_clear_failed")
		}
	}
	s.metrics.OrderCreated(order.TotalAmount)
	s.logg.Info(logCtx, "orders.created")
	return NewOrderDTO(order, nil), nil
}

func (s *service) GetOrder(ctx context.Context, id int64) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	return s.withLiveProducts(ctx, order)
}

// GetOrderForCart returns the order only to the cart that placed it.
func (s *service) GetOrderForCart(ctx context.Context, id int64, cartID string) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	if cartID == "" || order.CartID == nil || *order.CartID != cartID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.withLiveProducts(ctx, order)
}

func (s *service) SearchOrders(ctx context.Context, filter SearchFilter, page pagination.Params) (*OrderList, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown status %q", *filter.Status)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_date cannot be after end_date")
	}
	if err := page.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	page = page.Normalize(DefaultPageSize)
	rows, total, err := s.repo.Search(ctx, filter, page)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	out := &OrderList{
		Orders:     make([]OrderDTO, 0, len(rows)),
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}
	for i := range rows {
		out.Orders = append(out.Orders, *NewOrderDTO(&rows[i], nil))
	}
	return out, nil
}

// UpdateOrderStatus applies one edge of the fulfilment state machine. A
// concurrent change between the read and the write is reported as an
// invalid transition.
func (s *service) UpdateOrderStatus(ctx context.Context, id int64, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown status %q", status)
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	from := order.Status
	if !from.CanTransitionTo(status) {
		return nil, invalidTransition("status", from.String(), status.String())
	}
	ok, err := s.repo.CompareAndSetStatus(ctx, id, from, status)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	if !ok {
		return nil, s.staleTransition(ctx, id, "status", from.String(), status.String())
	}
	s.metrics.OrderStatusChanged(from.String(), status.String())
	s.logg.Info(s.logg.WithFields(s.logg.WithOrderID(ctx, id), map[string]any{
		"from": from.String(),
		"to":   status.String(),
	}), "orders.status_changed")
	return s.GetOrder(ctx, id)
}

func (s *service) UpdatePaymentStatus(ctx context.Context, id int64, status enums.PaymentStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown payment status %q", status)
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	from := order.PaymentStatus
	if !from.CanTransitionTo(status) {
		return nil, invalidTransition("payment_status", from.String(), status.String())
	}
	ok, err := s.repo.CompareAndSetPaymentStatus(ctx, id, from, status)
	if err != nil {
		return nil, db.MapError(err, "order")
	}
	if !ok {
		return nil, s.staleTransition(ctx, id, "payment_status", from.String(), status.String())
	}
	s.metrics.PaymentStatusChanged(from.String(), status.String())
	return s.GetOrder(ctx, id)
}

func (s *service) staleTransition(ctx context.Context, id int64, field, from, to string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return db.MapError(err, "order")
	}
	return invalidTransition(field, from, to)
}

func (s *service) withLiveProducts(ctx context.Context, order *models.Order) (*OrderDTO, error) {
	ids := make([]int64, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}
	live, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, db.MapError(err, "product")
	}
	return NewOrderDTO(order, live), nil
}

func newOrder(input CreateOrderInput) (*models.Order, error) {
	required := []struct {
		field string
		value string
	}{
		{"customer_name", input.CustomerName},
		{"customer_email", input.CustomerEmail},
		{"customer_phone", input.CustomerPhone},
		{"address", input.Address},
		{"city", input.City},
		{"payment_method", input.PaymentMethod},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required customer fields").
			WithDetails(map[string]any{"fields": missing})
	}

	order := &models.Order{
		UserID:        input.UserID,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: strings.ToLower(strings.TrimSpace(input.CustomerEmail)),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		Address:       strings.TrimSpace(input.Address),
		City:          strings.TrimSpace(input.City),
		PostalCode:    trimOptional(input.PostalCode),
		Status:        enums.OrderStatusPending,
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		PaymentStatus: enums.PaymentStatusPending,
		Notes:         trimOptional(input.Notes),
	}
	if input.CartID != "" {
		cartID := input.CartID
		order.CartID = &cartID
	}
	return order, nil
}

func invalidTransition(field, from, to string) error {
	return pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "cannot change %s from %s to %s", field, from, to).
		WithDetails(map[string]any{"field": field, "from": from, "to": to})
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
