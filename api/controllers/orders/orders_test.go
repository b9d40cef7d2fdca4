package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eps-tools/storefront-backend/api/middleware"
	internalorders "github.com/eps-tools/storefront-backend/internal/orders"
	"github.com/eps-tools/storefront-backend/pkg/enums"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
	"github.com/eps-tools/storefront-backend/pkg/pagination"
)

type stubOrdersService struct {
	internalorders.Service
	checkoutInput *internalorders.CreateOrderInput
	forCart       func(ctx context.Context, id int64, cartID string) (*internalorders.OrderDTO, error)
	searchFilter  *internalorders.SearchFilter
	searchPage    pagination.Params
	statusCalls   []enums.OrderStatus
	statusErr     error
}

func (s *stubOrdersService) Checkout(_ context.Context, input internalorders.CreateOrderInput) (*internalorders.OrderDTO, error) {
	s.checkoutInput = &input
	return &internalorders.OrderDTO{ID: 1, Status: string(enums.OrderStatusPending), TotalAmount: "500.00"}, nil
}

func (s *stubOrdersService) GetOrderForCart(ctx context.Context, id int64, cartID string) (*internalorders.OrderDTO, error) {
	return s.forCart(ctx, id, cartID)
}

func (s *stubOrdersService) SearchOrders(_ context.Context, filter internalorders.SearchFilter, page pagination.Params) (*internalorders.OrderList, error) {
	s.searchFilter = &filter
	s.searchPage = page
	return &internalorders.OrderList{Orders: []internalorders.OrderDTO{}}, nil
}

func (s *stubOrdersService) UpdateOrderStatus(_ context.Context, id int64, status enums.OrderStatus) (*internalorders.OrderDTO, error) {
	s.statusCalls = append(s.statusCalls, status)
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return &internalorders.OrderDTO{ID: id, Status: string(status)}, nil
}

func newRouter(svc internalorders.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/orders", Checkout(svc, nil))
	r.Get("/api/v1/orders/{orderId}", Detail(svc, nil))
	r.Get("/api/admin/v1/orders", AdminSearch(svc, nil))
	r.Patch("/api/admin/v1/orders/{orderId}/status", AdminUpdateStatus(svc, nil))
	return r
}

const checkoutBody = `{
	"cart_id": " guest-1 ",
	"customer_name": "Иван Петров",
	"customer_email": "Ivan@Example.com",
	"customer_phone": "+7 900 000-00-00",
	"address": "ул. Ленина, 1",
	"city": "Москва",
	"payment_method": "card"
}`

func TestCheckoutCreatesGuestOrder(t *testing.T) {
	svc := &stubOrdersService{}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(checkoutBody)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, svc.checkoutInput)
	assert.Equal(t, "guest-1", svc.checkoutInput.CartID)
	assert.Equal(t, "Москва", svc.checkoutInput.City)
	assert.Nil(t, svc.checkoutInput.UserID)
}

func TestCheckoutLinksSignedInUser(t *testing.T) {
	svc := &stubOrdersService{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(checkoutBody))
	req = req.WithContext(middleware.WithUserID(req.Context(), 31))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.checkoutInput.UserID)
	assert.EqualValues(t, 31, *svc.checkoutInput.UserID)
}

func TestCheckoutRejectsMalformedEmail(t *testing.T) {
	svc := &stubOrdersService{}
	body := strings.Replace(checkoutBody, "Ivan@Example.com", "not-an-email", 1)

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.checkoutInput)
}

func TestDetailRequiresCartID(t *testing.T) {
	svc := &stubOrdersService{
		forCart: func(_ context.Context, id int64, cartID string) (*internalorders.OrderDTO, error) {
			if cartID != "guest-1" {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return &internalorders.OrderDTO{ID: id}, nil
		},
	}
	router := newRouter(svc)

	cases := []struct {
		url  string
		want int
	}{
		{"/api/v1/orders/4", http.StatusBadRequest},
		{"/api/v1/orders/4?cart_id=someone-else", http.StatusNotFound},
		{"/api/v1/orders/4?cart_id=guest-1", http.StatusOK},
		{"/api/v1/orders/abc?cart_id=guest-1", http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))
		assert.Equal(t, tc.want, rec.Code, tc.url)
	}
}

func TestAdminSearchParsesFilters(t *testing.T) {
	svc := &stubOrdersService{}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?query=ivan&status=Shipped&startDate=2026-01-01&endDate=2026-01-31&page=3", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, svc.searchFilter)
	assert.Equal(t, "ivan", svc.searchFilter.Query)
	require.NotNil(t, svc.searchFilter.Status)
	assert.Equal(t, enums.OrderStatusShipped, *svc.searchFilter.Status)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *svc.searchFilter.StartDate)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), *svc.searchFilter.EndDate)
	assert.Equal(t, pagination.Params{Page: 3, Limit: internalorders.DefaultPageSize}, svc.searchPage)
}

func TestAdminSearchStatusAllDisablesFilter(t *testing.T) {
	svc := &stubOrdersService{}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?status=all", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.searchFilter.Status)
}

func TestAdminUpdateStatus(t *testing.T) {
	t.Run("unknown status", func(t *testing.T) {
		svc := &stubOrdersService{}
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/3/status", strings.NewReader(`{"status":"lost"}`)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.statusCalls)
	})

	t.Run("disallowed transition", func(t *testing.T) {
		svc := &stubOrdersService{statusErr: pkgerrors.New(pkgerrors.CodeInvalidTransition, "cannot move order from delivered to pending")}
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/3/status", strings.NewReader(`{"status":"pending"}`)))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), string(pkgerrors.CodeInvalidTransition))
	})

	t.Run("applied", func(t *testing.T) {
		svc := &stubOrdersService{}
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/3/status", strings.NewReader(`{"status":"processing"}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []enums.OrderStatus{enums.OrderStatusProcessing}, svc.statusCalls)
	})
}
