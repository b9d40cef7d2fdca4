package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartsvc "github.com/eps-tools/storefront-backend/internal/cart"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
)

type stubCartService struct {
	cartsvc.Service
	added   []addCall
	updated []addCall
	cleared []string
	addErr  error
}

type addCall struct {
	cartID string
	id     int64
	qty    int
}

func (s *stubCartService) NewCartID() string { return "cart-new" }

func (s *stubCartService) AddToCart(_ context.Context, cartID string, productID int64, quantity int) (*cartsvc.CartItemDTO, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.added = append(s.added, addCall{cartID: cartID, id: productID, qty: quantity})
	return &cartsvc.CartItemDTO{ID: 1, CartID: cartID, ProductID: productID, Quantity: quantity}, nil
}

func (s *stubCartService) UpdateQuantity(_ context.Context, cartID string, itemID int64, quantity int) (*cartsvc.CartItemDTO, error) {
	s.updated = append(s.updated, addCall{cartID: cartID, id: itemID, qty: quantity})
	return &cartsvc.CartItemDTO{ID: itemID, CartID: cartID, Quantity: quantity}, nil
}

func (s *stubCartService) ClearCart(_ context.Context, cartID string) error {
	s.cleared = append(s.cleared, cartID)
	return nil
}

func newTestRouter(svc cartsvc.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/cart", CartCreate(svc, nil))
	r.Delete("/api/v1/cart/{cartId}", CartClear(svc, nil))
	r.Post("/api/v1/cart/{cartId}/items", CartAddItem(svc, nil))
	r.Patch("/api/v1/cart/{cartId}/items/{itemId}", CartUpdateItem(svc, nil))
	return r
}

func TestCartCreateIssuesID(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubCartService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"cart_id":"cart-new"}}`, rec.Body.String())
}

func TestCartAddItemDefaultsQuantity(t *testing.T) {
	svc := &stubCartService{}
	router := newTestRouter(svc)

	for _, body := range []string{`{"product_id":12}`, `{"product_id":12,"quantity":3}`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart/guest-1/items", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	assert.Equal(t, []addCall{{cartID: "guest-1", id: 12, qty: 1}, {cartID: "guest-1", id: 12, qty: 3}}, svc.added)
}

func TestCartAddItemRejectsBadPayload(t *testing.T) {
	svc := &stubCartService{}
	router := newTestRouter(svc)

	for _, body := range []string{`{"quantity":1}`, `{"product_id":12,"quantity":0}`, `{"product_id":"x"}`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart/guest-1/items", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, svc.added)
}

func TestCartAddItemSurfacesUnavailableProduct(t *testing.T) {
	svc := &stubCartService{addErr: pkgerrors.New(pkgerrors.CodeProductUnavailable, "product is not available")}

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart/guest-1/items", strings.NewReader(`{"product_id":5}`)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), string(pkgerrors.CodeProductUnavailable))
}

func TestCartUpdateItemPassesQuantityThrough(t *testing.T) {
	svc := &stubCartService{}

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/cart/guest-1/items/9", strings.NewReader(`{"quantity":0}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []addCall{{cartID: "guest-1", id: 9, qty: 0}}, svc.updated)
}

func TestCartClearIsNoContent(t *testing.T) {
	svc := &stubCartService{}
	router := newTestRouter(svc)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/cart/guest-1", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, []string{"guest-1", "guest-1"}, svc.cleared)
}
