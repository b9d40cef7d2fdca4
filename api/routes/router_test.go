package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eps-tools/storefront-backend/internal/auth"
	"github.com/eps-tools/storefront-backend/internal/cart"
	"github.com/eps-tools/storefront-backend/internal/categories"
	"github.com/eps-tools/storefront-backend/internal/orders"
	"github.com/eps-tools/storefront-backend/internal/products"
	"github.com/eps-tools/storefront-backend/internal/users"
	pkgAuth "github.com/eps-tools/storefront-backend/pkg/auth"
	"github.com/eps-tools/storefront-backend/pkg/config"
	"github.com/eps-tools/storefront-backend/pkg/db/dbtest"
	"github.com/eps-tools/storefront-backend/pkg/enums"
	"github.com/eps-tools/storefront-backend/pkg/logger"
	"github.com/eps-tools/storefront-backend/pkg/metrics"
	"github.com/eps-tools/storefront-backend/pkg/security"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "eps-test",
			ExpirationMinutes: 60,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Catalog: config.CatalogConfig{DefaultPageSize: 12},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

type testApp struct {
	t        *testing.T
	cfg      *config.Config
	registry *prometheus.Registry
	handler  http.Handler
}

func newTestApp(t *testing.T, cfg *config.Config, dbP stubPinger) *testApp {
	t.Helper()
	client := dbtest.Client(t)
	conn := client.DB()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	registry := prometheus.NewRegistry()
	storefront := metrics.NewStorefront(registry)

	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:  users.NewRepository(conn),
		Hasher:    security.NewHasher(cfg.Password),
		JWTConfig: cfg.JWT,
	})
	require.NoError(t, err)

	categoryRepo := categories.NewRepository(conn)
	categorySvc, err := categories.NewService(categoryRepo, client)
	require.NoError(t, err)

	productRepo := products.NewRepository(conn)
	productSvc, err := products.NewService(products.ServiceParams{
		Repo:         productRepo,
		CategoryRepo: categoryRepo,
		DB:           client,
		Metrics:      storefront,
		Logger:       logg,
		DefaultLimit: cfg.Catalog.DefaultPageSize,
	})
	require.NoError(t, err)

	cartSvc, err := cart.NewService(cart.NewRepository(conn), productRepo, storefront)
	require.NoError(t, err)

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(conn),
		ProductRepo: productRepo,
		Carts:       cartSvc,
		DB:          client,
		Metrics:     storefront,
		Logger:      logg,
	})
	require.NoError(t, err)

	return &testApp{
		t:        t,
		cfg:      cfg,
		registry: registry,
		handler:  NewRouter(cfg, logg, dbP, nil, registry, authSvc, categorySvc, productSvc, cartSvc, ordersSvc),
	}
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Idempotency-Key", uuid.NewString())
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dest), string(envelope.Data))
}

func buildToken(t *testing.T, cfg *config.Config, userID int64, role enums.UserRole) string {
	t.Helper()
	token, _, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   userID,
		Username: "user-" + strconv.FormatInt(userID, 10),
		Role:     role,
		JTI:      uuid.NewString(),
	})
	require.NoError(t, err)
	return token
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	app := newTestApp(t, cfg, stubPinger{})

	rec := app.do(http.MethodGet, "/api/admin/v1/ping", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodGet, "/api/admin/v1/ping", buildToken(t, cfg, 2, enums.UserRoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/api/admin/v1/ping", buildToken(t, cfg, 1, enums.UserRoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPost, "/api/admin/v1/categories", buildToken(t, cfg, 2, enums.UserRoleUser), map[string]any{"name": "Drills"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRegisterHiddenInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.App.Env = config.AppEnvProd
	app := newTestApp(t, cfg, stubPinger{})

	rec := app.do(http.MethodPost, "/api/admin/v1/auth/register", "", map[string]any{
		"username": "root", "email": "root@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthReady(t *testing.T) {
	app := newTestApp(t, testConfig(), stubPinger{})
	rec := app.do(http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"disabled"`)

	down := newTestApp(t, testConfig(), stubPinger{err: errors.New("connection refused")})
	rec = down.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStorefrontCheckoutFlow(t *testing.T) {
	cfg := testConfig()
	app := newTestApp(t, cfg, stubPinger{})

	rec := app.do(http.MethodPost, "/api/admin/v1/auth/register", "", map[string]any{
		"username": "admin", "email": "admin@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session auth.AuthResponse
	decodeData(t, rec, &session)
	admin := session.AccessToken

	rec = app.do(http.MethodPost, "/api/admin/v1/categories", admin, map[string]any{"name": "Дрели"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var category categories.CategoryDTO
	decodeData(t, rec, &category)
	assert.Equal(t, "dreli", category.Slug)

	rec = app.do(http.MethodPost, "/api/admin/v1/products", admin, map[string]any{
		"sku": "DR-100", "name": "Drill 800W", "price": "200.00", "category_id": category.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product products.ProductDTO
	decodeData(t, rec, &product)

	rec = app.do(http.MethodGet, "/api/v1/categories/"+strconv.FormatInt(category.ID, 10), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &category)
	assert.EqualValues(t, 1, category.ProductCount)

	rec = app.do(http.MethodGet, "/api/v1/products?query=drill&maxPrice=250", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var search products.SearchResult
	decodeData(t, rec, &search)
	require.EqualValues(t, 1, search.Total)
	assert.Equal(t, "DR-100", search.Products[0].SKU)

	rec = app.do(http.MethodPost, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var issued struct {
		CartID string `json:"cart_id"`
	}
	decodeData(t, rec, &issued)
	require.NotEmpty(t, issued.CartID)
	cartPath := "/api/v1/cart/" + issued.CartID

	for _, qty := range []int{1, 1} {
		rec = app.do(http.MethodPost, cartPath+"/items", "", map[string]any{"product_id": product.ID, "quantity": qty})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = app.do(http.MethodGet, cartPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var basket cart.CartDTO
	decodeData(t, rec, &basket)
	require.Len(t, basket.Items, 1)
	assert.Equal(t, 2, basket.Items[0].Quantity)
	assert.Equal(t, "400.00", basket.Subtotal)

	rec = app.do(http.MethodPost, "/api/v1/orders", "", map[string]any{
		"cart_id":        issued.CartID,
		"customer_name":  "Ivan Petrov",
		"customer_email": "ivan@example.com",
		"customer_phone": "+7 900 000-00-00",
		"address":        "Lenina 1",
		"city":           "Moscow",
		"payment_method": "cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order orders.OrderDTO
	decodeData(t, rec, &order)
	assert.Equal(t, "400.00", order.TotalAmount)
	assert.Equal(t, string(enums.OrderStatusPending), order.Status)

	rec = app.do(http.MethodGet, cartPath+"/items", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	orderPath := "/api/v1/orders/" + strconv.FormatInt(order.ID, 10)
	rec = app.do(http.MethodGet, orderPath+"?cart_id="+issued.CartID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodGet, orderPath+"?cart_id=someone-else", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	adminOrderPath := "/api/admin/v1/orders/" + strconv.FormatInt(order.ID, 10)
	rec = app.do(http.MethodPatch, adminOrderPath+"/status", admin, map[string]any{"status": "delivered"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = app.do(http.MethodPatch, adminOrderPath+"/status", admin, map[string]any{"status": "processing"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &order)
	assert.Equal(t, string(enums.OrderStatusProcessing), order.Status)

	rec = app.do(http.MethodGet, "/api/admin/v1/orders?status=processing", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list orders.OrderList
	decodeData(t, rec, &list)
	assert.EqualValues(t, 1, list.Total)

	rec = app.do(http.MethodDelete, "/api/admin/v1/categories/"+strconv.FormatInt(category.ID, 10), admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_orders_created_total 1")
	assert.Contains(t, rec.Body.String(), `route="/api/v1/cart/{cartId}/items"`)
}
