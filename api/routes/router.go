package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eps-tools/storefront-backend/api/controllers"
	cartcontrollers "github.com/eps-tools/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/eps-tools/storefront-backend/api/controllers/orders"
	"github.com/eps-tools/storefront-backend/api/middleware"
	"github.com/eps-tools/storefront-backend/internal/auth"
	"github.com/eps-tools/storefront-backend/internal/cart"
	"github.com/eps-tools/storefront-backend/internal/categories"
	"github.com/eps-tools/storefront-backend/internal/orders"
	"github.com/eps-tools/storefront-backend/internal/products"
	"github.com/eps-tools/storefront-backend/pkg/config"
	"github.com/eps-tools/storefront-backend/pkg/db"
	"github.com/eps-tools/storefront-backend/pkg/enums"
	"github.com/eps-tools/storefront-backend/pkg/logger"
	"github.com/eps-tools/storefront-backend/pkg/metrics"
	"github.com/eps-tools/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	authService auth.Service,
	categoryService categories.Service,
	productService products.Service,
	cartService cart.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTP
	if registry != nil {
		httpMetrics = metrics.NewHTTP(registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	// a nil *redis.Client must not reach the middleware as a non-nil interface
	var (
		redisPinger redis.Pinger
		idemStore   redis.IdempotencyStore
		limiter     redis.RateLimiter
	)
	if redisClient != nil {
		redisPinger = redisClient
		idemStore = redisClient
		limiter = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)
	idempotent := middleware.Idempotency(idemStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(authService, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.AuthMe(authService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(categoryService, logg))
			r.Get("/slug/{slug}", controllers.CategoryGetBySlug(categoryService, logg))
			r.Get("/{categoryId}", controllers.CategoryGet(categoryService, logg))
			r.Get("/{categoryId}/products", controllers.CategoryProducts(productService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductSearch(productService, logg))
			r.Get("/featured", controllers.ProductFeatured(productService, logg))
			r.Get("/slug/{slug}", controllers.ProductGetBySlug(productService, logg))
			r.Get("/{productId}", controllers.ProductGet(productService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", cartcontrollers.CartCreate(cartService, logg))
			r.Route("/{cartId}", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(cartService, logg))
				r.Delete("/", cartcontrollers.CartClear(cartService, logg))
				r.Get("/items", cartcontrollers.CartItems(cartService, logg))
				r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
				r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(cartService, logg))
				r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(cartService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.OptionalAuth(cfg.JWT, logg), idempotent).Post("/", ordercontrollers.Checkout(ordersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/auth/register", controllers.AdminAuthRegister(authService, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

			r.Get("/ping", controllers.AdminPing())

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateCategory(categoryService, logg))
				r.Post("/recount", controllers.AdminRecountCategories(categoryService, logg))
				r.Patch("/{categoryId}", controllers.AdminUpdateCategory(categoryService, logg))
				r.Delete("/{categoryId}", controllers.AdminDeleteCategory(categoryService, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductList(productService, logg))
				r.Post("/", controllers.AdminCreateProduct(productService, logg))
				r.With(idempotent).Post("/bulk-import", controllers.AdminBulkImportProducts(productService, logg))
				r.Get("/{productId}", controllers.AdminProductGet(productService, logg))
				r.Patch("/{productId}", controllers.AdminUpdateProduct(productService, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(productService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.AdminSearch(ordersService, logg))
				r.Get("/{orderId}", ordercontrollers.AdminDetail(ordersService, logg))
				r.Patch("/{orderId}/status", ordercontrollers.AdminUpdateStatus(ordersService, logg))
				r.With(idempotent).Patch("/{orderId}/payment-status", ordercontrollers.AdminUpdatePaymentStatus(ordersService, logg))
			})
		})
	})

	return r
}
