package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const catalogMaxAge = time.Minute

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	h *Handler,
	healthHandler *health.Handler,
	cors middleware.CORSConfig,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(cors))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.MountPprof(r, pprofCIDRs, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public catalog reads.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogMaxAge))
			r.Get("/catalog/categories", h.ListCategories)
			r.Get("/catalog/categories/{id}", h.GetCategory)
			r.Get("/catalog/products", h.ListProducts)
			r.Get("/catalog/products/{id}", h.GetProduct)
			r.Get("/catalog/products/{id}/reviews", h.ListReviews)
		})

		r.Post("/sessions", h.CreateSession)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.Session(h.sessions.ValidateHandle))
			r.Use(h.LoadSession)

			r.Delete("/sessions", h.DestroySession)
			r.Post("/auth/login", h.Login)
			r.Post("/auth/register", h.Register)
			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.Me)
			r.Get("/dashboard", h.Dashboard)

			r.Group(func(r chi.Router) {
				r.Use(RequireIdentity)

				r.Get("/cart", h.GetCart)
				r.Delete("/cart", h.ClearCart)
				r.Post("/cart/items", h.AddCartItem)
				r.Put("/cart/items/{productId}", h.UpdateCartItem)
				r.Delete("/cart/items/{productId}", h.RemoveCartItem)

				r.Get("/wishlist", h.GetWishlist)
				r.Get("/wishlist/{productId}", h.GetWishlistStatus)
				r.Post("/wishlist/{productId}", h.AddToWishlist)
				r.Delete("/wishlist/{productId}", h.RemoveFromWishlist)

				r.Post("/checkout", h.Checkout)
				r.Get("/orders", h.ListOrders)
				r.Get("/orders/{id}", h.GetOrder)

				r.Get("/profile", h.GetProfile)
				r.Put("/profile", h.UpdateProfile)

				r.Post("/catalog/products/{id}/reviews", h.CreateReview)
			})
		})
	})

	return r
}
