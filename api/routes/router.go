package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/averyhale/meadowcart-backend/api/controllers"
	"github.com/averyhale/meadowcart-backend/api/middleware"
	authsvc "github.com/averyhale/meadowcart-backend/internal/auth"
	cartsvc "github.com/averyhale/meadowcart-backend/internal/cart"
	checkoutsvc "github.com/averyhale/meadowcart-backend/internal/checkout"
	"github.com/averyhale/meadowcart-backend/internal/media"
	product "github.com/averyhale/meadowcart-backend/internal/products"
	"github.com/averyhale/meadowcart-backend/pkg/auth/session"
	"github.com/averyhale/meadowcart-backend/pkg/config"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
)

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	ReadinessProbes map[string]controllers.Pinger

	Sessions        *cartsvc.Sessions
	ProductService  product.Service
	CheckoutService checkoutsvc.Service
	AuthService     authsvc.Service
	MediaService    media.Service
	SessionChecker  session.AccessSessionChecker
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadinessProbes))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductsList(deps.ProductService, logg))
		r.Get("/products/{slug}", controllers.ProductBySlug(deps.ProductService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(cfg.Checkout.CartSessionTTL, cfg.App.IsProd(), logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Sessions, cfg.Checkout, logg))
				r.Delete("/", controllers.CartClear(deps.Sessions, cfg.Checkout, logg))
				r.Post("/items", controllers.CartAddItem(deps.Sessions, deps.ProductService, cfg.Checkout, logg))
				r.Post("/items/{productId}/increase", controllers.CartIncreaseItem(deps.Sessions, cfg.Checkout, logg))
				r.Post("/items/{productId}/decrease", controllers.CartDecreaseItem(deps.Sessions, cfg.Checkout, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Sessions, cfg.Checkout, logg))
			})

			r.Post("/checkout", controllers.CheckoutBegin(deps.CheckoutService, logg))
			r.Post("/checkout/confirm", controllers.CheckoutConfirm(deps.CheckoutService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminAuthLogin(deps.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

			r.Post("/auth/logout", controllers.AdminAuthLogout(deps.AuthService, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductsList(deps.ProductService, logg))
				r.Post("/", controllers.AdminCreateProduct(deps.ProductService, logg))
				r.Post("/bulk-delete", controllers.AdminBulkDeleteProducts(deps.ProductService, logg))
				r.Patch("/{productId}", controllers.AdminUpdateProduct(deps.ProductService, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.ProductService, logg))
				r.Post("/{productId}/images", controllers.AdminAttachProductImage(deps.ProductService, logg))
				r.Delete("/{productId}/images/{imageId}", controllers.AdminDetachProductImage(deps.ProductService, logg))
			})

			r.Post("/media/upload-url", controllers.AdminPresignUpload(deps.MediaService, logg))
		})
	})

	return r
}
