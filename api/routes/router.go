package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/confeccionesismael/storefront-backend/api/controllers"
	"github.com/confeccionesismael/storefront-backend/api/middleware"
	"github.com/confeccionesismael/storefront-backend/internal/accounts"
	cartsvc "github.com/confeccionesismael/storefront-backend/internal/cart"
	"github.com/confeccionesismael/storefront-backend/internal/catalog"
	checkoutsvc "github.com/confeccionesismael/storefront-backend/internal/checkout"
	orderssvc "github.com/confeccionesismael/storefront-backend/internal/orders"
	"github.com/confeccionesismael/storefront-backend/internal/shipping"
	"github.com/confeccionesismael/storefront-backend/pkg/auth/session"
	"github.com/confeccionesismael/storefront-backend/pkg/config"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
	"github.com/confeccionesismael/storefront-backend/pkg/logger"
	"github.com/confeccionesismael/storefront-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              dbPinger
	Redis           *redis.Client
	SessionManager  sessionManager
	AccountsService accounts.Service
	CatalogService  catalog.Service
	CartService     cartsvc.Service
	CheckoutService checkoutsvc.Service
	OrdersService   orderssvc.Service
	ShippingService shipping.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	guestSession := middleware.GuestSession(cfg.Session, p.Redis, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, p.SessionManager, logg)
	requireAuth := middleware.Auth(cfg.JWT, p.SessionManager, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(guestSession).Post("/register", controllers.Register(p.AccountsService, logg))
			r.With(guestSession).Post("/login", controllers.Login(p.AccountsService, logg))
			r.Post("/logout", controllers.AuthLogout(p.SessionManager, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
		})

		r.Get("/products", controllers.ListProducts(p.CatalogService, logg))
		r.Get("/products/{slug}", controllers.GetProduct(p.CatalogService, logg))
		r.Get("/categories", controllers.ListCategories(p.CatalogService, logg))
		r.Get("/shipping-zones", controllers.ListShippingZones(p.ShippingService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(guestSession, optionalAuth)
			r.Get("/", controllers.GetCart(p.CartService, logg))
			r.Delete("/", controllers.ClearCart(p.CartService, logg))
			r.Post("/items", controllers.AddCartItem(p.CartService, logg))
			r.Patch("/items/{itemID}", controllers.SetCartItemQuantity(p.CartService, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(p.CartService, logg))
		})

		r.With(guestSession, optionalAuth).Post("/checkout", controllers.Checkout(p.CheckoutService, logg))

		r.Route("/me", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", controllers.GetProfile(p.AccountsService, logg))
			r.Put("/profile", controllers.UpdateProfile(p.AccountsService, logg))
			r.Get("/orders", controllers.ListMyOrders(p.OrdersService, logg))
			r.Get("/orders/{orderID}", controllers.GetOrder(p.OrdersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(p.OrdersService, logg))
			r.Get("/{orderID}", controllers.GetOrder(p.OrdersService, logg))
			r.Patch("/{orderID}/status", controllers.AdminUpdateOrderStatus(p.OrdersService, logg))
		})
	})

	return r
}
