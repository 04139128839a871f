package rest

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Services struct {
	Catalog    service.CatalogService
	Cart       service.CartService
	Wishlist   service.WishlistService
	Auth       service.AuthService
	Newsletter service.NewsletterService
}

type RouterOptions struct {
	SecureCookies bool
	GuestTTL      time.Duration
}

func NewRouter(svc Services, opts RouterOptions, m *metrics.Metrics, log logger.Logger) http.Handler {
	log = log.Named("HTTP")

	catalogHandler := NewCatalogHandler(svc.Catalog, log)
	cartHandler := NewCartHandler(svc.Cart, log)
	wishlistHandler := NewWishlistHandler(svc.Wishlist, log)
	authHandler := NewAuthHandler(svc.Auth, log)
	newsletterHandler := NewNewsletterHandler(svc.Newsletter, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(Metrics(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(GuestIdentity(opts.SecureCookies, opts.GuestTTL))
		api.Use(OptionalAuth(svc.Auth, log))
		api.Use(RequestLogger(log))

		api.Get("/products", catalogHandler.List)
		api.Get("/products/search", catalogHandler.Search)
		api.Get("/products/{id}", catalogHandler.Get)

		api.Get("/cart", cartHandler.Get)
		api.Post("/cart/items", cartHandler.AddItem)
		api.Put("/cart/items/{productID}", cartHandler.UpdateItem)
		api.Delete("/cart/items/{productID}", cartHandler.RemoveItem)

		api.Get("/wishlist", wishlistHandler.Get)
		api.Post("/wishlist/{productID}", wishlistHandler.Toggle)

		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(authRouter chi.Router) {
			authRouter.Use(RequireAuth)
			authRouter.Post("/auth/logout", authHandler.Logout)
			authRouter.Get("/auth/me", authHandler.Me)
		})

		api.Post("/newsletter", newsletterHandler.Subscribe)
	})

	return r
}
