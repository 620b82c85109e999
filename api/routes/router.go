package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cartcontrollers "github.com/posbok/storefront/api/controllers/cart"
	catalogcontrollers "github.com/posbok/storefront/api/controllers/catalog"
	reviewcontrollers "github.com/posbok/storefront/api/controllers/reviews"
	"github.com/posbok/storefront/api/handlers"
	"github.com/posbok/storefront/api/middleware"
	"github.com/posbok/storefront/pkg/config"
	"github.com/posbok/storefront/pkg/logger"
)

// NewRouter assembles the daemon's local HTTP surface. Every cart route goes
// through the single engine; catalog and review routes proxy the upstream.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	engine cartcontrollers.Engine,
	catalog catalogcontrollers.Catalog,
	reviews reviewcontrollers.Browser,
	gatherer prometheus.Gatherer,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID(logg))
	router.Use(middleware.Logging(logg))
	router.Use(middleware.Recoverer(logg))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	router.Get("/healthz", handlers.Healthz(cfg, logg))
	if gatherer != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(engine, logg))
			r.Get("/count", cartcontrollers.CartCount(engine, logg))
			r.Post("/items", cartcontrollers.CartAdd(engine, logg))
			r.Patch("/items/{itemID}", cartcontrollers.CartUpdateItem(engine, logg))
			r.Delete("/items/{itemID}", cartcontrollers.CartRemoveItem(engine, logg))
			r.Delete("/", cartcontrollers.CartClear(engine, logg))
			r.Patch("/contact", cartcontrollers.CartContact(engine, logg))
			r.Put("/store", cartcontrollers.CartSetStore(engine, logg))
		})

		r.Route("/stores/{slug}", func(r chi.Router) {
			r.Get("/", catalogcontrollers.StoreFetch(catalog, logg))
			r.Get("/products", catalogcontrollers.ProductList(catalog, logg))
			r.Get("/products/{productID}", catalogcontrollers.ProductFetch(catalog, logg))
			r.Get("/categories", catalogcontrollers.CategoryList(catalog, logg))
		})

		r.Route("/products/{productID}/reviews", func(r chi.Router) {
			r.Get("/", reviewcontrollers.ReviewList(reviews, logg))
			r.Post("/", reviewcontrollers.ReviewSubmit(reviews, logg))
		})
		r.Post("/reviews/{reviewID}/helpful", reviewcontrollers.ReviewMarkHelpful(reviews, logg))
	})

	return router
}
