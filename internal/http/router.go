package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig bundles the handlers the router mounts.
type RouterConfig struct {
	Cart     *CartHandler
	Catalog  *CatalogHandler
	Checkout *CheckoutHandler
	Admin    *AdminHandler
}

// NewRouter mounts the storefront and admin API.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.Catalog.ListProducts)
			r.Get("/{id}", cfg.Catalog.GetProduct)
		})
		r.Route("/services", func(r chi.Router) {
			r.Get("/", cfg.Catalog.ListServices)
			r.Get("/{id}", cfg.Catalog.GetService)
		})
		r.Get("/sellers", cfg.Catalog.ListSellers)
		r.Get("/categories", cfg.Catalog.ListCategories)
		r.Post("/reviews", cfg.Catalog.AddReview)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Delete("/", cfg.Cart.ClearCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Put("/items/{item_id}", cfg.Cart.UpdateQuantity)
			r.Delete("/items/{item_id}", cfg.Cart.RemoveItem)
		})

		r.Post("/checkout", cfg.Checkout.Submit)
		r.Get("/orders/{id}", cfg.Checkout.GetOrder)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Put("/products", cfg.Admin.UpsertProduct)
		r.Delete("/products/{id}", cfg.Admin.DeleteProduct)
		r.Put("/services", cfg.Admin.UpsertService)
		r.Delete("/services/{id}", cfg.Admin.DeleteService)
		r.Get("/stats", cfg.Admin.Stats)
	})

	return r
}
