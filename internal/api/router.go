package api

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Cheertaboi/tgshop/internal/api/handlers"
	"github.com/Cheertaboi/tgshop/internal/api/middleware"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Products handlers.ProductLister
	Orders   handlers.OrderSubmitter
	// WebDir holds the storefront bundle; empty disables static serving.
	WebDir string
}

// NewRouter builds the HTTP router for the storefront backend
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	shop := handlers.NewShopHandler(deps.Products, deps.Orders, logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", shop.ListProducts)
		r.Post("/order", shop.CreateOrder)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.WebDir != "" {
		index := filepath.Join(deps.WebDir, "index.html")
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, index)
		})
		r.Handle("/web/*", http.StripPrefix("/web/", http.FileServer(http.Dir(deps.WebDir))))
	}

	return r
}
