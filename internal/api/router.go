package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routerTimeout bounds request handling above the per-scan timeout so the
// scan context, not the router, cancels first.
const routerTimeout = 10 * time.Minute

// NewRouter creates a chi router exposing the scan API.
func NewRouter(scanner TargetScanner, scanTimeout time.Duration) http.Handler {
	h := NewHandler(scanner, scanTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(routerTimeout))
	r.Use(middleware.Heartbeat("/ping"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/scan", h.handleScan)
	})

	return r
}
