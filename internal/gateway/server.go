package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns the chi mux with all routes wired.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", g.handleHealth())
	if g.metrics != nil {
		r.Method(http.MethodGet, "/metrics", g.metrics)
	}

	return r
}
