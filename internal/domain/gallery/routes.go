package gallery

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns the merged gallery
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// AdminRoutes returns upload management routes
func (h *Handler) AdminRoutes(authMiddleware, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware, adminOnly)

	r.Get("/", h.ListLocal)
	r.Post("/", h.Upload)
	r.Delete("/{id}", h.Delete)

	return r
}
