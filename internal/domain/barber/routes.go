package barber

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes registers the customer-facing barber list on r
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/barbers", h.ListPublic)
}

// AdminRoutes returns roster management routes behind the admin desk
func (h *Handler) AdminRoutes(authMiddleware, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware, adminOnly)

	r.Get("/", h.ListAll)
	r.Post("/", h.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/toggle", h.Toggle)
		r.Put("/pin", h.SetPIN)
		r.Post("/move", h.Move)
	})

	return r
}
