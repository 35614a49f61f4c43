package sharedstate

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the /api/state router. The caller applies the permissive
// CORS policy the browser client expects.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetState)
	r.Options("/", h.Options)
	r.Post("/{key}", h.SetState)
	r.Options("/{key}", h.Options)
	return r
}
