package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns auth routes. limiter guards passcode guessing.
func (h *Handler) Routes(limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(limiter).Post("/admin", h.UnlockAdmin)
	r.With(limiter).Post("/barber", h.UnlockBarber)
	r.Post("/lock", h.Lock)
	return r
}
