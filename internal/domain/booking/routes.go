package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sawgrasskings/booking-api/internal/middleware"
)

// PublicRoutes registers customer routes on r.
func (h *Handler) PublicRoutes(r chi.Router, submitLimiter func(http.Handler) http.Handler) {
	r.Get("/shop", h.Shop)
	r.Get("/barbers/{id}/slots", h.Slots)
	r.Get("/barbers/{id}/calendar", h.Calendar)
	r.With(submitLimiter).Post("/bookings", h.Submit)
}

// DeskRoutes returns queue and availability management routes. Barber
// sessions are limited to their own partition.
func (h *Handler) DeskRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Route("/queue/{id}", func(r chi.Router) {
		r.Post("/confirm", h.Confirm)
		r.Post("/decline", h.Decline)
		r.Delete("/", h.Remove)
	})

	r.Route("/barbers/{barberID}", func(r chi.Router) {
		r.Use(middleware.RequireBarberAccess("barberID"))

		r.Get("/queue", h.Queue)
		r.Post("/queue", h.Enqueue)

		r.Get("/bookings", h.Bookings)
		r.Get("/bookings/export", h.Export)

		r.Get("/overrides", h.Overrides)
		r.Put("/overrides", h.ReplaceOverrides)
		r.Delete("/overrides/{date}", h.ClearDate)
		r.Post("/overrides/{date}/day-off", h.SetDayOff)
		r.Post("/overrides/{date}/toggle", h.ToggleBlocked)

		r.Post("/taken", h.MarkTaken)
		r.Delete("/taken", h.ClearTaken)
	})

	return r
}
