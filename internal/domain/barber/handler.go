package barber

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sawgrasskings/booking-api/internal/pkg/errorhandler"
	"github.com/sawgrasskings/booking-api/internal/pkg/response"
	"github.com/sawgrasskings/booking-api/internal/pkg/validator"
)

// Handler handles barber HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates barber handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListPublic handles GET /barbers
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	active := h.svc.List().Active()
	items := make([]PublicResponse, len(active))
	for i, b := range active {
		items[i] = ToPublicResponse(b)
	}
	response.OK(w, items)
}

// ListAll handles GET /admin/barbers
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	roster := h.svc.List()
	items := make([]AdminResponse, len(roster))
	for i, b := range roster {
		items[i] = ToAdminResponse(b)
	}
	response.OK(w, items)
}

// Create handles POST /admin/barbers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.svc.Add(r.Context(), req.Name, req.Phone)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.Created(w, ToAdminResponse(b))
}

// Update handles PATCH /admin/barbers/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req Patch
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, ToAdminResponse(b))
}

// Toggle handles POST /admin/barbers/{id}/toggle
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.ToggleActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, ToAdminResponse(b))
}

// SetPIN handles PUT /admin/barbers/{id}/pin
func (h *Handler) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req PINRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.svc.SetPIN(r.Context(), chi.URLParam(r, "id"), req.PIN)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, ToAdminResponse(b))
}

// Move handles POST /admin/barbers/{id}/move
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	delta := 1
	if req.Direction == "up" {
		delta = -1
	}
	roster, err := h.svc.Move(r.Context(), chi.URLParam(r, "id"), delta)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	items := make([]AdminResponse, len(roster))
	for i, b := range roster {
		items[i] = ToAdminResponse(b)
	}
	response.OK(w, items)
}

// Delete handles DELETE /admin/barbers/{id}?confirm=true&purge=true
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	confirmed, _ := strconv.ParseBool(q.Get("confirm"))
	purge, _ := strconv.ParseBool(q.Get("purge"))

	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), DeleteOptions{Confirmed: confirmed, Purge: purge})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"deleted": true,
		"purged":  purge,
	})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBarberNotFound):
		response.NotFound(w, "Barber not found")
	case errors.Is(err, ErrInvalidPIN):
		response.ValidationError(w, map[string]string{"pin": "Passcode must be 4 digits"})
	case errors.Is(err, ErrEmptyName):
		response.ValidationError(w, map[string]string{"name": "This field is required"})
	case errors.Is(err, ErrConfirmationRequired):
		response.Error(w, http.StatusPreconditionRequired, "CONFIRMATION_REQUIRED", "Repeat the request with confirm=true to delete this barber")
	case errors.Is(err, ErrCannotMove):
		response.Conflict(w, err.Error())
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "BARBER_UPDATE_FAILED", "Failed to update barbers", err)
	}
}
