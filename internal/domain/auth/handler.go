package auth

import (
	"errors"
	"net/http"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/pkg/errorhandler"
	"github.com/sawgrasskings/booking-api/internal/pkg/logger"
	"github.com/sawgrasskings/booking-api/internal/pkg/response"
	"github.com/sawgrasskings/booking-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UnlockAdmin handles POST /auth/admin
func (h *Handler) UnlockAdmin(w http.ResponseWriter, r *http.Request) {
	var req AdminUnlockRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	session, err := h.service.UnlockAdmin(r.Context(), req.PIN)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, session)
}

// UnlockBarber handles POST /auth/barber
func (h *Handler) UnlockBarber(w http.ResponseWriter, r *http.Request) {
	var req BarberUnlockRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	session, err := h.service.UnlockBarber(r.Context(), req.BarberID, req.PIN)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, session)
}

// Lock handles POST /auth/lock
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Lock(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidPasscode):
		logger.LogWarn(r.Context(), "Unlock rejected", "path", r.URL.Path)
		response.Unauthorized(w, "Incorrect passcode")
	case errors.Is(err, barber.ErrBarberNotFound):
		response.NotFound(w, "Barber not found")
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "AUTH_FAILED", "Failed to unlock desk", err)
	}
}
