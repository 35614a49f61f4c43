package sharedstate

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sawgrasskings/booking-api/internal/pkg/logger"
	"github.com/sawgrasskings/booking-api/internal/pkg/response"
)

const maxBodyBytes = 10 << 20

// Handler serves the shared state endpoints with their original bare JSON
// shapes rather than the API envelope.
type Handler struct {
	service *Service
}

// NewHandler creates sharedstate handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetState handles GET /api/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	response.Raw(w, http.StatusOK, h.service.Get(r.Context()))
}

// SetState handles POST /api/state/{key}
func (h *Handler) SetState(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !ValidKey(key) {
		response.Raw(w, http.StatusBadRequest, errorResponse{Error: "Invalid state key"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		response.Raw(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
		return
	}

	if _, err := h.service.Set(r.Context(), key, body); err != nil {
		switch {
		case errors.Is(err, ErrInvalidKey):
			response.Raw(w, http.StatusBadRequest, errorResponse{Error: "Invalid state key"})
		case errors.Is(err, ErrInvalidJSON):
			response.Raw(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
		default:
			logger.LogError(r.Context(), err, "shared state write failed", "key", key)
			response.Raw(w, http.StatusInternalServerError, errorResponse{Error: "Storage error"})
		}
		return
	}
	response.Raw(w, http.StatusOK, okResponse{OK: true})
}

// Options handles OPTIONS on any state path.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	response.Raw(w, http.StatusOK, okResponse{OK: true})
}
