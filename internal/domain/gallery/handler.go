package gallery

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sawgrasskings/booking-api/internal/pkg/errorhandler"
	"github.com/sawgrasskings/booking-api/internal/pkg/logger"
	"github.com/sawgrasskings/booking-api/internal/pkg/response"
	"github.com/sawgrasskings/booking-api/internal/pkg/storage"
)

// Multipart overhead on top of the image limit.
const maxUploadBody = storage.MaxImageSize + 1<<20

// Handler handles gallery HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates gallery handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /gallery
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, toResponses(h.svc.List()))
}

// ListLocal handles GET /admin/gallery
func (h *Handler) ListLocal(w http.ResponseWriter, r *http.Request) {
	response.OK(w, toResponses(h.svc.Local()))
}

// Upload handles POST /admin/gallery
// Multipart form: file + caption
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	photo, err := h.svc.Upload(r.Context(), r.FormValue("caption"), file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			response.BadRequest(w, "File exceeds maximum size")
		case errors.Is(err, storage.ErrInvalidMimeType):
			response.BadRequest(w, "Only image files are supported")
		case errors.Is(err, storage.ErrEmptyFile):
			response.BadRequest(w, "File is empty")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "GALLERY_UPLOAD_FAILED", "Failed to save photo", err)
		}
		return
	}
	logger.LogDebug(r.Context(), "Gallery photo uploaded", "photo_id", photo.ID)
	response.Created(w, ToResponse(photo))
}

// Delete handles DELETE /admin/gallery/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		response.NoContent(w)
	case errors.Is(err, ErrManagedInRepo):
		response.Conflict(w, "This photo is managed in recent-work.json")
	case errors.Is(err, ErrPhotoNotFound):
		response.NotFound(w, "Photo not found")
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "GALLERY_DELETE_FAILED", "Failed to delete photo", err)
	}
}
