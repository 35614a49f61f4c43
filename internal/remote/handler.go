package remote

import (
	"errors"
	"net/http"
	"time"

	"github.com/sawgrasskings/booking-api/internal/pkg/errorhandler"
	"github.com/sawgrasskings/booking-api/internal/pkg/response"
)

// StatusResponse is the sync indicator shown on the desk.
type StatusResponse struct {
	Status Status    `json:"status"`
	Label  string    `json:"label"`
	Reason string    `json:"reason,omitempty"`
	Since  time.Time `json:"since"`
	Mirror string    `json:"mirror,omitempty"`
}

// Handler exposes the sync status and the reconnect action.
type Handler struct {
	tracker *Tracker
	syncer  *Syncer
}

// NewHandler creates the sync handler. syncer is nil when no mirror is
// configured.
func NewHandler(tracker *Tracker, syncer *Syncer) *Handler {
	return &Handler{tracker: tracker, syncer: syncer}
}

func (h *Handler) status() StatusResponse {
	st := h.tracker.State()
	out := StatusResponse{Status: st.Status, Label: st.Label(), Reason: st.Reason, Since: st.Since}
	if h.syncer != nil {
		out.Mirror = h.syncer.mirror.Name()
	}
	return out
}

// Status handles GET /sync
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.status())
}

// Reconnect handles POST /sync
func (h *Handler) Reconnect(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		response.Conflict(w, ErrNotConfigured.Error())
		return
	}
	if err := h.syncer.Reconnect(r.Context()); err != nil {
		if errors.Is(err, ErrReconnectInProgress) {
			response.ServiceUnavailable(w, "Reconnect already in progress")
			return
		}
		errorhandler.LogExternalServiceError(r.Context(), h.syncer.mirror.Name(), "reconnect", err)
		response.JSON(w, http.StatusBadGateway, h.status())
		return
	}
	response.OK(w, h.status())
}
