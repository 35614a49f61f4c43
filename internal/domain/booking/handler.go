package booking

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
	"github.com/sawgrasskings/booking-api/internal/middleware"
	"github.com/sawgrasskings/booking-api/internal/pkg/errorhandler"
	"github.com/sawgrasskings/booking-api/internal/pkg/logger"
	"github.com/sawgrasskings/booking-api/internal/pkg/response"
	"github.com/sawgrasskings/booking-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates booking handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Shop handles GET /shop
func (h *Handler) Shop(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.svc.Shop())
}

// Slots handles GET /barbers/{id}/slots?date=YYYY-MM-DD
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "date is required")
		return
	}
	view, err := h.svc.Slots(chi.URLParam(r, "id"), date)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, view)
}

// Calendar handles GET /barbers/{id}/calendar?month=YYYY-MM
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.svc.Range().Min
	}
	days, err := h.svc.Calendar(chi.URLParam(r, "id"), month)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"range": h.svc.Range(),
		"days":  days,
	})
}

// Submit handles POST /bookings
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitBookingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	res, err := h.svc.Submit(r.Context(), SubmitRequest{
		BarberID: req.BarberID,
		Name:     req.Name,
		Phone:    req.Phone,
		Service:  req.Service,
		Date:     req.Date,
		Time:     req.Time,
		Notes:    req.Notes,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	logger.LogInfo(r.Context(), "Booking request submitted",
		"booking_id", res.Booking.ID, "barber_id", res.Booking.BarberID, "date", res.Booking.Date, "time", res.Booking.Time)
	response.Created(w, res)
}

// Queue handles GET /desk/barbers/{barberID}/queue
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Queue(chi.URLParam(r, "barberID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	out := make([]QueueItemResponse, len(items))
	for i, item := range items {
		out[i] = QueueItemResponse{
			QueueItem:   item,
			ServiceName: item.ServiceName(),
			TimeLabel:   schedule.FormatTime12(item.Time),
		}
	}
	response.OK(w, out)
}

// Enqueue handles POST /desk/barbers/{barberID}/queue
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueueBookingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	item, err := h.svc.Enqueue(r.Context(), EnqueueRequest{
		BarberID: chi.URLParam(r, "barberID"),
		Name:     req.Name,
		Phone:    req.Phone,
		Service:  req.Service,
		Date:     req.Date,
		Time:     req.Time,
		Notes:    req.Notes,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.Created(w, item)
}

// Confirm handles POST /desk/queue/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeItem(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Confirm(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	logger.LogInfo(r.Context(), "Queue item confirmed", "id", id, "barber_id", b.BarberID)
	response.OK(w, b)
}

// Decline handles POST /desk/queue/{id}/decline
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeItem(w, r)
	if !ok {
		return
	}
	if err := h.svc.Decline(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	logger.LogInfo(r.Context(), "Queue item declined", "id", id)
	response.OK(w, map[string]string{"id": id, "status": string(StatusDeclined)})
}

// Remove handles DELETE /desk/queue/{id}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeItem(w, r)
	if !ok {
		return
	}
	if err := h.svc.Remove(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Bookings handles GET /desk/barbers/{barberID}/bookings?date=&status=
func (h *Handler) Bookings(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	list, err := h.svc.Bookings(chi.URLParam(r, "barberID"), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, list)
}

// Export handles GET /desk/barbers/{barberID}/bookings/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	barberID := chi.URLParam(r, "barberID")
	if _, err := h.svc.Bookings(barberID, f); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings-%s.xlsx"`, barberID))
	if err := h.svc.ExportXLSX(w, barberID, f); err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export bookings", err)
	}
}

// Overrides handles GET /desk/barbers/{barberID}/overrides
func (h *Handler) Overrides(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Overrides(chi.URLParam(r, "barberID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, o)
}

// ReplaceOverrides handles PUT /desk/barbers/{barberID}/overrides with the
// flat {date: [times | "DAY_OFF"]} form.
func (h *Handler) ReplaceOverrides(w http.ResponseWriter, r *http.Request) {
	var slots BlockedSlots
	if err := response.DecodeJSON(r.Body, &slots); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	for date, times := range slots {
		if _, err := schedule.ParseDate(date, nil); err != nil {
			response.ValidationError(w, map[string]string{date: "Invalid date. Use YYYY-MM-DD"})
			return
		}
		for _, t := range times {
			if t == DayOffMarker {
				continue
			}
			if _, err := schedule.ParseClock(t); err != nil {
				response.ValidationError(w, map[string]string{date: "Invalid time " + t})
				return
			}
		}
	}
	o, err := h.svc.ReplaceOverrides(r.Context(), chi.URLParam(r, "barberID"), slots)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, o)
}

// SetDayOff handles POST /desk/barbers/{barberID}/overrides/{date}/day-off
func (h *Handler) SetDayOff(w http.ResponseWriter, r *http.Request) {
	var req DayOffRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	o, err := h.svc.SetDayOff(r.Context(), chi.URLParam(r, "barberID"), chi.URLParam(r, "date"), req.DayOff)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, o)
}

// ToggleBlocked handles POST /desk/barbers/{barberID}/overrides/{date}/toggle
func (h *Handler) ToggleBlocked(w http.ResponseWriter, r *http.Request) {
	var req SlotRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	o, err := h.svc.ToggleBlocked(r.Context(), chi.URLParam(r, "barberID"), chi.URLParam(r, "date"), req.Time)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, o)
}

// ClearDate handles DELETE /desk/barbers/{barberID}/overrides/{date}
func (h *Handler) ClearDate(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.ClearDate(r.Context(), chi.URLParam(r, "barberID"), chi.URLParam(r, "date"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, o)
}

// MarkTaken handles POST /desk/barbers/{barberID}/taken
func (h *Handler) MarkTaken(w http.ResponseWriter, r *http.Request) {
	var req SlotRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if req.Date == "" {
		response.ValidationError(w, map[string]string{"date": "This field is required"})
		return
	}
	b, err := h.svc.MarkTaken(r.Context(), chi.URLParam(r, "barberID"), req.Date, req.Time)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.Created(w, b)
}

// ClearTaken handles DELETE /desk/barbers/{barberID}/taken?date=&time=
func (h *Handler) ClearTaken(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.svc.ClearTaken(r.Context(), chi.URLParam(r, "barberID"), q.Get("date"), q.Get("time")); err != nil {
		h.handleError(w, r, err)
		return
	}
	response.NoContent(w)
}

// authorizeItem resolves the queue item's barber and checks the session scope.
func (h *Handler) authorizeItem(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	_, barberID, err := h.svc.FindQueueItem(id)
	if err != nil {
		h.handleError(w, r, err)
		return "", false
	}
	if !middleware.CanAccessBarber(r.Context(), barberID) {
		response.Forbidden(w, "Session is not allowed to manage this barber")
		return "", false
	}
	return id, true
}

func parseFilter(w http.ResponseWriter, r *http.Request) (BookingFilter, bool) {
	q := r.URL.Query()
	f := BookingFilter{Date: q.Get("date"), Status: Status(strings.ToLower(q.Get("status")))}
	if f.Status != "" && !f.Status.Valid() {
		response.BadRequest(w, "invalid status")
		return f, false
	}
	return f, true
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSlotUnavailable):
		response.Conflict(w, "That slot is already blocked or taken. Choose a different time.")
	case errors.Is(err, ErrSlotInPast):
		response.Conflict(w, "That time has already passed. Choose a different time.")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrDateOutOfRange):
		response.ValidationError(w, map[string]string{"date": "Date is outside the booking window"})
	case errors.Is(err, ErrInvalidSlot):
		response.ValidationError(w, map[string]string{"time": "Time is not a slot on that date"})
	case errors.Is(err, ErrMissingField):
		response.ValidationError(w, map[string]string{"_": err.Error()})
	case errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, schedule.ErrInvalidClock):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrQueueItemNotFound):
		response.NotFound(w, "Queue item not found")
	case errors.Is(err, barber.ErrBarberNotFound):
		response.NotFound(w, "Barber not found")
	case errors.Is(err, barber.ErrBarberInactive):
		response.Conflict(w, "Barber is not taking bookings")
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "BOOKING_FAILED", "Failed to process booking", err)
	}
}
