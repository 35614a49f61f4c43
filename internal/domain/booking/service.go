package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
	"github.com/sawgrasskings/booking-api/internal/pkg/deeplink"
	"github.com/sawgrasskings/booking-api/internal/pkg/metrics"
)

// Repository is the record store. Every write replaces the whole collection
// it touches; lookups by id span all barber partitions.
type Repository interface {
	Ledger(barberID string) Ledger
	Queue(barberID string) []QueueItem
	FindQueueItem(id string) (item QueueItem, barberID string, ok bool)
	SaveBooking(ctx context.Context, b Booking) (Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status Status) (bool, error)
	MarkTaken(ctx context.Context, barberID string, b Booking) error
	ClearTaken(ctx context.Context, barberID, date, hhmm string) error
	SaveQueueItem(ctx context.Context, item QueueItem) error
	UpdateQueueItem(ctx context.Context, id string, patch QueuePatch) (QueueItem, error)
	RemoveQueueItem(ctx context.Context, id string) (bool, error)
	SaveOverrides(ctx context.Context, barberID string, o Overrides) error
}

// Barbers resolves the barber a request is for.
type Barbers interface {
	Get(id string) (barber.Barber, error)
	Bookable(id string) (barber.Barber, error)
	ActiveFallback() string
}

// Contact is where booking texts go when a barber has no usable phone.
type Contact struct {
	ShopName  string
	PhoneE164 string
	Email     string
}

// Config holds the scheduling rules.
type Config struct {
	Generator    schedule.Generator
	MaxDaysAhead int
	Contact      Contact
	Now          func() time.Time
}

// Service implements availability, submission and queue reconciliation.
type Service struct {
	repo    Repository
	barbers Barbers
	cfg     Config
}

// NewService creates booking service
func NewService(repo Repository, barbers Barbers, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{repo: repo, barbers: barbers, cfg: cfg}
}

// Range is the bookable date window as of now.
func (s *Service) Range() schedule.DateRange {
	return schedule.BookingRange(s.cfg.Now(), s.cfg.MaxDaysAhead)
}

// DayView is the availability of one barber on one date.
type DayView struct {
	BarberID  string      `json:"barberId"`
	Date      string      `json:"date"`
	Closed    bool        `json:"closed"`
	DayOff    bool        `json:"dayOff"`
	Available []string    `json:"available"`
	Taken     []string    `json:"taken"`
	Slots     []SlotState `json:"slots"`
}

// Slots returns the day view for barberID on date.
func (s *Service) Slots(barberID, date string) (*DayView, error) {
	barberID, err := s.resolveBarber(barberID)
	if err != nil {
		return nil, err
	}
	if _, err := schedule.ParseDate(date, nil); err != nil {
		return nil, err
	}

	now := s.cfg.Now()
	ledger := s.repo.Ledger(barberID)
	available, err := AvailableSlots(s.cfg.Generator, ledger, date, now)
	if err != nil {
		return nil, err
	}
	taken, err := TakenSlots(s.cfg.Generator, ledger, date)
	if err != nil {
		return nil, err
	}
	slots, err := DaySlots(s.cfg.Generator, ledger, date, now)
	if err != nil {
		return nil, err
	}
	return &DayView{
		BarberID:  barberID,
		Date:      date,
		Closed:    !s.cfg.Generator.IsOpen(date),
		DayOff:    ledger.IsDayOff(date),
		Available: available,
		Taken:     taken,
		Slots:     slots,
	}, nil
}

// Calendar returns the month summary for barberID.
func (s *Service) Calendar(barberID, month string) ([]DaySummary, error) {
	barberID, err := s.resolveBarber(barberID)
	if err != nil {
		return nil, err
	}
	return Calendar(s.cfg.Generator, s.repo.Ledger(barberID), month, s.Range(), s.cfg.Now())
}

// SubmitRequest is a customer booking request.
type SubmitRequest struct {
	BarberID string
	Name     string
	Phone    string
	Service  string
	Date     string
	Time     string
	Notes    string
}

// SubmitResult carries the stored request and the links that deliver it.
type SubmitResult struct {
	Booking Booking `json:"booking"`
	Message string  `json:"message"`
	SentTo  string  `json:"sentTo"`
	SMSLink string  `json:"smsLink"`
	Mailto  string  `json:"mailtoLink"`
}

// Submit re-checks availability and stores a pending booking and its queue
// item under one id. The check and the write are not atomic: two requests for
// the same slot racing through here may both be stored.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	req = trimSubmit(req)
	if err := requireFields(map[string]string{
		"name": req.Name, "phone": req.Phone, "service": req.Service, "date": req.Date, "time": req.Time,
	}); err != nil {
		metrics.IncBookingRequest(SourceCustomer, "invalid")
		return nil, err
	}

	if req.BarberID == "" {
		req.BarberID = s.barbers.ActiveFallback()
	}
	b, err := s.barbers.Bookable(req.BarberID)
	if err != nil {
		metrics.IncBookingRequest(SourceCustomer, "invalid")
		return nil, err
	}

	if err := s.checkOpen(b.ID, req.Date, req.Time); err != nil {
		metrics.IncBookingRequest(SourceCustomer, "conflict")
		return nil, err
	}

	now := s.cfg.Now()
	rec := Booking{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		Service:   req.Service,
		Date:      req.Date,
		Time:      req.Time,
		Notes:     req.Notes,
		Status:    StatusPending,
		BarberID:  b.ID,
		CreatedAt: now.UnixMilli(),
	}
	saved, err := s.repo.SaveBooking(ctx, rec)
	if err != nil {
		metrics.IncBookingRequest(SourceCustomer, "error")
		return nil, fmt.Errorf("save booking: %w", err)
	}
	item := QueueItem{
		ID:               saved.ID,
		Name:             saved.Name,
		Phone:            saved.Phone,
		RequestedService: saved.Service,
		Service:          saved.Service,
		Date:             saved.Date,
		Time:             saved.Time,
		Notes:            saved.Notes,
		Status:           StatusPending,
		BarberID:         b.ID,
		CreatedAt:        saved.CreatedAt,
		Source:           SourceCustomer,
	}
	if err := s.repo.SaveQueueItem(ctx, item); err != nil {
		metrics.IncBookingRequest(SourceCustomer, "error")
		return nil, fmt.Errorf("save queue item: %w", err)
	}
	metrics.IncBookingRequest(SourceCustomer, "accepted")

	log.Info().
		Str("booking_id", saved.ID).
		Str("barber_id", b.ID).
		Str("date", saved.Date).
		Str("time", saved.Time).
		Msg("Booking request stored")

	return s.deliver(saved, b), nil
}

func (s *Service) deliver(rec Booking, b barber.Barber) *SubmitResult {
	label := schedule.FormatTime12(rec.Time)
	msg := deeplink.BookingMessage(deeplink.BookingRequest{
		ShopName:   s.cfg.Contact.ShopName,
		Name:       rec.Name,
		Phone:      rec.Phone,
		Service:    rec.Service,
		BarberName: b.DisplayName(),
		Date:       rec.Date,
		TimeLabel:  label,
		Notes:      rec.Notes,
	})

	to, ok := deeplink.ToE164(b.Phone)
	if !ok {
		to = s.cfg.Contact.PhoneE164
	}
	res := &SubmitResult{
		Booking: rec,
		Message: msg,
		SentTo:  to,
		SMSLink: deeplink.SMS(to, msg),
	}
	if s.cfg.Contact.Email != "" {
		res.Mailto = deeplink.Mailto(s.cfg.Contact.Email, deeplink.BookingSubject(s.cfg.Contact.ShopName, rec.Date, label), msg)
	}
	return res
}

// checkOpen verifies the slot is bookable right now.
func (s *Service) checkOpen(barberID, date, hhmm string) error {
	if !s.Range().Contains(date) {
		return ErrDateOutOfRange
	}
	slots, err := s.cfg.Generator.Slots(date)
	if err != nil {
		return err
	}
	if !contains(slots, hhmm) {
		return ErrInvalidSlot
	}
	if schedule.IsPastSlot(date, hhmm, s.cfg.Now()) {
		return ErrSlotInPast
	}
	ledger := s.repo.Ledger(barberID)
	if ledger.IsBlocked(date, hhmm) || ledger.IsTaken(date, hhmm) {
		return ErrSlotUnavailable
	}
	return nil
}

// EnqueueRequest is a request typed in at the desk.
type EnqueueRequest struct {
	BarberID string
	Name     string
	Phone    string
	Service  string
	Date     string
	Time     string
	Notes    string
}

// Enqueue adds a pending desk entry. No booking exists until it is confirmed.
func (s *Service) Enqueue(ctx context.Context, req EnqueueRequest) (QueueItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Notes = strings.TrimSpace(req.Notes)
	if err := requireFields(map[string]string{
		"name": req.Name, "phone": req.Phone, "date": req.Date, "time": req.Time,
	}); err != nil {
		metrics.IncBookingRequest(SourceDesk, "invalid")
		return QueueItem{}, err
	}
	if _, err := schedule.ParseDate(req.Date, nil); err != nil {
		return QueueItem{}, err
	}
	if _, err := schedule.ParseClock(req.Time); err != nil {
		return QueueItem{}, err
	}
	barberID, err := s.resolveBarber(req.BarberID)
	if err != nil {
		return QueueItem{}, err
	}

	item := QueueItem{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Phone:            req.Phone,
		RequestedService: req.Service,
		Service:          req.Service,
		Date:             req.Date,
		Time:             req.Time,
		Notes:            req.Notes,
		Status:           StatusPending,
		BarberID:         barberID,
		CreatedAt:        s.cfg.Now().UnixMilli(),
		Source:           SourceDesk,
	}
	if err := s.repo.SaveQueueItem(ctx, item); err != nil {
		metrics.IncBookingRequest(SourceDesk, "error")
		return QueueItem{}, err
	}
	metrics.IncBookingRequest(SourceDesk, "accepted")
	return item, nil
}

// Confirm approves a queue item, writing the approved booking. It fails with
// ErrSlotUnavailable, changing nothing, when an override or another record
// holds the slot.
func (s *Service) Confirm(ctx context.Context, id string) (Booking, error) {
	item, barberID, err := s.findItem(id)
	if err != nil {
		metrics.IncQueueAction("confirm", "not_found")
		return Booking{}, err
	}
	if !CanTransition(item.Status, StatusApproved) {
		metrics.IncQueueAction("confirm", "invalid")
		return Booking{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, item.Status, StatusApproved)
	}

	ledger := s.repo.Ledger(barberID)
	existing, hasBooking := ledger.Find(id)
	if hasBooking && !CanTransition(existing.Status, StatusApproved) {
		metrics.IncQueueAction("confirm", "invalid")
		return Booking{}, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, existing.Status)
	}
	if ledger.IsBlocked(item.Date, item.Time) || ledger.TakenByOther(item.Date, item.Time, id) {
		metrics.IncQueueAction("confirm", "conflict")
		return Booking{}, ErrSlotUnavailable
	}

	payload := item.ToBooking(barberID, StatusApproved)
	if hasBooking {
		payload = existing
	}
	payload.Status = StatusApproved
	payload.BarberID = barberID

	saved, err := s.repo.SaveBooking(ctx, payload)
	if err != nil {
		metrics.IncQueueAction("confirm", "error")
		return Booking{}, fmt.Errorf("save booking: %w", err)
	}
	if _, err := s.repo.UpdateQueueItem(ctx, id, StatusPatch(StatusApproved)); err != nil {
		metrics.IncQueueAction("confirm", "error")
		return Booking{}, fmt.Errorf("update queue item: %w", err)
	}
	metrics.IncQueueAction("confirm", "ok")
	return saved, nil
}

// Decline marks the queue item and its booking declined, freeing the slot.
func (s *Service) Decline(ctx context.Context, id string) error {
	item, _, err := s.findItem(id)
	if err != nil {
		metrics.IncQueueAction("decline", "not_found")
		return err
	}
	if !CanTransition(item.Status, StatusDeclined) {
		metrics.IncQueueAction("decline", "invalid")
		return ErrInvalidTransition
	}
	if _, err := s.repo.UpdateQueueItem(ctx, id, StatusPatch(StatusDeclined)); err != nil {
		metrics.IncQueueAction("decline", "error")
		return fmt.Errorf("update queue item: %w", err)
	}
	if _, err := s.repo.UpdateBookingStatus(ctx, id, StatusDeclined); err != nil {
		metrics.IncQueueAction("decline", "error")
		return fmt.Errorf("update booking: %w", err)
	}
	metrics.IncQueueAction("decline", "ok")
	return nil
}

// Remove deletes the queue item and declines its booking. The booking record
// itself is kept.
func (s *Service) Remove(ctx context.Context, id string) error {
	removed, err := s.repo.RemoveQueueItem(ctx, id)
	if err != nil {
		metrics.IncQueueAction("remove", "error")
		return fmt.Errorf("remove queue item: %w", err)
	}
	if !removed {
		metrics.IncQueueAction("remove", "not_found")
		return ErrQueueItemNotFound
	}
	if _, err := s.repo.UpdateBookingStatus(ctx, id, StatusDeclined); err != nil {
		metrics.IncQueueAction("remove", "error")
		return fmt.Errorf("update booking: %w", err)
	}
	metrics.IncQueueAction("remove", "ok")
	return nil
}

// FindQueueItem returns one queue item and its owning barber.
func (s *Service) FindQueueItem(id string) (QueueItem, string, error) {
	item, barberID, err := s.findItem(id)
	return item, barberID, err
}

// Queue returns barberID's queue, newest first.
func (s *Service) Queue(barberID string) ([]QueueItem, error) {
	barberID, err := s.resolveBarber(barberID)
	if err != nil {
		return nil, err
	}
	return s.repo.Queue(barberID), nil
}

// BookingFilter narrows Bookings. Zero values match everything.
type BookingFilter struct {
	Date   string
	Status Status
}

// Bookings returns barberID's bookings ordered by date and time.
func (s *Service) Bookings(barberID string, f BookingFilter) ([]Booking, error) {
	barberID, err := s.resolveBarber(barberID)
	if err != nil {
		return nil, err
	}
	all := s.repo.Ledger(barberID).Bookings
	out := make([]Booking, 0, len(all))
	for _, b := range all {
		if f.Date != "" && b.Date != f.Date {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

// Overrides returns barberID's overrides.
func (s *Service) Overrides(barberID string) (Overrides, error) {
	barberID, err := s.resolveBarber(barberID)
	if err != nil {
		return nil, err
	}
	return s.repo.Ledger(barberID).Overrides, nil
}

// SetDayOff closes or reopens a whole date for barberID.
func (s *Service) SetDayOff(ctx context.Context, barberID, date string, dayOff bool) (Overrides, error) {
	if _, err := schedule.ParseDate(date, nil); err != nil {
		return nil, err
	}
	return s.editOverrides(ctx, barberID, func(o Overrides) Overrides {
		return o.SetDayOff(date, dayOff)
	})
}

// ToggleBlocked blocks or unblocks one slot.
func (s *Service) ToggleBlocked(ctx context.Context, barberID, date, hhmm string) (Overrides, error) {
	if _, err := schedule.ParseDate(date, nil); err != nil {
		return nil, err
	}
	if _, err := schedule.ParseClock(hhmm); err != nil {
		return nil, err
	}
	return s.editOverrides(ctx, barberID, func(o Overrides) Overrides {
		return o.ToggleBlocked(date, hhmm)
	})
}

// ClearDate drops every override on date.
func (s *Service) ClearDate(ctx context.Context, barberID, date string) (Overrides, error) {
	return s.editOverrides(ctx, barberID, func(o Overrides) Overrides {
		return o.Clear(date)
	})
}

// ReplaceOverrides swaps barberID's whole override map for the flat form given.
func (s *Service) ReplaceOverrides(ctx context.Context, barberID string, slots BlockedSlots) (Overrides, error) {
	return s.editOverrides(ctx, barberID, func(Overrides) Overrides {
		return OverridesFromBlockedSlots(slots)
	})
}

// MarkTaken records the slot as taken by a walk-in, replacing whatever
// record held it.
func (s *Service) MarkTaken(ctx context.Context, barberID, date, hhmm string) (Booking, error) {
	barberID, err := s.resolveBarber(barberID)
	if err != nil {
		return Booking{}, err
	}
	if _, err := schedule.ParseDate(date, nil); err != nil {
		return Booking{}, err
	}
	if _, err := schedule.ParseClock(hhmm); err != nil {
		return Booking{}, err
	}
	rec := Booking{
		ID:        uuid.NewString(),
		Name:      "Walk-in",
		Service:   "Unknown",
		Date:      date,
		Time:      hhmm,
		Status:    StatusApproved,
		BarberID:  barberID,
		CreatedAt: s.cfg.Now().UnixMilli(),
	}
	if err := s.repo.MarkTaken(ctx, barberID, rec); err != nil {
		return Booking{}, err
	}
	return rec, nil
}

// ClearTaken deletes every booking record at the slot.
func (s *Service) ClearTaken(ctx context.Context, barberID, date, hhmm string) error {
	barberID, err := s.resolveBarber(barberID)
	if err != nil {
		return err
	}
	if _, err := schedule.ParseDate(date, nil); err != nil {
		return err
	}
	if _, err := schedule.ParseClock(hhmm); err != nil {
		return err
	}
	return s.repo.ClearTaken(ctx, barberID, date, hhmm)
}

func (s *Service) editOverrides(ctx context.Context, barberID string, fn func(Overrides) Overrides) (Overrides, error) {
	barberID, err := s.resolveBarber(barberID)
	if err != nil {
		return nil, err
	}
	next := fn(s.repo.Ledger(barberID).Overrides)
	if err := s.repo.SaveOverrides(ctx, barberID, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Service) findItem(id string) (QueueItem, string, error) {
	item, partition, ok := s.repo.FindQueueItem(id)
	if !ok {
		return QueueItem{}, "", ErrQueueItemNotFound
	}
	barberID := item.BarberID
	if barberID == "" {
		barberID = partition
	}
	if barberID == "" {
		barberID = s.barbers.ActiveFallback()
	}
	return item, barberID, nil
}

// resolveBarber applies the active fallback and checks the barber exists.
func (s *Service) resolveBarber(barberID string) (string, error) {
	if barberID == "" {
		barberID = s.barbers.ActiveFallback()
	}
	if _, err := s.barbers.Get(barberID); err != nil {
		return "", err
	}
	return barberID, nil
}

func trimSubmit(r SubmitRequest) SubmitRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Service = strings.TrimSpace(r.Service)
	r.Notes = strings.TrimSpace(r.Notes)
	return r
}

func requireFields(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// ShopInfo describes the shop for the booking page.
type ShopInfo struct {
	Name         string                      `json:"name"`
	PhoneE164    string                      `json:"phone"`
	PhoneDisplay string                      `json:"phoneDisplay"`
	Email        string                      `json:"email"`
	SlotMinutes  int                         `json:"slotMinutes"`
	Hours        map[string]*schedule.Window `json:"hours"`
	Range        schedule.DateRange          `json:"range"`
}

// Shop returns the public shop profile.
func (s *Service) Shop() ShopInfo {
	hours := make(map[string]*schedule.Window, 7)
	for d, w := range s.cfg.Generator.Hours {
		hours[strings.ToLower(time.Weekday(d).String()[:3])] = w
	}
	return ShopInfo{
		Name:         s.cfg.Contact.ShopName,
		PhoneE164:    s.cfg.Contact.PhoneE164,
		PhoneDisplay: deeplink.FormatPhoneDisplay(s.cfg.Contact.PhoneE164),
		Email:        s.cfg.Contact.Email,
		SlotMinutes:  s.cfg.Generator.SlotMinutes,
		Hours:        hours,
		Range:        s.Range(),
	}
}
