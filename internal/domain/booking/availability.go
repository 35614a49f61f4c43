package booking

import (
	"time"

	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
)

// Ledger is one barber's bookings and overrides, passed explicitly to the
// availability functions. Bookings are in write order.
type Ledger struct {
	Bookings  []Booking
	Overrides Overrides
}

// IsDayOff reports a whole-day closure.
func (l Ledger) IsDayOff(date string) bool {
	return l.Overrides[date].DayOff
}

// IsBlocked reports an override covering the slot.
func (l Ledger) IsBlocked(date, hhmm string) bool {
	entry, ok := l.Overrides[date]
	return ok && (entry.DayOff || entry.Has(hhmm))
}

// Occupant returns the most recently written non-declined booking at the slot.
func (l Ledger) Occupant(date, hhmm string) (Booking, bool) {
	for i := len(l.Bookings) - 1; i >= 0; i-- {
		b := l.Bookings[i]
		if b.At(date, hhmm) && b.Occupies() {
			return b, true
		}
	}
	return Booking{}, false
}

// IsTaken reports a pending or approved booking at the slot.
func (l Ledger) IsTaken(date, hhmm string) bool {
	_, ok := l.Occupant(date, hhmm)
	return ok
}

// TakenByOther is IsTaken ignoring the booking with id.
func (l Ledger) TakenByOther(date, hhmm, id string) bool {
	for _, b := range l.Bookings {
		if b.ID != id && b.At(date, hhmm) && b.Occupies() {
			return true
		}
	}
	return false
}

// Find returns the booking with id.
func (l Ledger) Find(id string) (Booking, bool) {
	for _, b := range l.Bookings {
		if b.ID == id {
			return b, true
		}
	}
	return Booking{}, false
}

// AvailableSlots returns the slots on date a customer may still pick: within
// hours, not past, not blocked and not taken. A day off yields none.
func AvailableSlots(gen schedule.Generator, l Ledger, date string, now time.Time) ([]string, error) {
	slots, err := gen.Slots(date)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(slots))
	if l.IsDayOff(date) {
		return out, nil
	}
	for _, s := range slots {
		if schedule.IsPastSlot(date, s, now) || l.IsBlocked(date, s) || l.IsTaken(date, s) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// TakenSlots returns the in-hours slots on date that are blocked or booked,
// regardless of wall time. On a day off every slot is taken.
func TakenSlots(gen schedule.Generator, l Ledger, date string) ([]string, error) {
	slots, err := gen.Slots(date)
	if err != nil {
		return nil, err
	}
	if l.IsDayOff(date) {
		return slots, nil
	}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if l.IsBlocked(date, s) || l.IsTaken(date, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// SlotState describes one slot for pickers and the desk editor.
type SlotState struct {
	Time    string `json:"time"`
	Label   string `json:"label"`
	Past    bool   `json:"past"`
	Blocked bool   `json:"blocked"`
	Taken   bool   `json:"taken"`
	Open    bool   `json:"open"`
}

// DaySlots returns every generated slot on date with its state.
func DaySlots(gen schedule.Generator, l Ledger, date string, now time.Time) ([]SlotState, error) {
	slots, err := gen.Slots(date)
	if err != nil {
		return nil, err
	}
	dayOff := l.IsDayOff(date)
	out := make([]SlotState, len(slots))
	for i, s := range slots {
		st := SlotState{
			Time:    s,
			Label:   schedule.FormatTime12(s),
			Past:    schedule.IsPastSlot(date, s, now),
			Blocked: dayOff || l.IsBlocked(date, s),
			Taken:   l.IsTaken(date, s),
		}
		st.Open = !st.Past && !st.Blocked && !st.Taken
		out[i] = st
	}
	return out, nil
}
