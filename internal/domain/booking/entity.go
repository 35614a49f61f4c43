package booking

import (
	"sort"
)

// Status is the lifecycle state shared by a booking and its queue item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

// Booking occupies a (barber, date, time) slot unless declined.
type Booking struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Service   string `json:"service"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Notes     string `json:"notes"`
	Status    Status `json:"status"`
	BarberID  string `json:"barberId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Occupies reports whether the booking holds its slot.
func (b Booking) Occupies() bool {
	return b.Status != StatusDeclined
}

// At reports whether the booking is for date and time.
func (b Booking) At(date, hhmm string) bool {
	return b.Date == date && b.Time == hhmm
}

// QueueItem is a request awaiting a desk decision. A customer request shares
// its id with the pending Booking created alongside it.
type QueueItem struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	RequestedService string `json:"requestedService,omitempty"`
	Service          string `json:"service,omitempty"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Notes            string `json:"notes"`
	Status           Status `json:"status"`
	BarberID         string `json:"barberId,omitempty"`
	CreatedAt        int64  `json:"createdAt"`
	Source           string `json:"source,omitempty"`
}

const (
	SourceCustomer = "customer"
	SourceDesk     = "desk"
)

// ServiceName prefers the service the customer asked for.
func (q QueueItem) ServiceName() string {
	if q.RequestedService != "" {
		return q.RequestedService
	}
	return q.Service
}

// ToBooking builds the booking a confirmed item becomes.
func (q QueueItem) ToBooking(barberID string, status Status) Booking {
	return Booking{
		ID:        q.ID,
		Name:      q.Name,
		Phone:     q.Phone,
		Service:   q.ServiceName(),
		Date:      q.Date,
		Time:      q.Time,
		Notes:     q.Notes,
		Status:    status,
		BarberID:  barberID,
		CreatedAt: q.CreatedAt,
	}
}

// QueuePatch is a partial queue item update.
type QueuePatch struct {
	Status *Status
	Date   *string
	Time   *string
	Notes  *string
}

// Apply returns q with the patch applied.
func (p QueuePatch) Apply(q QueueItem) QueueItem {
	if p.Status != nil {
		q.Status = *p.Status
	}
	if p.Date != nil {
		q.Date = *p.Date
	}
	if p.Time != nil {
		q.Time = *p.Time
	}
	if p.Notes != nil {
		q.Notes = *p.Notes
	}
	return q
}

// StatusPatch is shorthand for a status-only patch.
func StatusPatch(s Status) QueuePatch {
	return QueuePatch{Status: &s}
}

// Override is an admin closure for one date. Blocked is kept sorted.
type Override struct {
	DayOff  bool     `json:"dayOff"`
	Blocked []string `json:"blocked"`
}

// Empty reports whether the override closes nothing.
func (o Override) Empty() bool {
	return !o.DayOff && len(o.Blocked) == 0
}

// Has reports whether hhmm is individually blocked.
func (o Override) Has(hhmm string) bool {
	i := sort.SearchStrings(o.Blocked, hhmm)
	return i < len(o.Blocked) && o.Blocked[i] == hhmm
}

// Overrides maps ISO date to that date's override.
type Overrides map[string]Override

// Clone returns a deep copy.
func (o Overrides) Clone() Overrides {
	out := make(Overrides, len(o))
	for date, entry := range o {
		out[date] = Override{DayOff: entry.DayOff, Blocked: append([]string(nil), entry.Blocked...)}
	}
	return out
}

func (o Overrides) set(date string, entry Override) {
	if entry.Empty() {
		delete(o, date)
		return
	}
	if entry.Blocked == nil {
		entry.Blocked = []string{}
	}
	o[date] = entry
}

// ToggleBlocked returns a copy with hhmm blocked or unblocked on date.
func (o Overrides) ToggleBlocked(date, hhmm string) Overrides {
	out := o.Clone()
	entry := out[date]
	if entry.Has(hhmm) {
		kept := entry.Blocked[:0]
		for _, t := range entry.Blocked {
			if t != hhmm {
				kept = append(kept, t)
			}
		}
		entry.Blocked = kept
	} else {
		entry.Blocked = append(entry.Blocked, hhmm)
		sort.Strings(entry.Blocked)
	}
	out.set(date, entry)
	return out
}

// SetDayOff returns a copy with the whole-day flag set on date.
func (o Overrides) SetDayOff(date string, dayOff bool) Overrides {
	out := o.Clone()
	entry := out[date]
	entry.DayOff = dayOff
	out.set(date, entry)
	return out
}

// Clear returns a copy without any override on date.
func (o Overrides) Clear(date string) Overrides {
	out := o.Clone()
	delete(out, date)
	return out
}

// DayOffMarker stands for a whole-day closure in the flat blocked-slot form.
const DayOffMarker = "DAY_OFF"

// BlockedSlots is the flat form of overrides: date to blocked times, with
// DayOffMarker meaning the whole day.
type BlockedSlots map[string][]string

// ToBlockedSlots flattens overrides. Times are sorted and the marker leads.
func (o Overrides) ToBlockedSlots() BlockedSlots {
	out := make(BlockedSlots, len(o))
	for date, entry := range o {
		if entry.Empty() {
			continue
		}
		times := make([]string, 0, len(entry.Blocked)+1)
		if entry.DayOff {
			times = append(times, DayOffMarker)
		}
		sorted := append([]string(nil), entry.Blocked...)
		sort.Strings(sorted)
		out[date] = append(times, sorted...)
	}
	return out
}

// OverridesFromBlockedSlots rebuilds overrides from the flat form.
func OverridesFromBlockedSlots(slots BlockedSlots) Overrides {
	out := make(Overrides, len(slots))
	for date, times := range slots {
		var entry Override
		seen := make(map[string]bool, len(times))
		for _, t := range times {
			if t == DayOffMarker {
				entry.DayOff = true
				continue
			}
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			entry.Blocked = append(entry.Blocked, t)
		}
		sort.Strings(entry.Blocked)
		out.set(date, entry)
	}
	return out
}
