package appstate

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/booking"
)

// bookingList is every shape a bookings collection has been stored in: a
// flat list of records, or the older date -> time -> record map.
type bookingList struct {
	list   []json.RawMessage
	byDate map[string]map[string]legacyBooking
}

type legacyBooking struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Service   string          `json:"service"`
	Notes     string          `json:"notes"`
	Status    string          `json:"status"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

func (l *bookingList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.list)
	}
	return json.Unmarshal(data, &l.byDate)
}

// upgrade returns the records in the current shape, in stored order. The
// date map has no order of its own and is walked date then time.
func (l bookingList) upgrade(c converter) []booking.Booking {
	out := make([]booking.Booking, 0, len(l.list))
	for _, raw := range l.list {
		var b booking.Booking
		if err := json.Unmarshal(raw, &b); err != nil {
			log.Warn().Err(err).Msg("dropping unreadable booking record")
			continue
		}
		b.Status = normalizeStatus(string(b.Status))
		out = append(out, b)
	}

	for _, date := range sortedKeys(l.byDate) {
		times := l.byDate[date]
		for _, hhmm := range sortedKeys(times) {
			v := times[hhmm]
			b := booking.Booking{
				ID:        v.ID,
				Name:      v.Name,
				Phone:     v.Phone,
				Service:   v.Service,
				Date:      date,
				Time:      hhmm,
				Notes:     v.Notes,
				Status:    normalizeStatus(v.Status),
				CreatedAt: millis(v.CreatedAt),
			}
			if b.ID == "" {
				b.ID = c.newID()
			}
			if b.Service == "" {
				b.Service = "Unknown"
			}
			if b.CreatedAt == 0 {
				b.CreatedAt = c.nowMillis()
			}
			out = append(out, b)
		}
	}
	return out
}

// normalizeStatus maps the old "confirmed" and a missing status to approved.
func normalizeStatus(s string) booking.Status {
	switch s {
	case "", "confirmed":
		return booking.StatusApproved
	}
	return booking.Status(s)
}

func millis(raw json.RawMessage) int64 {
	n, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
	if err != nil {
		return 0
	}
	return int64(n)
}

type converter struct {
	nowMillis func() int64
	newID     func() string
}

// present reports whether raw holds a JSON object or array. Anything else,
// including malformed JSON, is treated as absent.
func present(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return false
	}
	return raw[0] == '{' || raw[0] == '['
}

func decodeRoster(raw []byte) barber.Roster {
	var r barber.Roster
	if !present(raw) || json.Unmarshal(raw, &r) != nil {
		return nil
	}
	return r
}

// decodePartitions splits a by-barber collection into its raw partitions.
func decodePartitions(raw []byte) (map[string]json.RawMessage, bool) {
	var parts map[string]json.RawMessage
	if !present(raw) || json.Unmarshal(raw, &parts) != nil || parts == nil {
		return nil, false
	}
	return parts, true
}

// Partitions and records that do not decode are dropped one at a time so a
// single bad record never costs the rest of the collection.
func decodeBookings(raw []byte, c converter) (map[string][]booking.Booking, bool) {
	parts, ok := decodePartitions(raw)
	if !ok {
		return map[string][]booking.Booking{}, false
	}
	out := make(map[string][]booking.Booking, len(parts))
	for id, part := range parts {
		var l bookingList
		if err := json.Unmarshal(part, &l); err != nil {
			log.Warn().Err(err).Str("barber_id", id).Msg("dropping unreadable bookings partition")
			continue
		}
		out[id] = l.upgrade(c)
	}
	return out, true
}

func decodeOverrides(raw []byte) (map[string]booking.Overrides, bool) {
	parts, ok := decodePartitions(raw)
	if !ok {
		return map[string]booking.Overrides{}, false
	}
	out := make(map[string]booking.Overrides, len(parts))
	for id, part := range parts {
		var dates map[string]json.RawMessage
		if err := json.Unmarshal(part, &dates); err != nil {
			log.Warn().Err(err).Str("barber_id", id).Msg("dropping unreadable overrides partition")
			continue
		}
		o := make(booking.Overrides, len(dates))
		for date, entry := range dates {
			var v booking.Override
			if err := json.Unmarshal(entry, &v); err != nil {
				log.Warn().Err(err).Str("barber_id", id).Str("date", date).Msg("dropping unreadable override")
				continue
			}
			o[date] = v
		}
		out[id] = normalizeOverrides(o)
	}
	return out, true
}

// normalizeOverrides sorts and dedupes blocked times and drops empty dates.
func normalizeOverrides(o booking.Overrides) booking.Overrides {
	return booking.OverridesFromBlockedSlots(o.ToBlockedSlots())
}

func decodeQueue(raw []byte) (map[string][]booking.QueueItem, bool) {
	parts, ok := decodePartitions(raw)
	if !ok {
		return map[string][]booking.QueueItem{}, false
	}
	out := make(map[string][]booking.QueueItem, len(parts))
	for id, part := range parts {
		var items []json.RawMessage
		if err := json.Unmarshal(part, &items); err != nil {
			log.Warn().Err(err).Str("barber_id", id).Msg("dropping unreadable queue partition")
			continue
		}
		list := make([]booking.QueueItem, 0, len(items))
		for _, item := range items {
			var q booking.QueueItem
			if err := json.Unmarshal(item, &q); err != nil {
				log.Warn().Err(err).Str("barber_id", id).Msg("dropping unreadable queue item")
				continue
			}
			if q.Status == "" {
				q.Status = booking.StatusPending
			}
			list = append(list, q)
		}
		out[id] = list
	}
	return out, true
}

func decodeLegacyBookings(raw []byte, c converter) []booking.Booking {
	var l bookingList
	if !present(raw) || json.Unmarshal(raw, &l) != nil {
		return []booking.Booking{}
	}
	return l.upgrade(c)
}

func decodeLegacyOverrides(raw []byte) booking.Overrides {
	var o booking.Overrides
	if !present(raw) || json.Unmarshal(raw, &o) != nil {
		return booking.Overrides{}
	}
	return normalizeOverrides(o)
}

func decodeLegacyQueue(raw []byte) []booking.QueueItem {
	var q []booking.QueueItem
	if !present(raw) || json.Unmarshal(raw, &q) != nil {
		return []booking.QueueItem{}
	}
	return q
}

type barberSession struct {
	BarberID *string `json:"barberId"`
}

func decodeSession(admin, barberFlag, session []byte) Session {
	s := Session{
		AdminUnlocked:  string(bytes.TrimSpace(admin)) == "true",
		BarberUnlocked: string(bytes.TrimSpace(barberFlag)) == "true",
	}
	var bs barberSession
	if present(session) && json.Unmarshal(session, &bs) == nil && bs.BarberID != nil {
		s.BarberID = *bs.BarberID
	}
	return s
}
