package appstate

import (
	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/booking"
	"github.com/sawgrasskings/booking-api/internal/domain/gallery"
)

// Session is the device's unlock state. It is an advisory gate, not
// authentication.
type Session struct {
	AdminUnlocked  bool   `json:"adminUnlocked"`
	BarberUnlocked bool   `json:"barberUnlocked"`
	BarberID       string `json:"barberId,omitempty"`
}

// AppState is everything the store holds. Collections are partitioned by
// barber id.
type AppState struct {
	Barbers   barber.Roster                  `json:"barbers"`
	Bookings  map[string][]booking.Booking   `json:"bookings"`
	Overrides map[string]booking.Overrides   `json:"overrides"`
	Queue     map[string][]booking.QueueItem `json:"queue"`
	Gallery   []gallery.Photo                `json:"gallery"`
	Session   Session                        `json:"session"`
}

func (s AppState) clone() AppState {
	out := AppState{
		Barbers:   append(barber.Roster(nil), s.Barbers...),
		Bookings:  make(map[string][]booking.Booking, len(s.Bookings)),
		Overrides: make(map[string]booking.Overrides, len(s.Overrides)),
		Queue:     make(map[string][]booking.QueueItem, len(s.Queue)),
		Gallery:   append([]gallery.Photo(nil), s.Gallery...),
		Session:   s.Session,
	}
	for id, list := range s.Bookings {
		out.Bookings[id] = append([]booking.Booking(nil), list...)
	}
	for id, o := range s.Overrides {
		out.Overrides[id] = o.Clone()
	}
	for id, list := range s.Queue {
		out.Queue[id] = append([]booking.QueueItem(nil), list...)
	}
	return out
}

// DeskBarberID is the barber the desk is unlocked for, if that barber
// still exists.
func (s AppState) DeskBarberID() (string, bool) {
	if !s.Session.BarberUnlocked || s.Session.BarberID == "" {
		return "", false
	}
	if _, _, ok := s.Barbers.Find(s.Session.BarberID); !ok {
		return "", false
	}
	return s.Session.BarberID, true
}
