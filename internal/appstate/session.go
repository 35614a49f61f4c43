package appstate

import (
	"context"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
)

// Session returns the device's unlock state.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Session
}

// UnlockAdmin opens the admin tools after the shop passcode was checked.
func (s *Store) UnlockAdmin(ctx context.Context) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		st.Session.AdminUnlocked = true
		return []string{KeyAdminUnlocked}, nil
	})
}

// UnlockBarber opens the desk for one barber after their passcode was
// checked.
func (s *Store) UnlockBarber(ctx context.Context, barberID string) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		if _, _, ok := st.Barbers.Find(barberID); !ok {
			return nil, barber.ErrBarberNotFound
		}
		st.Session.BarberUnlocked = true
		st.Session.BarberID = barberID
		return []string{KeyBarberUnlocked, KeyBarberSession}, nil
	})
}

// Lock clears both unlocks.
func (s *Store) Lock(ctx context.Context) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		st.Session = Session{}
		return []string{KeyAdminUnlocked, KeyBarberUnlocked, KeyBarberSession}, nil
	})
}
