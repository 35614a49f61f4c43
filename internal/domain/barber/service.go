package barber

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"

	"github.com/sawgrasskings/booking-api/internal/pkg/deeplink"
)

// Repository persists the roster and each barber's data partition.
type Repository interface {
	Barbers() Roster
	SaveBarbers(ctx context.Context, roster Roster) error
	DeleteBarberData(ctx context.Context, barberID string) error
}

// DeleteOptions carries the two removal confirmations. Purge drops the
// barber's bookings, overrides and queue along with the roster entry.
type DeleteOptions struct {
	Confirmed bool
	Purge     bool
}

// Service handles roster management.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates barber service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the full roster in display order.
func (s *Service) List() Roster {
	return s.repo.Barbers()
}

// Get returns one barber.
func (s *Service) Get(id string) (Barber, error) {
	b, _, ok := s.repo.Barbers().Find(id)
	if !ok {
		return Barber{}, ErrBarberNotFound
	}
	return b, nil
}

// Bookable returns the barber if it is taking bookings.
func (s *Service) Bookable(id string) (Barber, error) {
	b, err := s.Get(id)
	if err != nil {
		return Barber{}, err
	}
	if !b.Active {
		return Barber{}, ErrBarberInactive
	}
	return b, nil
}

// ActiveFallback is the barber used when a record names none.
func (s *Service) ActiveFallback() string {
	return s.repo.Barbers().ActiveFallback()
}

// Add registers a new barber.
func (s *Service) Add(ctx context.Context, name, phone string) (Barber, error) {
	roster, b, err := s.repo.Barbers().Add("barber-"+uuid.NewString(), name, phone, s.now())
	if err != nil {
		return Barber{}, err
	}
	if err := s.repo.SaveBarbers(ctx, roster); err != nil {
		return Barber{}, err
	}
	return b, nil
}

// Update applies a partial profile change.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Barber, error) {
	return s.update(ctx, id, func(b *Barber) error {
		if patch.Name != nil {
			if *patch.Name == "" {
				return ErrEmptyName
			}
			b.Name = *patch.Name
		}
		if patch.Label != nil {
			b.Label = *patch.Label
		}
		if patch.Phone != nil {
			b.Phone = deeplink.SanitizeDigits(*patch.Phone)
		}
		if patch.Active != nil {
			b.Active = *patch.Active
		}
		return nil
	})
}

// ToggleActive flips whether the barber takes bookings.
func (s *Service) ToggleActive(ctx context.Context, id string) (Barber, error) {
	return s.update(ctx, id, func(b *Barber) error {
		b.Active = !b.Active
		return nil
	})
}

// SetPIN replaces the barber's passcode.
func (s *Service) SetPIN(ctx context.Context, id, pin string) (Barber, error) {
	normalized, err := NormalizePIN(pin)
	if err != nil {
		return Barber{}, err
	}
	return s.update(ctx, id, func(b *Barber) error {
		b.PIN = normalized
		return nil
	})
}

// Move shifts the barber one place up (delta -1) or down (delta +1).
func (s *Service) Move(ctx context.Context, id string, delta int) (Roster, error) {
	roster, err := s.repo.Barbers().Move(id, delta)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveBarbers(ctx, roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// Delete removes a barber after confirmation, optionally purging its data.
func (s *Service) Delete(ctx context.Context, id string, opts DeleteOptions) error {
	if !opts.Confirmed {
		return ErrConfirmationRequired
	}
	roster, _, err := s.repo.Barbers().Remove(id)
	if err != nil {
		return err
	}
	if err := s.repo.SaveBarbers(ctx, roster); err != nil {
		return err
	}
	if opts.Purge {
		return s.repo.DeleteBarberData(ctx, id)
	}
	return nil
}

// Authenticate checks a barber passcode.
func (s *Service) Authenticate(id, pin string) (Barber, error) {
	b, err := s.Get(id)
	if err != nil {
		return Barber{}, err
	}
	if subtle.ConstantTimeCompare([]byte(b.PIN), []byte(pin)) != 1 {
		return Barber{}, ErrInvalidPIN
	}
	return b, nil
}

func (s *Service) update(ctx context.Context, id string, fn func(*Barber) error) (Barber, error) {
	roster, b, err := s.repo.Barbers().Update(id, fn)
	if err != nil {
		return Barber{}, err
	}
	if err := s.repo.SaveBarbers(ctx, roster); err != nil {
		return Barber{}, err
	}
	return b, nil
}
