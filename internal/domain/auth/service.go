package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/pkg/jwt"
)

// Barbers checks barber passcodes.
type Barbers interface {
	Authenticate(id, pin string) (barber.Barber, error)
}

// SessionRecorder mirrors unlock state into the device store.
type SessionRecorder interface {
	UnlockAdmin(ctx context.Context) error
	UnlockBarber(ctx context.Context, barberID string) error
	Lock(ctx context.Context) error
}

// Service exchanges desk passcodes for session tokens. The passcodes are an
// advisory gate for a shared counter device, not account security.
type Service struct {
	adminPIN string
	barbers  Barbers
	tokens   *jwt.Service
	sessions SessionRecorder
}

// NewService creates auth service. sessions may be nil.
func NewService(adminPIN string, barbers Barbers, tokens *jwt.Service, sessions SessionRecorder) *Service {
	return &Service{adminPIN: adminPIN, barbers: barbers, tokens: tokens, sessions: sessions}
}

// UnlockAdmin opens the admin desk.
func (s *Service) UnlockAdmin(ctx context.Context, pin string) (*SessionResponse, error) {
	if subtle.ConstantTimeCompare([]byte(s.adminPIN), []byte(pin)) != 1 {
		return nil, ErrInvalidPasscode
	}
	if s.sessions != nil {
		if err := s.sessions.UnlockAdmin(ctx); err != nil {
			return nil, err
		}
	}
	return s.issue(jwt.RoleAdmin, "")
}

// UnlockBarber opens one barber's desk.
func (s *Service) UnlockBarber(ctx context.Context, barberID, pin string) (*SessionResponse, error) {
	b, err := s.barbers.Authenticate(barberID, pin)
	if err != nil {
		if errors.Is(err, barber.ErrInvalidPIN) {
			return nil, ErrInvalidPasscode
		}
		return nil, err
	}
	if s.sessions != nil {
		if err := s.sessions.UnlockBarber(ctx, b.ID); err != nil {
			return nil, err
		}
	}
	return s.issue(jwt.RoleBarber, b.ID)
}

// Lock clears the recorded unlock state. Issued tokens run to expiry.
func (s *Service) Lock(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Lock(ctx)
}

func (s *Service) issue(role, barberID string) (*SessionResponse, error) {
	token, exp, err := s.tokens.GenerateSessionToken(role, barberID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("role", role).Str("barber_id", barberID).Msg("Desk unlocked")
	return &SessionResponse{Token: token, Role: role, BarberID: barberID, ExpiresAt: exp}, nil
}
