// internal/pkg/jwt/jwt.go
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const (
	TokenTypeSession = "desk_session"

	RoleAdmin  = "admin"
	RoleBarber = "barber"
)

// Claims represents desk session claims. BarberID is set for barber sessions only.
type Claims struct {
	Role     string `json:"role"`
	BarberID string `json:"barber_id,omitempty"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// Service handles JWT operations
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates JWT service
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateSessionToken signs a desk session for role.
func (s *Service) GenerateSessionToken(role, barberID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	subject := role
	if barberID != "" {
		subject = barberID
	}
	claims := Claims{
		Role:     role,
		BarberID: barberID,
		Type:     TokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateSessionToken validates and parses a desk session token
func (s *Service) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Type != TokenTypeSession {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin && claims.Role != RoleBarber {
		return nil, ErrInvalidToken
	}
	if claims.Role == RoleBarber && claims.BarberID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
