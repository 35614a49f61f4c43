package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, exp, err := svc.GenerateSessionToken(RoleBarber, "barber-2")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry %v is not in the future", exp)
	}

	claims, err := svc.ValidateSessionToken(token)
	if err != nil {
		t.Fatalf("ValidateSessionToken: %v", err)
	}
	if claims.Role != RoleBarber || claims.BarberID != "barber-2" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	svc := NewService("test-secret", time.Minute)
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	token, _, err := svc.GenerateSessionToken(RoleAdmin, "")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	svc.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := svc.ValidateSessionToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, _, err := NewService("a", time.Hour).GenerateSessionToken(RoleAdmin, "")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if _, err := NewService("b", time.Hour).ValidateSessionToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
