package auth

import "time"

// AdminUnlockRequest is the body of POST /auth/admin
type AdminUnlockRequest struct {
	PIN string `json:"pin" validate:"required"`
}

// BarberUnlockRequest is the body of POST /auth/barber
type BarberUnlockRequest struct {
	BarberID string `json:"barberId" validate:"required"`
	PIN      string `json:"pin" validate:"required"`
}

// SessionResponse carries a desk token.
type SessionResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	BarberID  string    `json:"barberId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}
