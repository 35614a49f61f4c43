package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sawgrasskings/booking-api/internal/pkg/jwt"
	"github.com/sawgrasskings/booking-api/internal/pkg/response"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	RoleKey      contextKey = "role"
	BarberIDKey  contextKey = "barber_id"
)

// Auth returns middleware that validates a desk session token
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateSessionToken(parts[1])
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Session expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), RoleKey, claims.Role)
			ctx = context.WithValue(ctx, BarberIDKey, claims.BarberID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRole extracts role from context
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(RoleKey).(string); ok {
		return role
	}
	return ""
}

// GetBarberID extracts the barber a session is scoped to
func GetBarberID(ctx context.Context) string {
	if id, ok := ctx.Value(BarberIDKey).(string); ok {
		return id
	}
	return ""
}

// CanAccessBarber reports whether the session may act on barberID's partition.
func CanAccessBarber(ctx context.Context, barberID string) bool {
	switch GetRole(ctx) {
	case jwt.RoleAdmin:
		return true
	case jwt.RoleBarber:
		return barberID != "" && GetBarberID(ctx) == barberID
	}
	return false
}

// RequireRole returns middleware that checks the session role
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetRole(r.Context())

			for _, role := range roles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

// RequireAdmin returns middleware that requires the admin desk
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(jwt.RoleAdmin)
}

// RequireBarberAccess checks the {param} route value against the session scope.
func RequireBarberAccess(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CanAccessBarber(r.Context(), chi.URLParam(r, param)) {
				response.Forbidden(w, "Session is not allowed to manage this barber")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
