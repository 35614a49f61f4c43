package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sawgrasskings/booking-api/internal/pkg/jwt"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareAllowsValidSession(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Hour)
	token, _, err := jwtSvc.GenerateSessionToken(jwt.RoleAdmin, "")
	if err != nil {
		t.Fatalf("token gen failed: %v", err)
	}

	protected := Auth(jwtSvc)(RequireAdmin()(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	protected := Auth(jwt.NewService("secret", time.Hour))(okHandler())

	w := httptest.NewRecorder()
	protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireBarberAccessScopesBarberSessions(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Hour)
	token, _, err := jwtSvc.GenerateSessionToken(jwt.RoleBarber, "barber-2")
	if err != nil {
		t.Fatalf("token gen failed: %v", err)
	}

	r := chi.NewRouter()
	r.With(Auth(jwtSvc), RequireBarberAccess("barberID")).Get("/barbers/{barberID}/queue", okHandler().ServeHTTP)

	cases := map[string]int{
		"/barbers/barber-2/queue": http.StatusOK,
		"/barbers/barber-1/queue": http.StatusForbidden,
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, w.Code)
		}
	}
}

func TestRequireAdminRejectsBarber(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Hour)
	token, _, _ := jwtSvc.GenerateSessionToken(jwt.RoleBarber, "barber-1")

	protected := Auth(jwtSvc)(RequireAdmin()(okHandler()))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limited := RateLimit(2)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if seen != "abc" || w.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, w.Header().Get("X-Request-ID"))
	}
}
