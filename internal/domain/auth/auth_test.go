package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/pkg/jwt"
)

type fakeBarbers struct{}

func (fakeBarbers) Authenticate(id, pin string) (barber.Barber, error) {
	if id != "barber-2" {
		return barber.Barber{}, barber.ErrBarberNotFound
	}
	if pin != "2222" {
		return barber.Barber{}, barber.ErrInvalidPIN
	}
	return barber.Barber{ID: id, PIN: pin}, nil
}

type recorder struct {
	admin  bool
	barber string
	locked bool
}

func (r *recorder) UnlockAdmin(context.Context) error { r.admin = true; return nil }
func (r *recorder) UnlockBarber(_ context.Context, id string) error {
	r.barber = id
	return nil
}
func (r *recorder) Lock(context.Context) error { r.locked = true; return nil }

func newTestRouter(rec *recorder) (http.Handler, *jwt.Service) {
	tokens := jwt.NewService("secret", time.Hour)
	h := NewHandler(NewService("1234", fakeBarbers{}, tokens, rec))
	pass := func(next http.Handler) http.Handler { return next }
	return h.Routes(pass), tokens
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw)))
	return rr
}

func TestUnlockAdmin(t *testing.T) {
	rec := &recorder{}
	h, tokens := newTestRouter(rec)

	rr := post(t, h, "/admin", AdminUnlockRequest{PIN: "0000"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, rec.admin)

	rr = post(t, h, "/admin", AdminUnlockRequest{PIN: "1234"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, rec.admin)

	var out struct {
		Data SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	claims, err := tokens.ValidateSessionToken(out.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleAdmin, claims.Role)
}

func TestUnlockRejectsMalformedBody(t *testing.T) {
	rec := &recorder{}
	h, _ := newTestRouter(rec)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin", bytes.NewReader([]byte("{pin"))))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "BAD_REQUEST")
	assert.False(t, rec.admin)
}

func TestUnlockBarber(t *testing.T) {
	rec := &recorder{}
	h, tokens := newTestRouter(rec)

	assert.Equal(t, http.StatusNotFound, post(t, h, "/barber", BarberUnlockRequest{BarberID: "barber-9", PIN: "2222"}).Code)
	assert.Equal(t, http.StatusUnauthorized, post(t, h, "/barber", BarberUnlockRequest{BarberID: "barber-2", PIN: "1111"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, post(t, h, "/barber", BarberUnlockRequest{PIN: "2222"}).Code)

	rr := post(t, h, "/barber", BarberUnlockRequest{BarberID: "barber-2", PIN: "2222"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "barber-2", rec.barber)

	var out struct {
		Data SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	claims, err := tokens.ValidateSessionToken(out.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "barber-2", claims.BarberID)
}

func TestLock(t *testing.T) {
	rec := &recorder{}
	h, _ := newTestRouter(rec)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/lock", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, rec.locked)
}
