package barber

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sawgrasskings/booking-api/internal/pkg/deeplink"
)

// FallbackID is used when the roster is empty.
const FallbackID = "barber-1"

var (
	defaultPINs   = []string{"1111", "2222", "3333", "4444"}
	defaultPhones = []string{"7542452950", "7542452951", "7542452952", "7542452953"}
)

// Roster is the ordered barber list. Order is the display order.
type Roster []Barber

// Defaults returns the four seeded barbers.
func Defaults(now time.Time) Roster {
	base := now.UnixMilli()
	out := make(Roster, len(defaultPINs))
	for i := range out {
		out[i] = Barber{
			ID:        fmt.Sprintf("barber-%d", i+1),
			Name:      fmt.Sprintf("Barber %d", i+1),
			PIN:       defaultPINs[i],
			Phone:     defaultPhones[i],
			Active:    true,
			CreatedAt: base + int64(i),
		}
	}
	return out
}

// EnforceDefaults pins the seeded barbers to their stock passcodes and fills
// a missing phone from the seeded numbers.
func EnforceDefaults(r Roster) Roster {
	out := r.clone()
	for i, b := range out {
		n, ok := seededIndex(b.ID)
		if !ok {
			continue
		}
		out[i].PIN = defaultPINs[n]
		if out[i].Phone == "" {
			out[i].Phone = defaultPhones[n]
		}
	}
	return out
}

func seededIndex(id string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "barber-"))
	if err != nil || !strings.HasPrefix(id, "barber-") || n < 1 || n > len(defaultPINs) {
		return 0, false
	}
	return n - 1, true
}

func (r Roster) clone() Roster {
	out := make(Roster, len(r))
	copy(out, r)
	return out
}

// Find returns the barber and its index.
func (r Roster) Find(id string) (Barber, int, bool) {
	for i, b := range r {
		if b.ID == id {
			return b, i, true
		}
	}
	return Barber{}, -1, false
}

// Active returns barbers taking bookings, in order.
func (r Roster) Active() Roster {
	out := make(Roster, 0, len(r))
	for _, b := range r {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

// ActiveFallback picks the first active barber, then the first barber, then FallbackID.
func (r Roster) ActiveFallback() string {
	if active := r.Active(); len(active) > 0 {
		return active[0].ID
	}
	if len(r) > 0 {
		return r[0].ID
	}
	return FallbackID
}

// Add appends a new active barber. The passcode defaults to 1000+len(roster).
func (r Roster) Add(id, name, phone string, now time.Time) (Roster, Barber, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return r, Barber{}, ErrEmptyName
	}
	b := Barber{
		ID:        id,
		Name:      name,
		PIN:       strconv.Itoa(1000 + len(r)),
		Phone:     deeplink.SanitizeDigits(phone),
		Active:    true,
		CreatedAt: now.UnixMilli(),
	}
	return append(r.clone(), b), b, nil
}

// Update applies fn to a copy of the barber and returns the new roster.
func (r Roster) Update(id string, fn func(*Barber) error) (Roster, Barber, error) {
	_, idx, ok := r.Find(id)
	if !ok {
		return r, Barber{}, ErrBarberNotFound
	}
	out := r.clone()
	if err := fn(&out[idx]); err != nil {
		return r, Barber{}, err
	}
	return out, out[idx], nil
}

// Move swaps the barber with its neighbour. delta is -1 (up) or +1 (down).
func (r Roster) Move(id string, delta int) (Roster, error) {
	_, idx, ok := r.Find(id)
	if !ok {
		return r, ErrBarberNotFound
	}
	to := idx + delta
	if delta == 0 || to < 0 || to >= len(r) {
		return r, ErrCannotMove
	}
	out := r.clone()
	out[idx], out[to] = out[to], out[idx]
	return out, nil
}

// Remove drops the barber from the roster.
func (r Roster) Remove(id string) (Roster, Barber, error) {
	b, idx, ok := r.Find(id)
	if !ok {
		return r, Barber{}, ErrBarberNotFound
	}
	out := make(Roster, 0, len(r)-1)
	out = append(out, r[:idx]...)
	out = append(out, r[idx+1:]...)
	return out, b, nil
}

// NormalizePIN strips non-digits; the result must be exactly four digits.
func NormalizePIN(pin string) (string, error) {
	digits := deeplink.SanitizeDigits(pin)
	if len(digits) != 4 {
		return "", ErrInvalidPIN
	}
	return digits, nil
}
