package desk

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawgrasskings/booking-api/internal/appstate"
	"github.com/sawgrasskings/booking-api/internal/domain/auth"
	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/booking"
	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
	"github.com/sawgrasskings/booking-api/internal/pkg/jwt"
	"github.com/sawgrasskings/booking-api/internal/pkg/kvstore"
	"github.com/sawgrasskings/booking-api/internal/remote"
)

// 2024-01-01 is a Monday, open 10:00 to 19:30.
var deskNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	return newTestContextOn(t, kvstore.NewMemory())
}

func newTestContextOn(t *testing.T, kv kvstore.Store) (*Context, *bytes.Buffer) {
	t.Helper()
	now := func() time.Time { return deskNow }
	store, err := appstate.Open(context.Background(), kv, now)
	require.NoError(t, err)

	gen, err := schedule.NewGenerator(schedule.DefaultWeekHours(), 30)
	require.NoError(t, err)
	barbers := barber.NewService(store)
	bookings := booking.NewService(store, barbers, booking.Config{
		Generator:    gen,
		MaxDaysAhead: 30,
		Contact:      booking.Contact{ShopName: "Test Cuts", PhoneE164: "+15555550100", Email: "desk@example.com"},
		Now:          now,
	})

	var out bytes.Buffer
	return &Context{
		Store:    store,
		Barbers:  barbers,
		Bookings: bookings,
		Auth:     auth.NewService("1234", barbers, jwt.NewService("secret", time.Hour), store),
		Tracker:  remote.NewTracker("remote mirror disabled"),
		Out:      &out,
	}, &out
}

func TestBookAndConfirmAtDesk(t *testing.T) {
	ctx, out := newTestContext(t)

	require.NoError(t, (&BookCmd{
		Date: "2024-01-01", Time: "14:00",
		Name: "Ana", Phone: "754-555-0100", Service: "Fade", Barber: "barber-1",
	}).Run(ctx))
	assert.Contains(t, out.String(), "saved as pending")
	assert.Contains(t, out.String(), "sms:")

	out.Reset()
	require.NoError(t, (&SlotsCmd{Date: "2024-01-01", Barber: "barber-1"}).Run(ctx))
	assert.Contains(t, out.String(), "taken")

	err := (&QueueListCmd{Barber: "barber-1"}).Run(ctx)
	assert.ErrorIs(t, err, ErrDeskLocked)

	require.NoError(t, (&UnlockBarberCmd{ID: "barber-1", PIN: "1111"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&QueueListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Ana")
	items, err := ctx.Bookings.Queue("barber-1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	out.Reset()
	require.NoError(t, (&QueueConfirmCmd{ID: items[0].ID}).Run(ctx))
	assert.Contains(t, out.String(), "Confirmed Ana")

	view, err := ctx.Bookings.Slots("barber-1", "2024-01-01")
	require.NoError(t, err)
	assert.Contains(t, view.Taken, "14:00")

	out.Reset()
	require.NoError(t, (&QueueDeclineCmd{ID: items[0].ID}).Run(ctx))
	assert.Contains(t, out.String(), "Declined")

	view, err = ctx.Bookings.Slots("barber-1", "2024-01-01")
	require.NoError(t, err)
	assert.NotContains(t, view.Taken, "14:00")
	assert.Contains(t, view.Available, "14:00")

	err = (&QueueConfirmCmd{ID: items[0].ID}).Run(ctx)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
}

// cancelAwareKV refuses writes once the caller's context is done.
type cancelAwareKV struct {
	*kvstore.Memory
}

func (c cancelAwareKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Memory.Set(ctx, key, value)
}

func TestCommandsUseRunContext(t *testing.T) {
	ctx, _ := newTestContextOn(t, cancelAwareKV{kvstore.NewMemory()})
	runCtx, cancel := context.WithCancel(context.Background())
	ctx.Ctx = runCtx
	book := &BookCmd{
		Date: "2024-01-01", Time: "14:00",
		Name: "Ana", Phone: "754-555-0100", Service: "Fade", Barber: "barber-1",
	}

	require.NoError(t, book.Run(ctx))

	cancel()
	book.Time = "15:00"
	err := book.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, ctx.Store.Queue("barber-1"), 1)
}

func TestDeskIsScopedToUnlockedBarber(t *testing.T) {
	ctx, _ := newTestContext(t)

	require.NoError(t, (&UnlockBarberCmd{ID: "barber-2", PIN: "2222"}).Run(ctx))
	assert.ErrorIs(t, (&DayOffCmd{Date: "2024-01-03", Off: true, Barber: "barber-1"}).Run(ctx), ErrDeskLocked)

	err := (&UnlockBarberCmd{ID: "barber-2", PIN: "9999"}).Run(ctx)
	assert.ErrorIs(t, err, auth.ErrInvalidPasscode)
}

func TestOverrideCommands(t *testing.T) {
	ctx, out := newTestContext(t)
	require.NoError(t, (&UnlockAdminCmd{PIN: "1234"}).Run(ctx))

	require.NoError(t, (&BlockCmd{Date: "2024-01-03", Time: "10:30", Barber: "barber-1"}).Run(ctx))
	assert.Contains(t, out.String(), "2024-01-03: blocked 10:30")

	out.Reset()
	require.NoError(t, (&DayOffCmd{Date: "2024-01-03", Off: true, Barber: "barber-1"}).Run(ctx))
	assert.Contains(t, out.String(), "day off")

	out.Reset()
	require.NoError(t, (&ClearCmd{Date: "2024-01-03", Barber: "barber-1"}).Run(ctx))
	assert.Contains(t, out.String(), "no overrides")
}

func TestRosterCommandsRequireAdmin(t *testing.T) {
	ctx, out := newTestContext(t)

	assert.ErrorIs(t, (&BarbersAddCmd{Name: "Marco"}).Run(ctx), ErrAdminLocked)

	require.NoError(t, (&UnlockAdminCmd{PIN: "1234"}).Run(ctx))
	require.NoError(t, (&BarbersAddCmd{Name: "Marco", Phone: "7545550199"}).Run(ctx))
	assert.Contains(t, out.String(), "Added Marco")
	assert.Len(t, ctx.Barbers.List(), 5)

	require.NoError(t, (&BarbersToggleCmd{ID: "barber-4"}).Run(ctx))
	b, err := ctx.Barbers.Get("barber-4")
	require.NoError(t, err)
	assert.False(t, b.Active)

	assert.ErrorIs(t, (&BarbersDeleteCmd{ID: "barber-4"}).Run(ctx), barber.ErrConfirmationRequired)
	require.NoError(t, (&BarbersDeleteCmd{ID: "barber-4", Confirm: true}).Run(ctx))
	assert.Len(t, ctx.Barbers.List(), 4)

	out.Reset()
	require.NoError(t, (&BarbersListCmd{}).Run(ctx))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
}

func TestStatusAndLock(t *testing.T) {
	ctx, out := newTestContext(t)
	require.NoError(t, (&UnlockAdminCmd{PIN: "1234"}).Run(ctx))

	require.NoError(t, (&StatusCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Session: admin")

	require.NoError(t, (&LockCmd{}).Run(ctx))
	out.Reset()
	require.NoError(t, (&StatusCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Session: locked")

	assert.ErrorIs(t, (&ReconnectCmd{}).Run(ctx), errNoMirror)
}

func TestExportWritesWorkbook(t *testing.T) {
	ctx, _ := newTestContext(t)
	require.NoError(t, (&UnlockAdminCmd{PIN: "1234"}).Run(ctx))
	require.NoError(t, (&QueueAddCmd{
		Date: "2024-01-03", Time: "10:00", Name: "Lee", Phone: "555", Barber: "barber-1",
	}).Run(ctx))

	path := filepath.Join(t.TempDir(), "bookings.xlsx")
	require.NoError(t, (&ExportCmd{Output: path, Barber: "barber-1"}).Run(ctx))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
