package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
)

// memRepo mirrors the store's whole-collection write semantics in memory.
type memRepo struct {
	bookings  map[string][]Booking
	queue     map[string][]QueueItem
	overrides map[string]Overrides
}

func newMemRepo() *memRepo {
	return &memRepo{
		bookings:  map[string][]Booking{},
		queue:     map[string][]QueueItem{},
		overrides: map[string]Overrides{},
	}
}

func (m *memRepo) Ledger(barberID string) Ledger {
	return Ledger{Bookings: m.bookings[barberID], Overrides: m.overrides[barberID]}
}

func (m *memRepo) Queue(barberID string) []QueueItem { return m.queue[barberID] }

func (m *memRepo) FindQueueItem(id string) (QueueItem, string, bool) {
	for barberID, list := range m.queue {
		for _, q := range list {
			if q.ID == id {
				return q, barberID, true
			}
		}
	}
	return QueueItem{}, "", false
}

func (m *memRepo) SaveBooking(_ context.Context, b Booking) (Booking, error) {
	list := m.bookings[b.BarberID]
	next := make([]Booking, 0, len(list)+1)
	for _, x := range list {
		if x.ID != b.ID {
			next = append(next, x)
		}
	}
	m.bookings[b.BarberID] = append(next, b)
	return b, nil
}

func (m *memRepo) UpdateBookingStatus(_ context.Context, id string, status Status) (bool, error) {
	found := false
	for barberID, list := range m.bookings {
		for i := range list {
			if list[i].ID == id {
				m.bookings[barberID][i].Status = status
				found = true
			}
		}
	}
	return found, nil
}

func (m *memRepo) MarkTaken(_ context.Context, barberID string, b Booking) error {
	_ = m.ClearTaken(context.Background(), barberID, b.Date, b.Time)
	m.bookings[barberID] = append(m.bookings[barberID], b)
	return nil
}

func (m *memRepo) ClearTaken(_ context.Context, barberID, date, hhmm string) error {
	var kept []Booking
	for _, b := range m.bookings[barberID] {
		if !b.At(date, hhmm) {
			kept = append(kept, b)
		}
	}
	m.bookings[barberID] = kept
	return nil
}

func (m *memRepo) SaveQueueItem(_ context.Context, item QueueItem) error {
	list := []QueueItem{item}
	for _, q := range m.queue[item.BarberID] {
		if q.ID != item.ID {
			list = append(list, q)
		}
	}
	m.queue[item.BarberID] = list
	return nil
}

func (m *memRepo) UpdateQueueItem(_ context.Context, id string, patch QueuePatch) (QueueItem, error) {
	for barberID, list := range m.queue {
		for i := range list {
			if list[i].ID == id {
				m.queue[barberID][i] = patch.Apply(list[i])
				return m.queue[barberID][i], nil
			}
		}
	}
	return QueueItem{}, ErrQueueItemNotFound
}

func (m *memRepo) RemoveQueueItem(_ context.Context, id string) (bool, error) {
	removed := false
	for barberID, list := range m.queue {
		var kept []QueueItem
		for _, q := range list {
			if q.ID == id {
				removed = true
				continue
			}
			kept = append(kept, q)
		}
		m.queue[barberID] = kept
	}
	return removed, nil
}

func (m *memRepo) SaveOverrides(_ context.Context, barberID string, o Overrides) error {
	m.overrides[barberID] = o
	return nil
}

type rosterBarbers struct{ roster barber.Roster }

func (r rosterBarbers) Get(id string) (barber.Barber, error) {
	b, _, ok := r.roster.Find(id)
	if !ok {
		return barber.Barber{}, barber.ErrBarberNotFound
	}
	return b, nil
}

func (r rosterBarbers) Bookable(id string) (barber.Barber, error) {
	b, err := r.Get(id)
	if err == nil && !b.Active {
		return barber.Barber{}, barber.ErrBarberInactive
	}
	return b, err
}

func (r rosterBarbers) ActiveFallback() string { return r.roster.ActiveFallback() }

var serviceNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	roster := barber.Defaults(serviceNow)
	roster[3].Active = false
	roster[2].Phone = ""
	svc := NewService(repo, rosterBarbers{roster: roster}, Config{
		Generator:    testGenerator(t),
		MaxDaysAhead: 30,
		Contact:      Contact{ShopName: "Sawgrass Kings Cuts", PhoneE164: "+17542452950", Email: "info@sawgrasskingscuts.com"},
		Now:          func() time.Time { return serviceNow },
	})
	return svc, repo
}

func submit(t *testing.T, svc *Service, barberID, hhmm string) *SubmitResult {
	t.Helper()
	res, err := svc.Submit(context.Background(), SubmitRequest{
		BarberID: barberID, Name: "Ana", Phone: "754-555-0100", Service: "Fade", Date: monday, Time: hhmm,
	})
	require.NoError(t, err)
	return res
}

func TestSubmitStoresPendingBookingAndQueueItem(t *testing.T) {
	svc, repo := newTestService(t)

	res := submit(t, svc, "barber-2", "14:00")

	require.Len(t, repo.bookings["barber-2"], 1)
	b := repo.bookings["barber-2"][0]
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, serviceNow.UnixMilli(), b.CreatedAt)

	item, barberID, ok := repo.FindQueueItem(b.ID)
	require.True(t, ok)
	assert.Equal(t, "barber-2", barberID)
	assert.Equal(t, StatusPending, item.Status)
	assert.Equal(t, "Fade", item.RequestedService)

	assert.Equal(t, "+17542452951", res.SentTo)
	assert.True(t, strings.HasPrefix(res.SMSLink, "sms:+17542452951?&body="))
	assert.Contains(t, res.Message, "Date/Time: 2024-01-01 @ 2:00 PM")
	assert.True(t, strings.HasPrefix(res.Mailto, "mailto:info@sawgrasskingscuts.com?subject="))

	_, err := svc.Submit(context.Background(), SubmitRequest{
		BarberID: "barber-2", Name: "Bo", Phone: "1", Service: "Cut", Date: monday, Time: "14:00",
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable, "pending request holds the slot")
}

func TestSubmitFallsBackToShopLine(t *testing.T) {
	svc, _ := newTestService(t)
	res := submit(t, svc, "barber-3", "15:00")
	assert.Equal(t, "+17542452950", res.SentTo)
}

func TestSubmitRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	base := SubmitRequest{BarberID: "barber-1", Name: "Ana", Phone: "1", Service: "Fade", Date: monday, Time: "14:00"}

	cases := map[string]struct {
		mutate func(*SubmitRequest)
		want   error
	}{
		"missing name":   {func(r *SubmitRequest) { r.Name = "  " }, ErrMissingField},
		"past":           {func(r *SubmitRequest) { r.Date = "2023-12-31" }, ErrDateOutOfRange},
		"past slot":      {func(r *SubmitRequest) { r.Time = "10:00"; svc.cfg.Now = func() time.Time { return serviceNow.Add(2 * time.Hour) } }, ErrSlotInPast},
		"too far":        {func(r *SubmitRequest) { r.Date = "2024-02-15" }, ErrDateOutOfRange},
		"closed tuesday": {func(r *SubmitRequest) { r.Date = "2024-01-02" }, ErrInvalidSlot},
		"off grid":       {func(r *SubmitRequest) { r.Time = "14:15" }, ErrInvalidSlot},
		"inactive":       {func(r *SubmitRequest) { r.BarberID = "barber-4" }, barber.ErrBarberInactive},
		"unknown barber": {func(r *SubmitRequest) { r.BarberID = "nope" }, barber.ErrBarberNotFound},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			svc.cfg.Now = func() time.Time { return serviceNow }
			req := base
			c.mutate(&req)
			_, err := svc.Submit(ctx, req)
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestSubmitBlockedSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ToggleBlocked(ctx, "barber-1", monday, "16:00")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, SubmitRequest{BarberID: "barber-1", Name: "A", Phone: "1", Service: "S", Date: monday, Time: "16:00"})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestConfirmDeclineConfirm(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first := submit(t, svc, "barber-1", "14:00").Booking

	approved, err := svc.Confirm(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	item, _, _ := repo.FindQueueItem(first.ID)
	assert.Equal(t, StatusApproved, item.Status)

	require.NoError(t, svc.Decline(ctx, first.ID))
	view, err := svc.Slots("barber-1", monday)
	require.NoError(t, err)
	assert.Contains(t, view.Available, "14:00", "declined booking frees the slot")

	second := submit(t, svc, "barber-1", "14:00").Booking
	_, err = svc.Confirm(ctx, second.ID)
	require.NoError(t, err)

	orig, ok := repo.Ledger("barber-1").Find(first.ID)
	require.True(t, ok)
	assert.Equal(t, StatusDeclined, orig.Status)

	_, err = svc.Confirm(ctx, first.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmConflictLeavesStateUntouched(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	held := submit(t, svc, "barber-1", "14:00").Booking
	desk, err := svc.Enqueue(ctx, EnqueueRequest{BarberID: "barber-1", Name: "Walk", Phone: "2", Service: "Cut", Date: monday, Time: "14:00"})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, desk.ID)
	assert.True(t, errors.Is(err, ErrSlotUnavailable))

	item, _, _ := repo.FindQueueItem(desk.ID)
	assert.Equal(t, StatusPending, item.Status)
	_, ok := repo.Ledger("barber-1").Find(desk.ID)
	assert.False(t, ok)

	require.NoError(t, svc.Decline(ctx, held.ID))
	b, err := svc.Confirm(ctx, desk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cut", b.Service)
	assert.Equal(t, StatusApproved, b.Status)
}

func TestConfirmBlockedSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := submit(t, svc, "barber-1", "14:00").Booking
	_, err := svc.SetDayOff(ctx, "barber-1", monday, true)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, b.ID)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestRemoveKeepsDeclinedBooking(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	b := submit(t, svc, "barber-1", "14:00").Booking
	require.NoError(t, svc.Remove(ctx, b.ID))

	_, _, ok := repo.FindQueueItem(b.ID)
	assert.False(t, ok)
	kept, ok := repo.Ledger("barber-1").Find(b.ID)
	require.True(t, ok)
	assert.Equal(t, StatusDeclined, kept.Status)

	assert.ErrorIs(t, svc.Remove(ctx, b.ID), ErrQueueItemNotFound)
	assert.ErrorIs(t, svc.Decline(ctx, "missing"), ErrQueueItemNotFound)
}

func TestMarkAndClearTaken(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	submit(t, svc, "barber-1", "14:00")
	walkIn, err := svc.MarkTaken(ctx, "barber-1", monday, "14:00")
	require.NoError(t, err)

	list := repo.Ledger("barber-1").Bookings
	require.Len(t, list, 1, "marking a slot replaces whatever held it")
	assert.Equal(t, walkIn.ID, list[0].ID)

	require.NoError(t, svc.ClearTaken(ctx, "barber-1", monday, "14:00"))
	assert.Empty(t, repo.Ledger("barber-1").Bookings)
}

func TestBookingsFilterAndOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	late := submit(t, svc, "barber-1", "16:00").Booking
	early := submit(t, svc, "barber-1", "11:00").Booking
	_, err := svc.Confirm(ctx, late.ID)
	require.NoError(t, err)

	all, err := svc.Bookings("barber-1", BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, early.ID, all[0].ID)

	approved, err := svc.Bookings("barber-1", BookingFilter{Status: StatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, late.ID, approved[0].ID)
}

func TestReplaceOverridesFromFlatForm(t *testing.T) {
	svc, _ := newTestService(t)
	o, err := svc.ReplaceOverrides(context.Background(), "barber-1", BlockedSlots{monday: {DayOffMarker}})
	require.NoError(t, err)
	assert.True(t, o[monday].DayOff)

	view, err := svc.Slots("barber-1", monday)
	require.NoError(t, err)
	assert.Empty(t, view.Available)
	assert.True(t, view.DayOff)
}

func TestShopInfo(t *testing.T) {
	svc, _ := newTestService(t)

	info := svc.Shop()
	assert.Equal(t, "Sawgrass Kings Cuts", info.Name)
	assert.Equal(t, "(754) 245-2950", info.PhoneDisplay)
	assert.Nil(t, info.Hours["tue"])
	require.NotNil(t, info.Hours["sun"])
	assert.Equal(t, "11:00", info.Hours["sun"].Start)
	assert.Equal(t, "2024-01-01", info.Range.Min)
	assert.Equal(t, "2024-01-31", info.Range.Max)
}
