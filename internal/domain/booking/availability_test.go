package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
)

const monday = "2024-01-01"

func testGenerator(t *testing.T) schedule.Generator {
	t.Helper()
	gen, err := schedule.NewGenerator(schedule.DefaultWeekHours(), 30)
	require.NoError(t, err)
	return gen
}

func TestPendingBookingOccupiesSlot(t *testing.T) {
	l := Ledger{Bookings: []Booking{{ID: "a", Date: monday, Time: "14:00", Status: StatusPending}}}
	assert.True(t, l.IsTaken(monday, "14:00"))

	l.Bookings[0].Status = StatusDeclined
	assert.False(t, l.IsTaken(monday, "14:00"))
}

func TestOccupantIsLatestWrite(t *testing.T) {
	l := Ledger{Bookings: []Booking{
		{ID: "a", Date: monday, Time: "14:00", Status: StatusApproved},
		{ID: "b", Date: monday, Time: "14:00", Status: StatusPending},
		{ID: "c", Date: monday, Time: "14:00", Status: StatusDeclined},
	}}
	occ, ok := l.Occupant(monday, "14:00")
	require.True(t, ok)
	assert.Equal(t, "b", occ.ID)

	assert.True(t, l.TakenByOther(monday, "14:00", "a"))
	assert.False(t, Ledger{Bookings: l.Bookings[:1]}.TakenByOther(monday, "14:00", "a"))
}

func TestDayOffShortCircuitsBothViews(t *testing.T) {
	gen := testGenerator(t)
	now := time.Date(2023, 12, 31, 9, 0, 0, 0, time.UTC)
	l := Ledger{
		Bookings:  []Booking{{ID: "a", Date: monday, Time: "14:00", Status: StatusApproved}},
		Overrides: Overrides{monday: {DayOff: true}},
	}

	available, err := AvailableSlots(gen, l, monday, now)
	require.NoError(t, err)
	assert.Empty(t, available)
	assert.NotNil(t, available)

	taken, err := TakenSlots(gen, l, monday)
	require.NoError(t, err)
	all, _ := gen.Slots(monday)
	assert.Equal(t, all, taken)
}

func TestAvailabilityPartitionsSlots(t *testing.T) {
	gen := testGenerator(t)
	ledgers := []Ledger{
		{},
		{Overrides: Overrides{monday: {Blocked: []string{"10:00", "15:30"}}}},
		{Bookings: []Booking{
			{ID: "a", Date: monday, Time: "11:00", Status: StatusPending},
			{ID: "b", Date: monday, Time: "12:00", Status: StatusApproved},
			{ID: "c", Date: monday, Time: "13:00", Status: StatusDeclined},
		}},
	}
	nows := []time.Time{
		time.Date(2023, 12, 31, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 12, 10, 0, 0, time.UTC),
	}

	slots, err := gen.Slots(monday)
	require.NoError(t, err)

	for _, l := range ledgers {
		for _, now := range nows {
			available, err := AvailableSlots(gen, l, monday, now)
			require.NoError(t, err)
			taken, err := TakenSlots(gen, l, monday)
			require.NoError(t, err)

			avail := toSet(available)
			tk := toSet(taken)
			for s := range avail {
				assert.Contains(t, slots, s)
				assert.NotContains(t, tk, s, "slot %s both available and taken", s)
			}
			for _, s := range slots {
				past := schedule.IsPastSlot(monday, s, now)
				assert.True(t, avail[s] || tk[s] || past, "slot %s unaccounted for", s)
			}
		}
	}
}

func TestDaySlotsStates(t *testing.T) {
	gen := testGenerator(t)
	now := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
	l := Ledger{
		Bookings:  []Booking{{ID: "a", Date: monday, Time: "11:00", Status: StatusPending}},
		Overrides: Overrides{monday: {Blocked: []string{"12:00"}}},
	}

	states, err := DaySlots(gen, l, monday, now)
	require.NoError(t, err)
	byTime := map[string]SlotState{}
	for _, s := range states {
		byTime[s.Time] = s
	}
	assert.True(t, byTime["10:00"].Past)
	assert.True(t, byTime["11:00"].Taken)
	assert.True(t, byTime["12:00"].Blocked)
	assert.True(t, byTime["13:00"].Open)
	assert.Equal(t, "1:00 PM", byTime["13:00"].Label)
}

func TestOverridesToggleAndDayOff(t *testing.T) {
	o := Overrides{}
	o = o.ToggleBlocked(monday, "15:00")
	o = o.ToggleBlocked(monday, "10:30")
	assert.Equal(t, []string{"10:30", "15:00"}, o[monday].Blocked)

	o = o.ToggleBlocked(monday, "15:00").ToggleBlocked(monday, "10:30")
	_, ok := o[monday]
	assert.False(t, ok, "empty override is dropped")

	o = o.SetDayOff(monday, true)
	assert.True(t, o[monday].DayOff)
	assert.NotNil(t, o[monday].Blocked)
	o = o.Clear(monday)
	assert.Empty(t, o)
}

func TestOverridesDoNotAlias(t *testing.T) {
	base := Overrides{monday: {Blocked: []string{"10:00", "11:00"}}}
	next := base.ToggleBlocked(monday, "10:00")
	assert.Equal(t, []string{"10:00", "11:00"}, base[monday].Blocked)
	assert.Equal(t, []string{"11:00"}, next[monday].Blocked)
}

func TestBlockedSlotsRoundTrip(t *testing.T) {
	o := Overrides{
		monday:       {DayOff: true, Blocked: []string{"15:00"}},
		"2024-01-03": {Blocked: []string{"12:00", "10:00"}},
	}
	flat := o.ToBlockedSlots()
	assert.Equal(t, []string{DayOffMarker, "15:00"}, flat[monday])
	assert.Equal(t, []string{"10:00", "12:00"}, flat["2024-01-03"])

	back := OverridesFromBlockedSlots(flat)
	assert.True(t, back[monday].DayOff)
	assert.Equal(t, []string{"15:00"}, back[monday].Blocked)
	assert.Equal(t, []string{"10:00", "12:00"}, back["2024-01-03"].Blocked)

	empty := OverridesFromBlockedSlots(BlockedSlots{"2024-01-04": {}})
	assert.Empty(t, empty)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusDeclined, true},
		{StatusApproved, StatusDeclined, true},
		{StatusApproved, StatusApproved, true},
		{StatusDeclined, StatusDeclined, true},
		{StatusDeclined, StatusApproved, false},
		{StatusDeclined, StatusPending, false},
		{StatusApproved, StatusPending, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestCalendar(t *testing.T) {
	gen := testGenerator(t)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rng := schedule.BookingRange(now, 7)
	l := Ledger{Overrides: Overrides{"2024-01-03": {DayOff: true}}}

	days, err := Calendar(gen, l, "2024-01", rng, now)
	require.NoError(t, err)
	require.Len(t, days, 31)

	assert.Equal(t, DayOpen, days[0].State)
	assert.Equal(t, 19, days[0].Open)
	assert.Equal(t, DayClosed, days[1].State, "tuesday")
	assert.Equal(t, DayTimeOff, days[2].State)
	assert.Equal(t, DayOutOfRange, days[20].State)
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, s := range list {
		out[s] = true
	}
	return out
}
