package booking

import (
	"time"

	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
)

// DayState is the calendar cell state for one date.
type DayState string

const (
	DayOpen       DayState = "open"
	DayFull       DayState = "full"
	DayClosed     DayState = "closed"
	DayTimeOff    DayState = "day_off"
	DayOutOfRange DayState = "out_of_range"
)

// DaySummary is one calendar cell.
type DaySummary struct {
	Date  string   `json:"date"`
	State DayState `json:"state"`
	Open  int      `json:"open"`
	Taken int      `json:"taken"`
}

// Calendar summarises every date of the month containing month (YYYY-MM or
// any date in it). Dates outside rng are not bookable.
func Calendar(gen schedule.Generator, l Ledger, month string, rng schedule.DateRange, now time.Time) ([]DaySummary, error) {
	if len(month) == len("2006-01") {
		month += "-01"
	}
	dates, err := schedule.MonthDates(month)
	if err != nil {
		return nil, err
	}

	out := make([]DaySummary, 0, len(dates))
	for _, date := range dates {
		day := DaySummary{Date: date}
		switch {
		case !rng.Contains(date):
			day.State = DayOutOfRange
		case !gen.IsOpen(date):
			day.State = DayClosed
		case l.IsDayOff(date):
			day.State = DayTimeOff
		default:
			open, err := AvailableSlots(gen, l, date, now)
			if err != nil {
				return nil, err
			}
			taken, err := TakenSlots(gen, l, date)
			if err != nil {
				return nil, err
			}
			day.Open, day.Taken = len(open), len(taken)
			day.State = DayOpen
			if day.Open == 0 {
				day.State = DayFull
			}
		}
		out = append(out, day)
	}
	return out, nil
}
