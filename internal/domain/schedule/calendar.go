package schedule

import "time"

// DateRange is the inclusive window of dates customers may book.
type DateRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// BookingRange returns today .. today+maxDaysAhead in now's location.
func BookingRange(now time.Time, maxDaysAhead int) DateRange {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DateRange{
		Min: today.Format(DateFormat),
		Max: today.AddDate(0, 0, maxDaysAhead).Format(DateFormat),
	}
}

// Contains reports whether date lies inside the range. ISO dates compare lexically.
func (r DateRange) Contains(date string) bool {
	return date >= r.Min && date <= r.Max
}

// MonthStart returns the first day of date's month.
func MonthStart(date string) (string, error) {
	t, err := ParseDate(date, time.UTC)
	if err != nil {
		return "", err
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format(DateFormat), nil
}

// ShiftMonth moves a month start by delta months.
func ShiftMonth(monthStart string, delta int) (string, error) {
	t, err := ParseDate(monthStart, time.UTC)
	if err != nil {
		return "", err
	}
	return time.Date(t.Year(), t.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.UTC).Format(DateFormat), nil
}

// MonthDates lists every date of the month containing date.
func MonthDates(date string) ([]string, error) {
	t, err := ParseDate(date, time.UTC)
	if err != nil {
		return nil, err
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []string
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateFormat))
	}
	return out, nil
}
