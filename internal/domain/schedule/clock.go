package schedule

import (
	"fmt"
	"time"
)

// ParseClock converts HH:MM to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(TimeFormat, s)
	if err != nil || len(s) != len(TimeFormat) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes since midnight to HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatTime12 renders HH:MM as "h:mm AM/PM". Malformed input is returned unchanged.
func FormatTime12(hhmm string) string {
	m, err := ParseClock(hhmm)
	if err != nil {
		return hhmm
	}
	h := m / 60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	hour12 := h % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour12, m%60, suffix)
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateFormat, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// Weekday returns the calendar weekday of date.
func Weekday(date string) (time.Weekday, error) {
	t, err := ParseDate(date, time.UTC)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// IsPastSlot reports whether date+hhmm, read in now's location, is before now.
func IsPastSlot(date, hhmm string, now time.Time) bool {
	t, err := time.ParseInLocation(DateFormat+" "+TimeFormat, date+" "+hhmm, now.Location())
	if err != nil {
		return false
	}
	return t.Before(now)
}
