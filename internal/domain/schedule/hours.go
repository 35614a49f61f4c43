package schedule

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateFormat is the ISO calendar date used for every stored date.
	DateFormat = "2006-01-02"
	// TimeFormat is the 24h wall clock used for slot start times.
	TimeFormat = "15:04"
)

var (
	ErrInvalidClock  = errors.New("invalid HH:MM time")
	ErrInvalidDate   = errors.New("invalid YYYY-MM-DD date")
	ErrInvalidWindow = errors.New("operating window end must be after start")
	ErrInvalidStep   = errors.New("slot minutes must be positive")
)

// Window is an operating interval [Start, End) in HH:MM.
type Window struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Minutes returns the window bounds in minutes since midnight.
func (w Window) Minutes() (start, end int, err error) {
	if start, err = ParseClock(w.Start); err != nil {
		return 0, 0, err
	}
	if end, err = ParseClock(w.End); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// WeekHours maps time.Weekday to the day's window. A nil entry means closed.
type WeekHours [7]*Window

// DefaultWeekHours returns the shop's standard week.
func DefaultWeekHours() WeekHours {
	return WeekHours{
		time.Sunday:    {Start: "11:00", End: "15:00"},
		time.Monday:    {Start: "10:00", End: "19:30"},
		time.Tuesday:   nil,
		time.Wednesday: {Start: "10:00", End: "19:30"},
		time.Thursday:  {Start: "10:00", End: "19:30"},
		time.Friday:    {Start: "10:00", End: "20:00"},
		time.Saturday:  {Start: "10:00", End: "20:00"},
	}
}

// ForDate returns the window for the weekday of date, or nil when closed.
func (h WeekHours) ForDate(date string) (*Window, error) {
	wd, err := Weekday(date)
	if err != nil {
		return nil, err
	}
	return h[wd], nil
}

// Validate checks every open day has a well-formed, non-empty window.
func (h WeekHours) Validate() error {
	for day, w := range h {
		if w == nil {
			continue
		}
		start, end, err := w.Minutes()
		if err != nil {
			return fmt.Errorf("%s: %w", time.Weekday(day), err)
		}
		if end <= start {
			return fmt.Errorf("%s: %w", time.Weekday(day), ErrInvalidWindow)
		}
	}
	return nil
}
