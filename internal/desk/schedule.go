package desk

import (
	"fmt"

	"github.com/sawgrasskings/booking-api/internal/domain/booking"
	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
)

type SlotsCmd struct {
	Date   string `arg:"" help:"Date (YYYY-MM-DD)."`
	Barber string `short:"b" help:"Barber id. Defaults to the first active barber."`
}

func (c *SlotsCmd) Run(ctx *Context) error {
	view, err := ctx.Bookings.Slots(c.Barber, c.Date)
	if err != nil {
		return err
	}
	b, _ := ctx.Barbers.Get(view.BarberID)
	ctx.printf("%s on %s\n", b.DisplayName(), view.Date)
	switch {
	case view.Closed:
		ctx.printf("  Closed\n")
		return nil
	case view.DayOff:
		ctx.printf("  Day off\n")
		return nil
	}
	for _, s := range view.Slots {
		ctx.printf("  %-8s %s\n", s.Label, slotState(s))
	}
	ctx.printf("%d open, %d taken\n", len(view.Available), len(view.Taken))
	return nil
}

func slotState(s booking.SlotState) string {
	switch {
	case s.Taken:
		return "taken"
	case s.Blocked:
		return "blocked"
	case s.Past:
		return "past"
	}
	return "open"
}

type CalendarCmd struct {
	Month  string `arg:"" optional:"" help:"Month (YYYY-MM). Defaults to this month."`
	Barber string `short:"b" help:"Barber id."`
}

func (c *CalendarCmd) Run(ctx *Context) error {
	month := c.Month
	if month == "" {
		month = ctx.Bookings.Range().Min
	}
	days, err := ctx.Bookings.Calendar(c.Barber, month)
	if err != nil {
		return err
	}
	for _, d := range days {
		wd, _ := schedule.Weekday(d.Date)
		line := fmt.Sprintf("  %s %s  %-12s", d.Date, wd.String()[:3], d.State)
		if d.State == booking.DayOpen || d.State == booking.DayFull {
			line += fmt.Sprintf(" %d open / %d taken", d.Open, d.Taken)
		}
		ctx.printf("%s\n", line)
	}
	return nil
}

type BookCmd struct {
	Date    string `arg:"" help:"Date (YYYY-MM-DD)."`
	Time    string `arg:"" help:"Start time (HH:MM)."`
	Name    string `short:"n" required:"" help:"Customer name."`
	Phone   string `short:"p" required:"" help:"Customer phone."`
	Service string `short:"s" required:"" help:"Service."`
	Notes   string `help:"Notes."`
	Barber  string `short:"b" help:"Barber id."`
}

func (c *BookCmd) Run(ctx *Context) error {
	res, err := ctx.Bookings.Submit(ctx.runCtx(), booking.SubmitRequest{
		BarberID: c.Barber,
		Name:     c.Name,
		Phone:    c.Phone,
		Service:  c.Service,
		Date:     c.Date,
		Time:     c.Time,
		Notes:    c.Notes,
	})
	if err != nil {
		return err
	}
	ctx.printf("Request %s saved as pending.\n", res.Booking.ID)
	ctx.printf("Text: %s\n", res.SMSLink)
	ctx.printf("Email: %s\n", res.Mailto)
	return nil
}
