package desk

import (
	"strings"

	"github.com/sawgrasskings/booking-api/internal/domain/booking"
)

type DayOffCmd struct {
	Date   string `arg:"" help:"Date (YYYY-MM-DD)."`
	Off    bool   `negatable:"" default:"true" help:"Mark (or with --no-off, unmark) the whole day off."`
	Barber string `short:"b" help:"Barber id."`
}

func (c *DayOffCmd) Run(ctx *Context) error {
	barberID, err := ctx.deskBarber(c.Barber)
	if err != nil {
		return err
	}
	o, err := ctx.Bookings.SetDayOff(ctx.runCtx(), barberID, c.Date, c.Off)
	if err != nil {
		return err
	}
	printOverrides(ctx, c.Date, o)
	return nil
}

type BlockCmd struct {
	Date   string `arg:"" help:"Date (YYYY-MM-DD)."`
	Time   string `arg:"" help:"Slot (HH:MM). Blocks it, or unblocks it if already blocked."`
	Barber string `short:"b" help:"Barber id."`
}

func (c *BlockCmd) Run(ctx *Context) error {
	barberID, err := ctx.deskBarber(c.Barber)
	if err != nil {
		return err
	}
	o, err := ctx.Bookings.ToggleBlocked(ctx.runCtx(), barberID, c.Date, c.Time)
	if err != nil {
		return err
	}
	printOverrides(ctx, c.Date, o)
	return nil
}

type ClearCmd struct {
	Date   string `arg:"" help:"Date (YYYY-MM-DD)."`
	Barber string `short:"b" help:"Barber id."`
}

func (c *ClearCmd) Run(ctx *Context) error {
	barberID, err := ctx.deskBarber(c.Barber)
	if err != nil {
		return err
	}
	o, err := ctx.Bookings.ClearDate(ctx.runCtx(), barberID, c.Date)
	if err != nil {
		return err
	}
	printOverrides(ctx, c.Date, o)
	return nil
}

func printOverrides(ctx *Context, date string, o booking.Overrides) {
	slots := o.ToBlockedSlots()[date]
	switch {
	case len(slots) == 0:
		ctx.printf("%s: no overrides\n", date)
	case slots[0] == booking.DayOffMarker:
		ctx.printf("%s: day off\n", date)
	default:
		ctx.printf("%s: blocked %s\n", date, strings.Join(slots, ", "))
	}
}
