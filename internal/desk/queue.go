package desk

import (
	"os"

	"github.com/sawgrasskings/booking-api/internal/domain/booking"
	"github.com/sawgrasskings/booking-api/internal/domain/schedule"
)

type QueueListCmd struct {
	Barber string `short:"b" help:"Barber id."`
}

func (c *QueueListCmd) Run(ctx *Context) error {
	barberID, err := ctx.deskBarber(c.Barber)
	if err != nil {
		return err
	}
	items, err := ctx.Bookings.Queue(barberID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		ctx.printf("No requests yet.\n")
		return nil
	}
	for _, q := range items {
		ctx.printf("  [%s] %s %s  %s (%s) - %s\n",
			q.Status, q.Date, schedule.FormatTime12(q.Time), q.Name, q.Phone, q.ServiceName())
		ctx.printf("      id %s\n", q.ID)
	}
	return nil
}

type QueueAddCmd struct {
	Date    string `arg:"" help:"Date (YYYY-MM-DD)."`
	Time    string `arg:"" help:"Start time (HH:MM)."`
	Name    string `short:"n" required:"" help:"Customer name."`
	Phone   string `short:"p" required:"" help:"Customer phone."`
	Service string `short:"s" help:"Service."`
	Notes   string `help:"Notes."`
	Barber  string `short:"b" help:"Barber id."`
}

func (c *QueueAddCmd) Run(ctx *Context) error {
	barberID, err := ctx.deskBarber(c.Barber)
	if err != nil {
		return err
	}
	item, err := ctx.Bookings.Enqueue(ctx.runCtx(), booking.EnqueueRequest{
		BarberID: barberID,
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
	ctx.printf("Added %s to the queue.\n", item.ID)
	return nil
}

type QueueConfirmCmd struct {
	ID string `arg:"" help:"Queue item id."`
}

func (c *QueueConfirmCmd) Run(ctx *Context) error {
	if err := ctx.itemBarber(c.ID); err != nil {
		return err
	}
	b, err := ctx.Bookings.Confirm(ctx.runCtx(), c.ID)
	if err != nil {
		return err
	}
	ctx.printf("Confirmed %s on %s at %s.\n", b.Name, b.Date, schedule.FormatTime12(b.Time))
	return nil
}

type QueueDeclineCmd struct {
	ID string `arg:"" help:"Queue item id."`
}

func (c *QueueDeclineCmd) Run(ctx *Context) error {
	if err := ctx.itemBarber(c.ID); err != nil {
		return err
	}
	if err := ctx.Bookings.Decline(ctx.runCtx(), c.ID); err != nil {
		return err
	}
	ctx.printf("Declined %s.\n", c.ID)
	return nil
}

type QueueRemoveCmd struct {
	ID string `arg:"" help:"Queue item id."`
}

func (c *QueueRemoveCmd) Run(ctx *Context) error {
	if err := ctx.itemBarber(c.ID); err != nil {
		return err
	}
	if err := ctx.Bookings.Remove(ctx.runCtx(), c.ID); err != nil {
		return err
	}
	ctx.printf("Removed %s.\n", c.ID)
	return nil
}

type ExportCmd struct {
	Output string `short:"o" required:"" type:"path" help:"XLSX file to write."`
	Date   string `help:"Only this date."`
	Status string `help:"Only this status."`
	Barber string `short:"b" help:"Barber id."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	barberID, err := ctx.deskBarber(c.Barber)
	if err != nil {
		return err
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return err
	}
	if err := ctx.Bookings.ExportXLSX(f, barberID, booking.BookingFilter{Date: c.Date, Status: booking.Status(c.Status)}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.printf("Wrote %s.\n", c.Output)
	return nil
}
