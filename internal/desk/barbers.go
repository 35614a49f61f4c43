package desk

import (
	"fmt"
	"text/tabwriter"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
)

type BarbersListCmd struct{}

func (c *BarbersListCmd) Run(ctx *Context) error {
	tw := tabwriter.NewWriter(ctx.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tLABEL\tPHONE\tACTIVE\n")
	for _, b := range ctx.Barbers.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", b.ID, b.Name, b.Label, b.Phone, b.Active)
	}
	return tw.Flush()
}

type BarbersAddCmd struct {
	Name  string `arg:"" help:"Barber name."`
	Phone string `short:"p" help:"Phone number."`
}

func (c *BarbersAddCmd) Run(ctx *Context) error {
	if err := ctx.requireAdmin(); err != nil {
		return err
	}
	b, err := ctx.Barbers.Add(ctx.runCtx(), c.Name, c.Phone)
	if err != nil {
		return err
	}
	ctx.printf("Added %s (%s) with passcode %s.\n", b.DisplayName(), b.ID, b.PIN)
	return nil
}

type BarbersRenameCmd struct {
	ID    string `arg:"" help:"Barber id."`
	Name  string `arg:"" help:"New name."`
	Label string `short:"l" help:"Display label."`
}

func (c *BarbersRenameCmd) Run(ctx *Context) error {
	patch := barber.Patch{Name: &c.Name}
	if c.Label != "" {
		patch.Label = &c.Label
	}
	return applyPatch(ctx, c.ID, patch)
}

type BarbersPhoneCmd struct {
	ID    string `arg:"" help:"Barber id."`
	Phone string `arg:"" help:"Phone number."`
}

func (c *BarbersPhoneCmd) Run(ctx *Context) error {
	return applyPatch(ctx, c.ID, barber.Patch{Phone: &c.Phone})
}

func applyPatch(ctx *Context, id string, patch barber.Patch) error {
	if err := ctx.requireAdmin(); err != nil {
		return err
	}
	b, err := ctx.Barbers.Update(ctx.runCtx(), id, patch)
	if err != nil {
		return err
	}
	ctx.printf("Updated %s.\n", b.DisplayName())
	return nil
}

type BarbersPinCmd struct {
	ID  string `arg:"" help:"Barber id."`
	PIN string `arg:"" name:"pin" help:"New 4-digit passcode."`
}

func (c *BarbersPinCmd) Run(ctx *Context) error {
	if err := ctx.requireAdmin(); err != nil {
		return err
	}
	b, err := ctx.Barbers.SetPIN(ctx.runCtx(), c.ID, c.PIN)
	if err != nil {
		return err
	}
	ctx.printf("Passcode for %s updated.\n", b.DisplayName())
	return nil
}

type BarbersToggleCmd struct {
	ID string `arg:"" help:"Barber id."`
}

func (c *BarbersToggleCmd) Run(ctx *Context) error {
	if err := ctx.requireAdmin(); err != nil {
		return err
	}
	b, err := ctx.Barbers.ToggleActive(ctx.runCtx(), c.ID)
	if err != nil {
		return err
	}
	state := "inactive"
	if b.Active {
		state = "active"
	}
	ctx.printf("%s is now %s.\n", b.DisplayName(), state)
	return nil
}

type BarbersMoveCmd struct {
	ID        string `arg:"" help:"Barber id."`
	Direction string `arg:"" enum:"up,down" help:"up or down."`
}

func (c *BarbersMoveCmd) Run(ctx *Context) error {
	if err := ctx.requireAdmin(); err != nil {
		return err
	}
	delta := 1
	if c.Direction == "up" {
		delta = -1
	}
	roster, err := ctx.Barbers.Move(ctx.runCtx(), c.ID, delta)
	if err != nil {
		return err
	}
	for i, b := range roster {
		ctx.printf("  %d. %s\n", i+1, b.DisplayName())
	}
	return nil
}

type BarbersDeleteCmd struct {
	ID      string `arg:"" help:"Barber id."`
	Confirm bool   `help:"Confirm the removal."`
	Purge   bool   `help:"Also drop the barber's bookings, requests and overrides."`
}

func (c *BarbersDeleteCmd) Run(ctx *Context) error {
	if err := ctx.requireAdmin(); err != nil {
		return err
	}
	if err := ctx.Barbers.Delete(ctx.runCtx(), c.ID, barber.DeleteOptions{Confirmed: c.Confirm, Purge: c.Purge}); err != nil {
		return err
	}
	ctx.printf("Removed %s.\n", c.ID)
	return nil
}
