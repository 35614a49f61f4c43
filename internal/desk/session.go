package desk

import (
	"errors"

	"github.com/sawgrasskings/booking-api/internal/domain/booking"
)

type UnlockAdminCmd struct {
	PIN string `name:"pin" required:"" help:"Shop passcode."`
}

func (c *UnlockAdminCmd) Run(ctx *Context) error {
	if _, err := ctx.Auth.UnlockAdmin(ctx.runCtx(), c.PIN); err != nil {
		return err
	}
	ctx.printf("Admin tools unlocked.\n")
	return nil
}

type UnlockBarberCmd struct {
	ID  string `arg:"" help:"Barber id."`
	PIN string `name:"pin" required:"" help:"Barber passcode."`
}

func (c *UnlockBarberCmd) Run(ctx *Context) error {
	if _, err := ctx.Auth.UnlockBarber(ctx.runCtx(), c.ID, c.PIN); err != nil {
		return err
	}
	b, _ := ctx.Barbers.Get(c.ID)
	ctx.printf("Desk unlocked for %s.\n", b.DisplayName())
	return nil
}

type LockCmd struct{}

func (c *LockCmd) Run(ctx *Context) error {
	if err := ctx.Auth.Lock(ctx.runCtx()); err != nil {
		return err
	}
	ctx.printf("Locked.\n")
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	session := ctx.Store.Session()
	switch {
	case session.AdminUnlocked:
		ctx.printf("Session: admin\n")
	case session.BarberUnlocked:
		ctx.printf("Session: barber %s\n", session.BarberID)
	default:
		ctx.printf("Session: locked\n")
	}
	if ctx.Tracker != nil {
		ctx.printf("Sync: %s\n", ctx.Tracker.State().Label())
	}

	snap := ctx.Store.Snapshot()
	for _, b := range snap.Barbers {
		pending := 0
		for _, q := range snap.Queue[b.ID] {
			if q.Status == booking.StatusPending {
				pending++
			}
		}
		ctx.printf("  %-20s %3d bookings  %3d pending requests\n",
			b.DisplayName(), len(snap.Bookings[b.ID]), pending)
	}
	return nil
}

var errNoMirror = errors.New("no remote mirror is configured")

type ReconnectCmd struct{}

func (c *ReconnectCmd) Run(ctx *Context) error {
	if ctx.Syncer == nil {
		return errNoMirror
	}
	err := ctx.Syncer.Reconnect(ctx.runCtx())
	ctx.printf("Sync: %s\n", ctx.Syncer.Tracker().State().Label())
	return err
}
