// Package desk implements the operator commands of the desk CLI. Each
// command is a kong command struct run against a device-local store.
package desk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sawgrasskings/booking-api/internal/appstate"
	"github.com/sawgrasskings/booking-api/internal/domain/auth"
	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/booking"
	"github.com/sawgrasskings/booking-api/internal/remote"
)

var (
	ErrAdminLocked = errors.New("admin tools are locked; run `desk unlock admin` first")
	ErrDeskLocked  = errors.New("desk is locked for this barber; unlock it first")
)

// Context is passed to every command's Run.
type Context struct {
	Store    *appstate.Store
	Barbers  *barber.Service
	Bookings *booking.Service
	Auth     *auth.Service
	Tracker  *remote.Tracker
	Syncer   *remote.Syncer // nil without a mirror
	Out      io.Writer
	Ctx      context.Context // run context; cancelled on interrupt
}

func (c *Context) runCtx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) requireAdmin() error {
	if !c.Store.Session().AdminUnlocked {
		return ErrAdminLocked
	}
	return nil
}

// deskBarber resolves the barber a desk command acts on and checks the
// unlock. An empty id means the unlocked barber, else the active fallback.
func (c *Context) deskBarber(id string) (string, error) {
	session := c.Store.Session()
	if id == "" {
		if deskID, ok := c.Store.Snapshot().DeskBarberID(); ok && !session.AdminUnlocked {
			id = deskID
		} else {
			id = c.Barbers.ActiveFallback()
		}
	}
	if _, err := c.Barbers.Get(id); err != nil {
		return "", err
	}
	if session.AdminUnlocked || (session.BarberUnlocked && session.BarberID == id) {
		return id, nil
	}
	return "", ErrDeskLocked
}

// itemBarber checks the unlock against the barber owning a queue item.
func (c *Context) itemBarber(id string) error {
	_, barberID, err := c.Bookings.FindQueueItem(id)
	if err != nil {
		return err
	}
	_, err = c.deskBarber(barberID)
	return err
}
